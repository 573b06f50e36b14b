package app

import (
	"blogdeck/internal/types"
)

type EffectKind int

const (
	EffectSectionInserted EffectKind = iota
	EffectSectionDeleted
	EffectSectionExpanded
	EffectSectionCollapsed
	EffectRowSelected
	EffectNothingToShow
)

// Effect is one render instruction inside a transaction. Index carries the
// section position the effect applies at: the new index for inserts and
// expansion changes, the pre-transaction index for deletes.
type Effect struct {
	Kind   EffectKind
	Index  int
	Coord  types.Coordinate
	Action RowAction
	BlogID string
}

// Transaction is one atomic batch of navigation mutation and its render
// effects. The presentation layer consumes effect batches whole; a stale
// batch is superseded by the next, never partially applied. Persist is the
// fire-and-forget selection write the batch requires, nil when none.
type Transaction struct {
	Seq     int
	Effects []Effect
	Persist *types.NavState
}

func (t Transaction) Empty() bool {
	return len(t.Effects) == 0 && t.Persist == nil
}

func sectionInserted(index int) Effect {
	return Effect{Kind: EffectSectionInserted, Index: index}
}

func sectionDeleted(index int) Effect {
	return Effect{Kind: EffectSectionDeleted, Index: index}
}

func sectionExpanded(index int, blogID string) Effect {
	return Effect{Kind: EffectSectionExpanded, Index: index, BlogID: blogID}
}

func sectionCollapsed(index int, blogID string) Effect {
	return Effect{Kind: EffectSectionCollapsed, Index: index, BlogID: blogID}
}

func rowSelected(coord types.Coordinate, action RowAction, blogID string) Effect {
	return Effect{Kind: EffectRowSelected, Index: coord.Section, Coord: coord, Action: action, BlogID: blogID}
}

func nothingToShow() Effect {
	return Effect{Kind: EffectNothingToShow}
}

// diffSectionEffects computes the insert/delete effects that rewrite the old
// section list into the new one, keyed by section identity so index shifts
// alone produce no effects.
func diffSectionEffects(old, current []Section) []Effect {
	oldIdentity := make(map[string]int, len(old))
	for i, section := range old {
		oldIdentity[section.Identity()] = i
	}
	currentIdentity := make(map[string]int, len(current))
	for i, section := range current {
		currentIdentity[section.Identity()] = i
	}

	var effects []Effect
	for i, section := range old {
		if _, ok := currentIdentity[section.Identity()]; !ok {
			effects = append(effects, sectionDeleted(i))
		}
	}
	for i, section := range current {
		if _, ok := oldIdentity[section.Identity()]; !ok {
			effects = append(effects, sectionInserted(i))
		}
	}
	return effects
}
