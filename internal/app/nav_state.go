package app

import (
	"errors"

	"blogdeck/internal/store"
	"blogdeck/internal/types"
)

// ErrInvalidCoordinate reports a selection target that does not address a
// currently rendered row. Callers recover with the deterministic fallback;
// the error never reaches the user.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// NavSnapshot is the versioned, immutable navigation state. A transaction
// replaces the snapshot wholesale; holders of an old snapshot simply render
// stale data until the next apply, nothing is mutated under them.
type NavSnapshot struct {
	Version        int
	Blogs          []*types.Blog
	Session        *types.Session
	ExpandedBlogID string
	Selection      *types.Coordinate
	Sections       []Section
}

// Navigator owns the expansion/selection state machine and the reconciler.
// All methods run on the UI event loop; one call is one transaction, and the
// snapshot is never observable between transaction steps.
type Navigator struct {
	current  *NavSnapshot
	resolver selectionResolver
	seq      int
}

func NewNavigator() *Navigator {
	return &Navigator{
		current:  &NavSnapshot{Sections: BuildSections(nil, nil, "")},
		resolver: newSelectionResolver(),
	}
}

func (n *Navigator) Snapshot() *NavSnapshot {
	return n.current
}

// SetData replaces the full blog list and session, used for the initial load
// and for degrading to an empty list when the store cannot produce a
// snapshot.
func (n *Navigator) SetData(blogs []*types.Blog, session *types.Session) Transaction {
	return n.applyData(blogs, session)
}

// Reconcile applies one observer change set as a single atomic transaction.
func (n *Navigator) Reconcile(set store.ChangeSet) Transaction {
	if set.Empty() {
		return n.transaction(nil, nil)
	}
	blogs := applyChangeSet(n.current.Blogs, set)
	return n.applyData(blogs, n.current.Session)
}

// SessionChanged rebuilds sections for a sign-in or sign-out. The trailing
// section and Themes rows depend on the session, so selection validity is
// re-resolved exactly like a structural change.
func (n *Navigator) SessionChanged(session *types.Session) Transaction {
	return n.applyData(n.current.Blogs, session)
}

// Toggle collapses the blog's section when it is the expanded one, otherwise
// collapses the previous expansion (if any) and expands the blog, all in one
// transaction.
func (n *Navigator) Toggle(blogID string) Transaction {
	return n.toggle(blogID, -1)
}

func (n *Navigator) toggle(blogID string, pendingRow int) Transaction {
	cur := n.current
	idx := BlogSectionIndex(cur.Sections, blogID)
	if idx < 0 {
		return n.transaction(nil, nil)
	}

	var effects []Effect
	selection := cur.Selection

	if cur.ExpandedBlogID == blogID {
		// Collapsing drops any selection inside the section; rows of a
		// collapsed section do not exist.
		if selection != nil && selection.Section == idx {
			selection = nil
		}
		sections := BuildSections(cur.Blogs, cur.Session, "")
		effects = append(effects, sectionCollapsed(idx, blogID))
		n.replace(cur.Blogs, cur.Session, "", selection, sections)
		return n.transaction(effects, nil)
	}

	if prev := cur.ExpandedBlogID; prev != "" {
		if prevIdx := BlogSectionIndex(cur.Sections, prev); prevIdx >= 0 {
			effects = append(effects, sectionCollapsed(prevIdx, prev))
			if selection != nil && selection.Section == prevIdx {
				selection = nil
			}
		}
	}

	sections := BuildSections(cur.Blogs, cur.Session, blogID)
	effects = append(effects, sectionExpanded(idx, blogID))

	var persist *types.NavState
	if pendingRow >= 0 {
		coord := types.Coordinate{Section: idx, Row: pendingRow}
		if action, blog, ok := ActionAt(sections, coord); ok && action != ActionSettings {
			sel := coord
			selection = &sel
			owner := ""
			if blog != nil {
				owner = blog.ID
			}
			effects = append(effects, rowSelected(coord, action, owner))
			persist = &types.NavState{HasSelection: true, Selection: coord}
		}
	}

	n.replace(cur.Blogs, cur.Session, blogID, selection, sections)
	return n.transaction(effects, persist)
}

// Select makes the coordinate the current selection. Settings is a transient
// navigation action: it emits the row effect but never becomes sticky state.
func (n *Navigator) Select(coord types.Coordinate) (Transaction, error) {
	cur := n.current
	action, blog, ok := ActionAt(cur.Sections, coord)
	if !ok {
		return Transaction{}, ErrInvalidCoordinate
	}
	if action == ActionSettings {
		return n.transaction([]Effect{rowSelected(coord, action, "")}, nil), nil
	}
	owner := ""
	if blog != nil {
		owner = blog.ID
	}
	sel := coord
	n.replace(cur.Blogs, cur.Session, cur.ExpandedBlogID, &sel, cur.Sections)
	persist := &types.NavState{HasSelection: true, Selection: coord}
	return n.transaction([]Effect{rowSelected(coord, action, owner)}, persist), nil
}

// RestoreSelection maps a persisted coordinate back into a live selection on
// cold start. Only the raw index pair survives restarts, so the target is
// re-validated against the current sections and any invalidity falls back to
// the first available row. A blog-section target expands and selects in one
// transaction.
func (n *Navigator) RestoreSelection(state types.NavState) Transaction {
	cur := n.current
	if state.HasSelection {
		coord := state.Selection
		blogSections := 0
		for _, section := range cur.Sections {
			if section.Kind == SectionBlog {
				blogSections++
			}
		}
		switch {
		case coord.Section >= 0 && coord.Section < blogSections:
			blog := cur.Sections[coord.Section].Blog
			if blog != nil {
				rows := blogRows(blog, cur.Session)
				if coord.Row >= 0 && coord.Row < len(rows) {
					if cur.ExpandedBlogID == blog.ID {
						if tx, err := n.Select(coord); err == nil {
							return tx
						}
					} else {
						return n.toggle(blog.ID, coord.Row)
					}
				}
			}
		case coord.Section == TrailingSectionIndex(cur.Sections) && coord.Section >= 0:
			if StickySelectable(cur.Sections, coord) {
				if tx, err := n.Select(coord); err == nil {
					return tx
				}
			}
		}
	}
	// Absent or stale pair: same deterministic fallback as reconciliation.
	return n.applyData(cur.Blogs, cur.Session)
}

// applyData is the reconciliation core: identity-snapshot the selection,
// replace the data, rebuild sections, resolve the selection by identity, and
// emit one batched transaction.
func (n *Navigator) applyData(blogs []*types.Blog, session *types.Session) Transaction {
	cur := n.current
	ref := n.selectionRef()
	var effects []Effect

	// A deleted expanded blog collapses before the validity check runs.
	expanded := cur.ExpandedBlogID
	if expanded != "" && !blogListed(blogs, expanded) {
		if idx := BlogSectionIndex(cur.Sections, expanded); idx >= 0 {
			effects = append(effects, sectionCollapsed(idx, expanded))
		}
		expanded = ""
	}

	sections := BuildSections(blogs, session, expanded)
	effects = append(effects, diffSectionEffects(cur.Sections, sections)...)

	decision := n.resolver.Resolve(ref, sections)
	if decision.ExpandBlogID != "" && decision.ExpandBlogID != expanded {
		if expanded != "" {
			if idx := BlogSectionIndex(sections, expanded); idx >= 0 {
				effects = append(effects, sectionCollapsed(idx, expanded))
			}
		}
		expanded = decision.ExpandBlogID
		sections = BuildSections(blogs, session, expanded)
		effects = append(effects, sectionExpanded(BlogSectionIndex(sections, expanded), expanded))
	}

	var selection *types.Coordinate
	var persist *types.NavState
	switch {
	case decision.NothingToShow:
		effects = append(effects, nothingToShow())
	case decision.Selection != nil:
		sel := *decision.Selection
		selection = &sel
		effects = append(effects, rowSelected(sel, decision.Action, decision.BlogID))
		if cur.Selection == nil || *cur.Selection != sel {
			persist = &types.NavState{HasSelection: true, Selection: sel}
		}
	}

	n.replace(blogs, session, expanded, selection, sections)
	return n.transaction(effects, persist)
}

// selectionRef captures the current selection as section identity plus row,
// the only form safe to carry across a structural mutation.
func (n *Navigator) selectionRef() selectionRef {
	cur := n.current
	if cur.Selection == nil {
		return selectionRef{}
	}
	coord := *cur.Selection
	if coord.Section < 0 || coord.Section >= len(cur.Sections) {
		return selectionRef{}
	}
	section := cur.Sections[coord.Section]
	if section.Kind == SectionTrailing {
		return selectionRef{trailing: true, row: coord.Row}
	}
	if section.Blog == nil {
		return selectionRef{}
	}
	return selectionRef{blogID: section.Blog.ID, row: coord.Row}
}

func (n *Navigator) replace(blogs []*types.Blog, session *types.Session, expanded string, selection *types.Coordinate, sections []Section) {
	n.current = &NavSnapshot{
		Version:        n.current.Version + 1,
		Blogs:          blogs,
		Session:        session,
		ExpandedBlogID: expanded,
		Selection:      selection,
		Sections:       sections,
	}
}

func (n *Navigator) transaction(effects []Effect, persist *types.NavState) Transaction {
	n.seq++
	return Transaction{Seq: n.seq, Effects: effects, Persist: persist}
}

func blogListed(blogs []*types.Blog, id string) bool {
	for _, blog := range blogs {
		if blog != nil && blog.ID == id {
			return true
		}
	}
	return false
}
