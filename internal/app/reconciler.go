package app

import (
	"blogdeck/internal/store"
	"blogdeck/internal/types"
)

// selectionRef is the identity-based memory of the current selection, taken
// at the start of a reconciliation. Raw indices are never carried across a
// transaction because structural changes shift them.
type selectionRef struct {
	blogID   string
	trailing bool
	row      int
}

func (r selectionRef) valid() bool {
	return r.blogID != "" || r.trailing
}

type selectionResolutionReason string

const (
	selectionReasonNone      selectionResolutionReason = "none"
	selectionReasonPreserved selectionResolutionReason = "preserved"
	selectionReasonFirstBlog selectionResolutionReason = "first_blog"
	selectionReasonReader    selectionResolutionReason = "reader"
	selectionReasonNothing   selectionResolutionReason = "nothing_to_show"
)

// selectionDecision is the outcome of resolving a selectionRef against a
// freshly built section list. ExpandBlogID is set when the fallback needs
// the first blog section expanded before the selection can exist.
type selectionDecision struct {
	Selection     *types.Coordinate
	Action        RowAction
	BlogID        string
	ExpandBlogID  string
	NothingToShow bool
	Reason        selectionResolutionReason
}

type selectionResolver interface {
	Resolve(ref selectionRef, sections []Section) selectionDecision
}

type selectionStrategy interface {
	Reason() selectionResolutionReason
	Decide(ref selectionRef, sections []Section) (selectionDecision, bool)
}

type chainSelectionResolver struct {
	strategies []selectionStrategy
}

// newSelectionResolver builds the fixed resolution order: keep the selection
// by identity when it still addresses a live row, else the first blog's
// Posts row, else Reader, else nothing to show.
func newSelectionResolver() selectionResolver {
	return chainSelectionResolver{
		strategies: []selectionStrategy{
			preserveByIdentityStrategy{},
			firstBlogPostsStrategy{},
			readerFallbackStrategy{},
		},
	}
}

func (r chainSelectionResolver) Resolve(ref selectionRef, sections []Section) selectionDecision {
	for _, strategy := range r.strategies {
		if strategy == nil {
			continue
		}
		if decision, ok := strategy.Decide(ref, sections); ok {
			decision.Reason = strategy.Reason()
			return decision
		}
	}
	// Settings alone cannot hold a sticky selection; the sidebar still
	// renders, the content pane shows the empty state.
	return selectionDecision{NothingToShow: true, Reason: selectionReasonNothing}
}

type preserveByIdentityStrategy struct{}

func (preserveByIdentityStrategy) Reason() selectionResolutionReason {
	return selectionReasonPreserved
}

func (preserveByIdentityStrategy) Decide(ref selectionRef, sections []Section) (selectionDecision, bool) {
	if !ref.valid() {
		return selectionDecision{}, false
	}
	sectionIdx := -1
	if ref.trailing {
		sectionIdx = TrailingSectionIndex(sections)
	} else {
		sectionIdx = BlogSectionIndex(sections, ref.blogID)
	}
	if sectionIdx < 0 {
		return selectionDecision{}, false
	}
	coord := types.Coordinate{Section: sectionIdx, Row: ref.row}
	action, blog, ok := ActionAt(sections, coord)
	if !ok || action == ActionSettings {
		return selectionDecision{}, false
	}
	decision := selectionDecision{Selection: &coord, Action: action}
	if blog != nil {
		decision.BlogID = blog.ID
	}
	return decision, true
}

type firstBlogPostsStrategy struct{}

func (firstBlogPostsStrategy) Reason() selectionResolutionReason {
	return selectionReasonFirstBlog
}

func (firstBlogPostsStrategy) Decide(_ selectionRef, sections []Section) (selectionDecision, bool) {
	if len(sections) == 0 || sections[0].Kind != SectionBlog || sections[0].Blog == nil {
		return selectionDecision{}, false
	}
	coord := types.Coordinate{Section: 0, Row: 0}
	return selectionDecision{
		Selection:    &coord,
		Action:       ActionPosts,
		BlogID:       sections[0].Blog.ID,
		ExpandBlogID: sections[0].Blog.ID,
	}, true
}

type readerFallbackStrategy struct{}

func (readerFallbackStrategy) Reason() selectionResolutionReason {
	return selectionReasonReader
}

func (readerFallbackStrategy) Decide(_ selectionRef, sections []Section) (selectionDecision, bool) {
	idx := TrailingSectionIndex(sections)
	if idx < 0 {
		return selectionDecision{}, false
	}
	for row, action := range sections[idx].Rows {
		if action == ActionReader {
			coord := types.Coordinate{Section: idx, Row: row}
			return selectionDecision{Selection: &coord, Action: ActionReader}, true
		}
	}
	return selectionDecision{}, false
}

// applyChangeSet merges one observer change set into the blog list by
// identity. Delta indices are advisory here: section ordering is recomputed
// as a pure function of the merged set, so a shifted index can never corrupt
// the list.
func applyChangeSet(blogs []*types.Blog, set store.ChangeSet) []*types.Blog {
	deleted := make(map[string]struct{}, len(set.Deletes))
	for _, change := range set.Deletes {
		if change.Blog != nil {
			deleted[change.Blog.ID] = struct{}{}
		}
	}
	inserted := make(map[string]*types.Blog, len(set.Inserts))
	for _, change := range set.Inserts {
		if change.Blog != nil {
			inserted[change.Blog.ID] = change.Blog
		}
	}

	out := make([]*types.Blog, 0, len(blogs)+len(inserted))
	for _, blog := range blogs {
		if blog == nil {
			continue
		}
		if _, gone := deleted[blog.ID]; gone {
			if replacement, back := inserted[blog.ID]; back {
				// Delete+insert of one identity is a content swap.
				out = append(out, replacement)
				delete(inserted, blog.ID)
			}
			continue
		}
		if replacement, swapped := inserted[blog.ID]; swapped {
			out = append(out, replacement)
			delete(inserted, blog.ID)
			continue
		}
		out = append(out, blog)
	}
	for _, change := range set.Inserts {
		if change.Blog == nil {
			continue
		}
		if pending, ok := inserted[change.Blog.ID]; ok {
			out = append(out, pending)
			delete(inserted, change.Blog.ID)
		}
	}
	return out
}
