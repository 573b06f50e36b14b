package app

import (
	"testing"

	"blogdeck/internal/store"
	"blogdeck/internal/types"
)

func TestResolverPreservesByIdentityAcrossReorder(t *testing.T) {
	resolver := newSelectionResolver()
	beta := blogFixture("b2", "Beta")
	sections := BuildSections([]*types.Blog{blogFixture("b1", "Azure"), beta}, sessionFixture(), "b2")

	decision := resolver.Resolve(selectionRef{blogID: "b2", row: 2}, sections)
	if decision.Reason != selectionReasonPreserved {
		t.Fatalf("expected preservation, got %q", decision.Reason)
	}
	if decision.Selection == nil || *decision.Selection != (types.Coordinate{Section: 1, Row: 2}) {
		t.Fatalf("unexpected coordinate: %+v", decision.Selection)
	}
	if decision.Action != ActionComments || decision.BlogID != "b2" {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestResolverPreservesTrailingSelection(t *testing.T) {
	resolver := newSelectionResolver()
	sections := BuildSections([]*types.Blog{blogFixture("b1", "Alpha")}, sessionFixture(), "")

	decision := resolver.Resolve(selectionRef{trailing: true, row: 1}, sections)
	if decision.Reason != selectionReasonPreserved || decision.Action != ActionNotifications {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestResolverFallsBackToFirstBlogPosts(t *testing.T) {
	resolver := newSelectionResolver()
	sections := BuildSections([]*types.Blog{blogFixture("b1", "Alpha")}, sessionFixture(), "")

	decision := resolver.Resolve(selectionRef{blogID: "gone", row: 0}, sections)
	if decision.Reason != selectionReasonFirstBlog {
		t.Fatalf("expected first-blog fallback, got %q", decision.Reason)
	}
	if decision.ExpandBlogID != "b1" || decision.Action != ActionPosts {
		t.Fatalf("fallback must expand and select Posts: %+v", decision)
	}
}

func TestResolverFallsBackToReaderWithoutBlogs(t *testing.T) {
	resolver := newSelectionResolver()
	sections := BuildSections(nil, sessionFixture(), "")

	decision := resolver.Resolve(selectionRef{}, sections)
	if decision.Reason != selectionReasonReader || decision.Action != ActionReader {
		t.Fatalf("unexpected decision: %+v", decision)
	}
	if decision.ExpandBlogID != "" {
		t.Fatalf("nothing to expand, got %q", decision.ExpandBlogID)
	}
}

func TestResolverSettingsOnlyYieldsNothing(t *testing.T) {
	resolver := newSelectionResolver()
	sections := BuildSections(nil, nil, "")

	decision := resolver.Resolve(selectionRef{trailing: true, row: 0}, sections)
	if !decision.NothingToShow || decision.Reason != selectionReasonNothing {
		t.Fatalf("Settings must not be preserved as a selection: %+v", decision)
	}
}

func TestApplyChangeSetInsertAndDelete(t *testing.T) {
	blogs := []*types.Blog{blogFixture("b1", "Alpha"), blogFixture("b2", "Beta")}
	out := applyChangeSet(blogs, store.ChangeSet{
		Deletes: []store.BlogChange{{Blog: blogs[0], Index: 0}},
		Inserts: []store.BlogChange{{Blog: blogFixture("b3", "Carol"), Index: 1}},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 blogs, got %d", len(out))
	}
	ids := map[string]bool{}
	for _, blog := range out {
		ids[blog.ID] = true
	}
	if ids["b1"] || !ids["b2"] || !ids["b3"] {
		t.Fatalf("unexpected merged set: %v", ids)
	}
}

func TestApplyChangeSetContentSwapKeepsIdentityInPlace(t *testing.T) {
	old := blogFixture("b1", "Alpha")
	renamed := blogFixture("b1", "Alpha Renamed")
	blogs := []*types.Blog{old, blogFixture("b2", "Beta")}

	out := applyChangeSet(blogs, store.ChangeSet{
		Deletes: []store.BlogChange{{Blog: old, Index: 0}},
		Inserts: []store.BlogChange{{Blog: renamed, Index: 0}},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 blogs, got %d", len(out))
	}
	if out[0].ID != "b1" || out[0].Name != "Alpha Renamed" {
		t.Fatalf("delete+insert of one identity must swap in place, got %+v", out[0])
	}
}

func TestRenameUnderSelectionKeepsSelection(t *testing.T) {
	alpha := blogFixture("b1", "Alpha")
	nav := navigatorWith(t, []*types.Blog{alpha, blogFixture("b2", "Beta")}, sessionFixture())

	// Rename Alpha past Beta: the section moves, the selection follows.
	renamed := blogFixture("b1", "Gamma")
	tx := nav.Reconcile(store.ChangeSet{
		Deletes: []store.BlogChange{{Blog: alpha, Index: 0}},
		Inserts: []store.BlogChange{{Blog: renamed, Index: 1}},
	})

	selected := findEffect(t, tx, EffectRowSelected)
	want := types.Coordinate{Section: 1, Row: 0}
	if selected.Coord != want || selected.BlogID != "b1" || selected.Action != ActionPosts {
		t.Fatalf("selection must track the renamed blog, got %+v", selected)
	}
	snap := nav.Snapshot()
	if snap.ExpandedBlogID != "b1" {
		t.Fatalf("expansion must survive the rename, got %q", snap.ExpandedBlogID)
	}
	if snap.Sections[1].Blog.Name != "Gamma" {
		t.Fatalf("section must carry the new content: %+v", snap.Sections[1].Blog)
	}
}
