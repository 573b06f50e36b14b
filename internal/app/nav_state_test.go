package app

import (
	"errors"
	"testing"

	"blogdeck/internal/store"
	"blogdeck/internal/types"
)

func sessionFixture() *types.Session {
	return &types.Session{AccountID: "acct1", Username: "pat"}
}

func navigatorWith(t *testing.T, blogs []*types.Blog, session *types.Session) *Navigator {
	t.Helper()
	nav := NewNavigator()
	nav.SetData(blogs, session)
	return nav
}

func hasEffect(tx Transaction, kind EffectKind) bool {
	for _, effect := range tx.Effects {
		if effect.Kind == kind {
			return true
		}
	}
	return false
}

func findEffect(t *testing.T, tx Transaction, kind EffectKind) Effect {
	t.Helper()
	for _, effect := range tx.Effects {
		if effect.Kind == kind {
			return effect
		}
	}
	t.Fatalf("transaction %d has no effect of kind %d: %+v", tx.Seq, kind, tx.Effects)
	return Effect{}
}

func TestSetDataExpandsFirstBlogAndSelectsPosts(t *testing.T) {
	nav := NewNavigator()
	tx := nav.SetData([]*types.Blog{blogFixture("b2", "Zeta"), blogFixture("b1", "Alpha")}, sessionFixture())

	snap := nav.Snapshot()
	if snap.ExpandedBlogID != "b1" {
		t.Fatalf("first blog by name should expand, got %q", snap.ExpandedBlogID)
	}
	if snap.Selection == nil || *snap.Selection != (types.Coordinate{Section: 0, Row: 0}) {
		t.Fatalf("unexpected selection: %+v", snap.Selection)
	}
	selected := findEffect(t, tx, EffectRowSelected)
	if selected.Action != ActionPosts || selected.BlogID != "b1" {
		t.Fatalf("unexpected selection effect: %+v", selected)
	}
	if tx.Persist == nil || !tx.Persist.HasSelection {
		t.Fatalf("new selection must request a persistence write, got %+v", tx.Persist)
	}
}

func TestToggleKeepsAtMostOneSectionExpanded(t *testing.T) {
	blogs := []*types.Blog{blogFixture("b1", "Alpha"), blogFixture("b2", "Beta")}
	nav := navigatorWith(t, blogs, sessionFixture())

	tx := nav.Toggle("b2")
	snap := nav.Snapshot()
	if snap.ExpandedBlogID != "b2" {
		t.Fatalf("expected b2 expanded, got %q", snap.ExpandedBlogID)
	}
	collapsed := findEffect(t, tx, EffectSectionCollapsed)
	if collapsed.BlogID != "b1" {
		t.Fatalf("previous expansion must collapse in the same transaction, got %+v", collapsed)
	}
	expanded := findEffect(t, tx, EffectSectionExpanded)
	if expanded.BlogID != "b2" || expanded.Index != 1 {
		t.Fatalf("unexpected expand effect: %+v", expanded)
	}
	for _, section := range snap.Sections {
		if section.Kind == SectionBlog && section.Blog.ID != "b2" && section.RowCount() != 0 {
			t.Fatalf("section %q must render collapsed", section.Blog.ID)
		}
	}
}

func TestToggleCollapseDropsContainedSelection(t *testing.T) {
	blogs := []*types.Blog{blogFixture("b1", "Alpha")}
	nav := navigatorWith(t, blogs, sessionFixture())
	if nav.Snapshot().Selection == nil {
		t.Fatal("setup should have selected a row")
	}

	tx := nav.Toggle("b1")
	snap := nav.Snapshot()
	if snap.ExpandedBlogID != "" {
		t.Fatalf("expected collapse, got expanded %q", snap.ExpandedBlogID)
	}
	if snap.Selection != nil {
		t.Fatalf("selection inside a collapsed section must be dropped, got %+v", snap.Selection)
	}
	if tx.Persist != nil {
		t.Fatalf("collapse must not persist, got %+v", tx.Persist)
	}
	if !hasEffect(tx, EffectSectionCollapsed) {
		t.Fatalf("missing collapse effect: %+v", tx.Effects)
	}
}

func TestToggleUnknownBlogIsNoop(t *testing.T) {
	nav := navigatorWith(t, []*types.Blog{blogFixture("b1", "Alpha")}, sessionFixture())
	before := nav.Snapshot().Version
	tx := nav.Toggle("missing")
	if !tx.Empty() {
		t.Fatalf("toggle of unknown blog must be empty, got %+v", tx)
	}
	if nav.Snapshot().Version != before {
		t.Fatal("snapshot must not change")
	}
}

func TestSelectValidRowPersists(t *testing.T) {
	blogs := []*types.Blog{blogFixture("b1", "Alpha")}
	nav := navigatorWith(t, blogs, sessionFixture())

	coord := types.Coordinate{Section: 0, Row: 2}
	tx, err := nav.Select(coord)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	selected := findEffect(t, tx, EffectRowSelected)
	if selected.Action != ActionComments {
		t.Fatalf("row 2 should be Comments, got %v", selected.Action)
	}
	if tx.Persist == nil || tx.Persist.Selection != coord {
		t.Fatalf("selection must persist its coordinate, got %+v", tx.Persist)
	}
	if snap := nav.Snapshot(); snap.Selection == nil || *snap.Selection != coord {
		t.Fatalf("unexpected snapshot selection: %+v", snap.Selection)
	}
}

func TestSelectRejectsUnrenderedRow(t *testing.T) {
	blogs := []*types.Blog{blogFixture("b1", "Alpha"), blogFixture("b2", "Beta")}
	nav := navigatorWith(t, blogs, sessionFixture())

	// b2 is collapsed, so its rows are not rendered.
	_, err := nav.Select(types.Coordinate{Section: 1, Row: 0})
	if !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestSelectSettingsIsTransient(t *testing.T) {
	nav := NewNavigator()
	tx := nav.SetData(nil, nil)
	if !hasEffect(tx, EffectNothingToShow) {
		t.Fatalf("empty state should report nothing to show: %+v", tx.Effects)
	}

	before := nav.Snapshot().Version
	tx, err := nav.Select(types.Coordinate{Section: 0, Row: 0})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	selected := findEffect(t, tx, EffectRowSelected)
	if selected.Action != ActionSettings {
		t.Fatalf("expected Settings activation, got %v", selected.Action)
	}
	if tx.Persist != nil {
		t.Fatalf("Settings must never persist, got %+v", tx.Persist)
	}
	snap := nav.Snapshot()
	if snap.Version != before || snap.Selection != nil {
		t.Fatalf("Settings must not become sticky state: version %d selection %+v", snap.Version, snap.Selection)
	}
}

func TestReconcileInsertBeforeSelectionPreservesIt(t *testing.T) {
	blogs := []*types.Blog{blogFixture("b2", "Beta"), blogFixture("b3", "Carol")}
	nav := navigatorWith(t, blogs, sessionFixture())
	if _, err := nav.Select(types.Coordinate{Section: 0, Row: 2}); err != nil {
		t.Fatalf("Select: %v", err)
	}

	tx := nav.Reconcile(store.ChangeSet{
		Inserts: []store.BlogChange{{Blog: blogFixture("b1", "Azure"), Index: 0}},
	})

	inserted := findEffect(t, tx, EffectSectionInserted)
	if inserted.Index != 0 {
		t.Fatalf("Azure sorts first, expected insert at 0, got %d", inserted.Index)
	}
	selected := findEffect(t, tx, EffectRowSelected)
	want := types.Coordinate{Section: 1, Row: 2}
	if selected.Coord != want || selected.Action != ActionComments || selected.BlogID != "b2" {
		t.Fatalf("selection must follow its blog by identity, got %+v", selected)
	}
	snap := nav.Snapshot()
	if snap.ExpandedBlogID != "b2" {
		t.Fatalf("expansion must survive the insert, got %q", snap.ExpandedBlogID)
	}
	if snap.Selection == nil || *snap.Selection != want {
		t.Fatalf("unexpected snapshot selection: %+v", snap.Selection)
	}
	if tx.Persist == nil || tx.Persist.Selection != want {
		t.Fatalf("shifted coordinate must re-persist, got %+v", tx.Persist)
	}
}

func TestReconcileDeleteExpandedFallsBackToFirstBlog(t *testing.T) {
	alpha := blogFixture("b1", "Alpha")
	blogs := []*types.Blog{alpha, blogFixture("b2", "Beta")}
	nav := navigatorWith(t, blogs, sessionFixture())

	tx := nav.Reconcile(store.ChangeSet{
		Deletes: []store.BlogChange{{Blog: alpha, Index: 0}},
	})

	if !hasEffect(tx, EffectSectionCollapsed) || !hasEffect(tx, EffectSectionDeleted) {
		t.Fatalf("deleting the expanded blog must collapse and delete: %+v", tx.Effects)
	}
	selected := findEffect(t, tx, EffectRowSelected)
	if selected.Action != ActionPosts || selected.BlogID != "b2" {
		t.Fatalf("fallback must select the first remaining blog's Posts, got %+v", selected)
	}
	snap := nav.Snapshot()
	if snap.ExpandedBlogID != "b2" {
		t.Fatalf("fallback must expand the first blog, got %q", snap.ExpandedBlogID)
	}
}

func TestReconcileDeleteLastBlogFallsBackToReader(t *testing.T) {
	alpha := blogFixture("b1", "Alpha")
	nav := navigatorWith(t, []*types.Blog{alpha}, sessionFixture())

	tx := nav.Reconcile(store.ChangeSet{
		Deletes: []store.BlogChange{{Blog: alpha, Index: 0}},
	})

	selected := findEffect(t, tx, EffectRowSelected)
	if selected.Action != ActionReader {
		t.Fatalf("with no blogs left the Reader row is the fallback, got %+v", selected)
	}
	snap := nav.Snapshot()
	if snap.ExpandedBlogID != "" {
		t.Fatalf("nothing left to expand, got %q", snap.ExpandedBlogID)
	}
}

func TestReconcileToSettingsOnlyShowsNothing(t *testing.T) {
	alpha := blogFixture("b1", "Alpha")
	nav := navigatorWith(t, []*types.Blog{alpha}, nil)

	tx := nav.Reconcile(store.ChangeSet{
		Deletes: []store.BlogChange{{Blog: alpha, Index: 0}},
	})

	if !hasEffect(tx, EffectNothingToShow) {
		t.Fatalf("Settings alone cannot hold a selection: %+v", tx.Effects)
	}
	if hasEffect(tx, EffectRowSelected) {
		t.Fatalf("no row may be selected: %+v", tx.Effects)
	}
	snap := nav.Snapshot()
	if snap.Selection != nil {
		t.Fatalf("selection must be none, got %+v", snap.Selection)
	}
	if len(snap.Sections) != 1 || snap.Sections[0].Kind != SectionTrailing {
		t.Fatalf("only the trailing section should remain: %+v", snap.Sections)
	}
}

func TestReconcileEmptyChangeSetIsNoop(t *testing.T) {
	nav := navigatorWith(t, []*types.Blog{blogFixture("b1", "Alpha")}, sessionFixture())
	before := nav.Snapshot().Version
	tx := nav.Reconcile(store.ChangeSet{})
	if !tx.Empty() {
		t.Fatalf("empty change set must be a no-op, got %+v", tx)
	}
	if nav.Snapshot().Version != before {
		t.Fatal("snapshot must not change")
	}
}

func TestSignOutWithBlogsRemovesTrailingAndReselects(t *testing.T) {
	blogs := []*types.Blog{blogFixture("b1", "Alpha")}
	nav := navigatorWith(t, blogs, sessionFixture())
	trailingIdx := TrailingSectionIndex(nav.Snapshot().Sections)
	if _, err := nav.Select(types.Coordinate{Section: trailingIdx, Row: 0}); err != nil {
		t.Fatalf("Select reader: %v", err)
	}

	tx := nav.SessionChanged(nil)
	deleted := findEffect(t, tx, EffectSectionDeleted)
	if deleted.Index != trailingIdx {
		t.Fatalf("trailing section should be deleted at %d, got %+v", trailingIdx, deleted)
	}
	selected := findEffect(t, tx, EffectRowSelected)
	if selected.Action != ActionPosts || selected.BlogID != "b1" {
		t.Fatalf("lost trailing selection must fall back to first blog, got %+v", selected)
	}
	if snap := nav.Snapshot(); TrailingSectionIndex(snap.Sections) != -1 {
		t.Fatal("trailing section must be gone when signed out with blogs")
	}
}

func TestSignInAddsTrailingAndKeepsSelection(t *testing.T) {
	blogs := []*types.Blog{blogFixture("b1", "Alpha")}
	nav := navigatorWith(t, blogs, nil)
	before := *nav.Snapshot().Selection

	tx := nav.SessionChanged(sessionFixture())
	inserted := findEffect(t, tx, EffectSectionInserted)
	if inserted.Index != 1 {
		t.Fatalf("trailing section should append after blogs, got %+v", inserted)
	}
	snap := nav.Snapshot()
	if snap.Selection == nil || *snap.Selection != before {
		t.Fatalf("sign-in must not move a valid selection: %+v", snap.Selection)
	}
	if tx.Persist != nil {
		t.Fatalf("unchanged coordinate must not re-persist, got %+v", tx.Persist)
	}
}

func TestRestoreSelectionExpandsAndSelectsAtomically(t *testing.T) {
	blogs := []*types.Blog{blogFixture("b1", "Alpha"), blogFixture("b2", "Beta")}
	saved := types.NavState{HasSelection: true, Selection: types.Coordinate{Section: 1, Row: 2}}

	nav := navigatorWith(t, blogs, sessionFixture())
	tx := nav.RestoreSelection(saved)

	selected := findEffect(t, tx, EffectRowSelected)
	if selected.Coord != saved.Selection || selected.Action != ActionComments || selected.BlogID != "b2" {
		t.Fatalf("unexpected restored selection: %+v", selected)
	}
	snap := nav.Snapshot()
	if snap.ExpandedBlogID != "b2" {
		t.Fatalf("restore must expand the target's section, got %q", snap.ExpandedBlogID)
	}
	if snap.Selection == nil || *snap.Selection != saved.Selection {
		t.Fatalf("unexpected snapshot selection: %+v", snap.Selection)
	}
}

func TestRestoreSelectionStaleCoordinateFallsBack(t *testing.T) {
	blogs := []*types.Blog{blogFixture("b1", "Alpha")}
	nav := navigatorWith(t, blogs, sessionFixture())

	tx := nav.RestoreSelection(types.NavState{HasSelection: true, Selection: types.Coordinate{Section: 7, Row: 9}})
	snap := nav.Snapshot()
	if snap.Selection == nil || *snap.Selection != (types.Coordinate{Section: 0, Row: 0}) {
		t.Fatalf("stale pair must fall back deterministically, got %+v", snap.Selection)
	}
	if tx.Persist != nil {
		t.Fatalf("fallback to the already-current coordinate must not re-persist, got %+v", tx.Persist)
	}
}

func TestRestoreSelectionIgnoresPersistedSettings(t *testing.T) {
	nav := NewNavigator()
	nav.SetData(nil, nil)

	tx := nav.RestoreSelection(types.NavState{HasSelection: true, Selection: types.Coordinate{Section: 0, Row: 0}})
	if !hasEffect(tx, EffectNothingToShow) {
		t.Fatalf("a non-sticky target must fall back to the empty state: %+v", tx.Effects)
	}
	if nav.Snapshot().Selection != nil {
		t.Fatalf("Settings must not restore as a selection: %+v", nav.Snapshot().Selection)
	}
}

func TestRestoreSelectionAbsentStateUsesFallback(t *testing.T) {
	blogs := []*types.Blog{blogFixture("b1", "Alpha")}
	nav := navigatorWith(t, blogs, sessionFixture())

	tx := nav.RestoreSelection(types.NavState{})
	snap := nav.Snapshot()
	if snap.Selection == nil || *snap.Selection != (types.Coordinate{Section: 0, Row: 0}) {
		t.Fatalf("absent state falls back to the first blog's Posts, got %+v", snap.Selection)
	}
	if hasEffect(tx, EffectNothingToShow) {
		t.Fatalf("blogs exist, nothing-to-show is wrong: %+v", tx.Effects)
	}
}

func TestSnapshotVersionIncreasesPerTransaction(t *testing.T) {
	nav := NewNavigator()
	v0 := nav.Snapshot().Version
	nav.SetData([]*types.Blog{blogFixture("b1", "Alpha")}, sessionFixture())
	v1 := nav.Snapshot().Version
	nav.Toggle("b1")
	v2 := nav.Snapshot().Version
	if !(v0 < v1 && v1 < v2) {
		t.Fatalf("versions must be strictly increasing: %d %d %d", v0, v1, v2)
	}
}
