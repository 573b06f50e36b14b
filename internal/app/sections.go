package app

import (
	"blogdeck/internal/types"
)

// RowAction identifies the fixed row set of the sidebar. Blog sections carry
// Posts through Themes; the trailing section carries Reader, Notifications,
// and Settings.
type RowAction int

const (
	ActionPosts RowAction = iota
	ActionPages
	ActionComments
	ActionStats
	ActionViewSite
	ActionThemes
	ActionReader
	ActionNotifications
	ActionSettings
)

func (a RowAction) String() string {
	switch a {
	case ActionPosts:
		return "posts"
	case ActionPages:
		return "pages"
	case ActionComments:
		return "comments"
	case ActionStats:
		return "stats"
	case ActionViewSite:
		return "view site"
	case ActionThemes:
		return "themes"
	case ActionReader:
		return "reader"
	case ActionNotifications:
		return "notifications"
	case ActionSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// Label returns the title-cased form used by the sidebar delegate.
func (a RowAction) Label() string {
	switch a {
	case ActionPosts:
		return "Posts"
	case ActionPages:
		return "Pages"
	case ActionComments:
		return "Comments"
	case ActionStats:
		return "Stats"
	case ActionViewSite:
		return "View Site"
	case ActionThemes:
		return "Themes"
	case ActionReader:
		return "Reader"
	case ActionNotifications:
		return "Notifications"
	case ActionSettings:
		return "Settings"
	default:
		return ""
	}
}

type SectionKind int

const (
	SectionBlog SectionKind = iota
	SectionTrailing
)

// Section is one sidebar group in display order. Rows is the currently
// rendered row set: empty for a collapsed blog section. A Section is derived
// state and never mutated in place.
type Section struct {
	Kind SectionKind
	Blog *types.Blog
	Rows []RowAction
}

func (s Section) Identity() string {
	if s.Kind == SectionTrailing {
		return "trailing"
	}
	if s.Blog == nil {
		return "blog:"
	}
	return "blog:" + s.Blog.ID
}

func (s Section) RowCount() int {
	return len(s.Rows)
}

// BuildSections derives the full renderable section list from the blog set,
// the active session, and the single expanded blog. Pure function: blog
// sections sorted by display name (id tiebreak), trailing section last and
// present only when it would be non-empty.
func BuildSections(blogs []*types.Blog, session *types.Session, expandedBlogID string) []Section {
	deduped := dedupeBlogs(blogs)
	types.SortBlogs(deduped)

	sections := make([]Section, 0, len(deduped)+1)
	for _, blog := range deduped {
		var rows []RowAction
		if blog.ID == expandedBlogID {
			rows = blogRows(blog, session)
		}
		sections = append(sections, Section{Kind: SectionBlog, Blog: blog, Rows: rows})
	}
	if trailing := trailingRows(session, len(deduped) > 0); len(trailing) > 0 {
		sections = append(sections, Section{Kind: SectionTrailing, Rows: trailing})
	}
	return sections
}

func dedupeBlogs(blogs []*types.Blog) []*types.Blog {
	seen := make(map[string]struct{}, len(blogs))
	out := make([]*types.Blog, 0, len(blogs))
	for _, blog := range blogs {
		if blog == nil {
			continue
		}
		if _, ok := seen[blog.ID]; ok {
			continue
		}
		seen[blog.ID] = struct{}{}
		out = append(out, blog)
	}
	return out
}

// blogRows is the expanded row set for one blog. Themes shows only for an
// admin of a theme-capable blog owned by the active session's account.
func blogRows(blog *types.Blog, session *types.Session) []RowAction {
	rows := []RowAction{ActionPosts, ActionPages, ActionComments, ActionStats, ActionViewSite}
	if blog != nil && session != nil &&
		blog.SupportsThemes && blog.Admin && blog.AccountID == session.AccountID {
		rows = append(rows, ActionThemes)
	}
	return rows
}

func trailingRows(session *types.Session, haveBlogs bool) []RowAction {
	if session != nil {
		return []RowAction{ActionReader, ActionNotifications}
	}
	if !haveBlogs {
		return []RowAction{ActionSettings}
	}
	return nil
}

// BlogSectionIndex resolves a blog id to its current section index, -1 when
// the blog is no longer listed. Indices shift on every structural change, so
// callers resolve fresh each transaction.
func BlogSectionIndex(sections []Section, blogID string) int {
	if blogID == "" {
		return -1
	}
	for i, section := range sections {
		if section.Kind == SectionBlog && section.Blog != nil && section.Blog.ID == blogID {
			return i
		}
	}
	return -1
}

func TrailingSectionIndex(sections []Section) int {
	for i, section := range sections {
		if section.Kind == SectionTrailing {
			return i
		}
	}
	return -1
}

// ActionAt resolves a coordinate to its action and owning blog. ok is false
// when the coordinate does not address a currently rendered row.
func ActionAt(sections []Section, coord types.Coordinate) (RowAction, *types.Blog, bool) {
	if coord.Section < 0 || coord.Section >= len(sections) {
		return 0, nil, false
	}
	section := sections[coord.Section]
	if coord.Row < 0 || coord.Row >= len(section.Rows) {
		return 0, nil, false
	}
	return section.Rows[coord.Row], section.Blog, true
}

// StickySelectable reports whether the coordinate may become the persisted
// selection. Settings is presentable but transient: navigating to it never
// produces sticky state.
func StickySelectable(sections []Section, coord types.Coordinate) bool {
	action, _, ok := ActionAt(sections, coord)
	return ok && action != ActionSettings
}
