package app

import (
	"fmt"
	"io"
	"strings"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"blogdeck/internal/types"
)

const (
	sidebarTitleMax  = 40
	expandedChevron  = "▾"
	collapsedChevron = "▸"
	privateMark      = "(private)"
)

type sidebarItemKind int

const (
	sidebarSectionHeader sidebarItemKind = iota
	sidebarActionRow
)

// sidebarItem is one rendered line: a section header (blog or trailing) or
// an action row inside an expanded section. Coordinates address rows only;
// headers are toggle targets.
type sidebarItem struct {
	kind     sidebarItemKind
	section  int
	row      int
	blog     *types.Blog
	trailing bool
	action   RowAction
	expanded bool
	badge    int
}

func (s *sidebarItem) Title() string {
	switch s.kind {
	case sidebarSectionHeader:
		if s.trailing {
			return "My Account"
		}
		if s.blog == nil {
			return ""
		}
		return truncateText(s.blog.Name, sidebarTitleMax)
	case sidebarActionRow:
		return s.action.Label()
	default:
		return ""
	}
}

func (s *sidebarItem) Description() string { return "" }

func (s *sidebarItem) FilterValue() string { return s.Title() }

func (s *sidebarItem) key() string {
	switch s.kind {
	case sidebarSectionHeader:
		if s.trailing {
			return "trailing"
		}
		if s.blog == nil {
			return "blog:"
		}
		return "blog:" + s.blog.ID
	case sidebarActionRow:
		owner := "trailing"
		if s.blog != nil {
			owner = s.blog.ID
		}
		return fmt.Sprintf("row:%s:%s", owner, s.action)
	default:
		return ""
	}
}

func (s *sidebarItem) coordinate() (types.Coordinate, bool) {
	if s.kind != sidebarActionRow {
		return types.Coordinate{}, false
	}
	return types.Coordinate{Section: s.section, Row: s.row}, true
}

// sidebarBadges carries the decoration counts pulled at rebuild time:
// pending comments per blog and the global unseen notification count.
// Badges never change section shape.
type sidebarBadges struct {
	comments map[string]int
	unseen   int
}

// buildSidebarItems flattens the section list into list items. Rows exist
// only for sections whose Rows slice is non-empty, which is exactly the
// expanded blog plus the trailing section.
func buildSidebarItems(sections []Section, badges sidebarBadges) []list.Item {
	items := make([]list.Item, 0, len(sections)*2)
	for sectionIdx, section := range sections {
		header := &sidebarItem{
			kind:     sidebarSectionHeader,
			section:  sectionIdx,
			blog:     section.Blog,
			trailing: section.Kind == SectionTrailing,
			expanded: len(section.Rows) > 0,
		}
		items = append(items, header)
		for rowIdx, action := range section.Rows {
			item := &sidebarItem{
				kind:     sidebarActionRow,
				section:  sectionIdx,
				row:      rowIdx,
				blog:     section.Blog,
				trailing: section.Kind == SectionTrailing,
				action:   action,
			}
			switch action {
			case ActionComments:
				if section.Blog != nil {
					item.badge = badges.comments[section.Blog.ID]
				}
			case ActionNotifications:
				item.badge = badges.unseen
			}
			items = append(items, item)
		}
	}
	return items
}

type sidebarDelegate struct {
	selectedKey string
}

func (d *sidebarDelegate) Height() int  { return 1 }
func (d *sidebarDelegate) Spacing() int { return 0 }

func (d *sidebarDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d *sidebarDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(*sidebarItem)
	if !ok {
		return
	}
	maxWidth := m.Width()
	isSelected := d.selectedKey != "" && entry.key() == d.selectedKey
	isCursor := index == m.Index()

	switch entry.kind {
	case sidebarSectionHeader:
		label := entry.Title()
		if entry.blog != nil && entry.blog.Private {
			label = label + " " + privateMark
		}
		prefix := "  "
		if !entry.trailing {
			if entry.expanded {
				prefix = expandedChevron + " "
			} else {
				prefix = collapsedChevron + " "
			}
		}
		line := truncateToWidth(prefix+label, maxWidth)
		style := sectionHeaderStyle
		if entry.trailing {
			style = trailingHeaderStyle
		}
		if isCursor {
			style = cursorStyle
		}
		fmt.Fprint(w, style.Render(line))
	case sidebarActionRow:
		suffix := ""
		if entry.badge > 0 {
			suffix = fmt.Sprintf(" (%d)", entry.badge)
		}
		line := "    " + entry.Title()
		available := maxWidth - ansi.StringWidth(suffix)
		if available > 0 {
			line = truncateToWidth(line, available)
		}
		line += suffix
		style := rowStyle
		if isSelected {
			style = selectedRowStyle
		}
		if isCursor {
			style = cursorStyle
		}
		fmt.Fprint(w, style.Render(line))
	}
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	if ansi.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return ansi.Cut(text, 0, width-1) + "…"
}

func truncateText(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}
	return strings.TrimSpace(text[:maxLen]) + "…"
}
