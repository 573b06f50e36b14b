package app

import (
	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"

	"blogdeck/internal/types"
)

// SidebarController owns the bubbles list that renders the section model.
// It consumes whole render transactions: every apply replaces the item set
// and re-derives the cursor, so a superseded transaction is simply never
// looked at.
type SidebarController struct {
	list     list.Model
	delegate *sidebarDelegate
}

func NewSidebarController() *SidebarController {
	delegate := &sidebarDelegate{}
	mlist := list.New([]list.Item{}, delegate, minSidebarWidth, minContentHeight)
	mlist.Title = "Blogs"
	mlist.SetShowHelp(false)
	mlist.SetFilteringEnabled(false)
	mlist.SetShowPagination(false)
	mlist.SetShowStatusBar(false)
	mlist.Styles.Title = headerStyle
	return &SidebarController{list: mlist, delegate: delegate}
}

func (c *SidebarController) View() string {
	return c.list.View()
}

func (c *SidebarController) SetSize(width, height int) {
	c.list.SetSize(width, height)
}

func (c *SidebarController) CursorUp()   { c.list.CursorUp() }
func (c *SidebarController) CursorDown() { c.list.CursorDown() }

func (c *SidebarController) Update(msg tea.Msg) tea.Cmd {
	updated, cmd := c.list.Update(msg)
	c.list = updated
	return cmd
}

// CursorItem returns the item under the cursor, nil when the list is empty.
func (c *SidebarController) CursorItem() *sidebarItem {
	item, ok := c.list.SelectedItem().(*sidebarItem)
	if !ok {
		return nil
	}
	return item
}

// Apply renders one transaction against the given snapshot: rebuild items,
// mark the sticky selection, then place the cursor per the batch's effects.
func (c *SidebarController) Apply(snapshot *NavSnapshot, badges sidebarBadges, tx Transaction) {
	if snapshot == nil {
		return
	}
	items := buildSidebarItems(snapshot.Sections, badges)
	c.delegate.selectedKey = selectionKey(snapshot)
	c.list.SetItems(items)

	for _, effect := range tx.Effects {
		switch effect.Kind {
		case EffectRowSelected:
			c.selectByCoordinate(effect.Coord)
		case EffectNothingToShow:
			// The cursor still lands somewhere useful: the Settings row
			// when one exists, else the first item.
			if !c.selectByAction(ActionSettings) {
				c.list.Select(0)
			}
		}
	}
}

func (c *SidebarController) selectByCoordinate(coord types.Coordinate) bool {
	for i, item := range c.list.Items() {
		entry, ok := item.(*sidebarItem)
		if !ok {
			continue
		}
		at, isRow := entry.coordinate()
		if isRow && at == coord {
			c.list.Select(i)
			return true
		}
	}
	return false
}

func (c *SidebarController) selectByHeader(blogID string) bool {
	for i, item := range c.list.Items() {
		entry, ok := item.(*sidebarItem)
		if !ok || entry.kind != sidebarSectionHeader || entry.blog == nil {
			continue
		}
		if entry.blog.ID == blogID {
			c.list.Select(i)
			return true
		}
	}
	return false
}

func (c *SidebarController) selectByAction(action RowAction) bool {
	for i, item := range c.list.Items() {
		entry, ok := item.(*sidebarItem)
		if !ok || entry.kind != sidebarActionRow {
			continue
		}
		if entry.action == action {
			c.list.Select(i)
			return true
		}
	}
	return false
}

func selectionKey(snapshot *NavSnapshot) string {
	if snapshot == nil || snapshot.Selection == nil {
		return ""
	}
	coord := *snapshot.Selection
	action, blog, ok := ActionAt(snapshot.Sections, coord)
	if !ok {
		return ""
	}
	owner := "trailing"
	if blog != nil {
		owner = blog.ID
	}
	return "row:" + owner + ":" + action.String()
}
