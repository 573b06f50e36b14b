package types

import (
	"sort"
	"time"
)

// Blog is one connected site. Identity is the ID; two snapshots may carry
// different Blog values for the same ID after an edit.
type Blog struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	AccountID      string    `json:"account_id"`
	Admin          bool      `json:"admin"`
	Private        bool      `json:"private"`
	SupportsThemes bool      `json:"supports_themes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BlogLess is the display order: name ascending, blog id as tiebreak so
// equal names still sort deterministically.
func BlogLess(a, b *Blog) bool {
	if a == nil || b == nil {
		return b != nil
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// SortBlogs orders blogs in place by display order.
func SortBlogs(blogs []*Blog) {
	sort.SliceStable(blogs, func(i, j int) bool {
		return BlogLess(blogs[i], blogs[j])
	})
}
