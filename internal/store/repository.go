package store

import (
	"context"
	"errors"

	"blogdeck/internal/types"
)

var ErrBlogNotFound = errors.New("blog not found")

// BlogStore owns the ordered, deduplicated blog list. List always returns
// blogs in display order (name ascending, id as tiebreak); mutations are
// diffed against the previous order and fanned out as ChangeSets.
type BlogStore interface {
	List(ctx context.Context) ([]*types.Blog, error)
	Get(ctx context.Context, id string) (*types.Blog, bool, error)
	Put(ctx context.Context, blog *types.Blog) (*types.Blog, error)
	Delete(ctx context.Context, id string) error
}

type SessionStore interface {
	GetSession(ctx context.Context) (*types.Session, bool, error)
	SetSession(ctx context.Context, session *types.Session) error
	ClearSession(ctx context.Context) error
}

type NavStateStore interface {
	LoadNavState(ctx context.Context) (types.NavState, error)
	SaveNavState(ctx context.Context, state types.NavState) error
}

type CommentStore interface {
	PendingComments(ctx context.Context, blogID string) (int, error)
	SetPendingComments(ctx context.Context, blogID string, count int) error
}

type NotificationStore interface {
	UnseenCount(ctx context.Context) (int, error)
	SetUnseenCount(ctx context.Context, count int) error
}

type Repository interface {
	Blogs() BlogStore
	Sessions() SessionStore
	NavState() NavStateStore
	Comments() CommentStore
	Notifications() NotificationStore
	Subscribe() (<-chan Event, func())
	Close() error
}

// BlogChange pairs a blog with the index the change applies at: the new
// display index for inserts, the pre-change index for deletes.
type BlogChange struct {
	Blog  *types.Blog
	Index int
}

// ChangeSet is one observer notification cycle: the deletes (old indices,
// ascending) and inserts (new indices, ascending) that turn the previous
// display order into the current one.
type ChangeSet struct {
	Deletes []BlogChange
	Inserts []BlogChange
}

func (c ChangeSet) Empty() bool {
	return len(c.Deletes) == 0 && len(c.Inserts) == 0
}

type EventKind int

const (
	EventBlogsChanged EventKind = iota
	EventSessionChanged
	EventUnseenChanged
	// EventResync tells a listener that events were dropped on its channel
	// and incremental deltas can no longer be trusted; it must reload the
	// full state from the stores.
	EventResync
)

// Event is one store notification. Exactly one payload field is meaningful
// per kind: Changes for blogs, Session (possibly nil) for sign-in/out,
// Unseen for the notification badge.
type Event struct {
	Kind    EventKind
	Changes ChangeSet
	Session *types.Session
	Unseen  int
}

// DiffBlogOrders computes the ChangeSet that rewrites the old display order
// into the new one. Identity is the blog ID throughout; an edited blog
// appears as a delete at the old index plus an insert at the new index.
func DiffBlogOrders(old, current []*types.Blog) ChangeSet {
	oldIndex := make(map[string]int, len(old))
	for i, blog := range old {
		if blog == nil {
			continue
		}
		oldIndex[blog.ID] = i
	}
	currentIndex := make(map[string]int, len(current))
	for i, blog := range current {
		if blog == nil {
			continue
		}
		currentIndex[blog.ID] = i
	}

	var set ChangeSet
	for i, blog := range old {
		if blog == nil {
			continue
		}
		if _, ok := currentIndex[blog.ID]; !ok {
			set.Deletes = append(set.Deletes, BlogChange{Blog: blog, Index: i})
		}
	}
	for i, blog := range current {
		if blog == nil {
			continue
		}
		oldIdx, existed := oldIndex[blog.ID]
		if !existed {
			set.Inserts = append(set.Inserts, BlogChange{Blog: blog, Index: i})
			continue
		}
		// Index shifts caused by surrounding inserts/deletes are not
		// changes; only an edited blog becomes a delete+insert pair.
		if !blogEqual(old[oldIdx], blog) {
			set.Deletes = append(set.Deletes, BlogChange{Blog: old[oldIdx], Index: oldIdx})
			set.Inserts = append(set.Inserts, BlogChange{Blog: blog, Index: i})
		}
	}
	sortChangesByIndex(set.Deletes)
	sortChangesByIndex(set.Inserts)
	return set
}

func sortChangesByIndex(changes []BlogChange) {
	for i := 1; i < len(changes); i++ {
		for j := i; j > 0 && changes[j].Index < changes[j-1].Index; j-- {
			changes[j], changes[j-1] = changes[j-1], changes[j]
		}
	}
}

func blogEqual(a, b *types.Blog) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.URL == b.URL &&
		a.AccountID == b.AccountID &&
		a.Admin == b.Admin &&
		a.Private == b.Private &&
		a.SupportsThemes == b.SupportsThemes
}
