package app

import (
	"blogdeck/internal/store"
	"blogdeck/internal/types"
)

type initialLoadMsg struct {
	blogs    []*types.Blog
	session  *types.Session
	navState types.NavState
	unseen   int
	err      error
}

type storeEventMsg struct {
	event store.Event
	ok    bool
}

type resyncMsg struct {
	blogs   []*types.Blog
	session *types.Session
	err     error
}

type navStateSavedMsg struct {
	err error
}

type badgeTickMsg struct{}

type clipboardResultMsg struct {
	url string
	err error
}
