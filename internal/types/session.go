package types

import "time"

// Session is the active platform login. A nil session means only
// self-hosted blogs are connected and no global actions are available.
type Session struct {
	AccountID  string    `json:"account_id"`
	Username   string    `json:"username"`
	SignedInAt time.Time `json:"signed_in_at"`
}
