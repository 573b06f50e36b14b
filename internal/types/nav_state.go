package types

// Coordinate addresses one rendered sidebar row as (section, row).
// Section indices are positions in the current section list and are not
// stable across structural changes; a Coordinate must be re-validated
// against the section list that is current when it is used.
type Coordinate struct {
	Section int `json:"section"`
	Row     int `json:"row"`
}

// NavState is the persisted sidebar selection. Only the raw index pair
// survives a restart; restoring it after the blog list changed shape may
// land on a different blog, which callers handle by re-validating.
type NavState struct {
	HasSelection bool       `json:"has_selection"`
	Selection    Coordinate `json:"selection"`
}
