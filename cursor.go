package youte

import "time"

// PageCursor is the unit of pagination: one continuation token within one
// scope of a run.
type PageCursor struct {
	// Token is the provider's page token. Empty means the base page.
	Token string `json:"token"`

	// OwnerKey partitions cursors into scopes. It is the value sent in the
	// endpoint's id parameter: one item id in per-item mode, a comma-joined
	// id batch in batched mode, and empty in plain mode.
	OwnerKey string `json:"owner"`

	// RetrievedAt is nil until the cursor has been fetched.
	RetrievedAt *time.Time `json:"retrievedAt,omitempty"`
}

// IsBase returns true if the cursor points at the first page of its scope.
func (c PageCursor) IsBase() bool {
	return c.Token == ""
}

// Retrieved returns true once the cursor has been stamped.
func (c PageCursor) Retrieved() bool {
	return c.RetrievedAt != nil
}
