package model

import "time"

// Movement is one confirmed row of the append-only ledger. Negative deltas
// record equipment issued out to a person, positive deltas record returns.
// Movements are never updated or deleted; corrections append an offsetting
// row.
type Movement struct {
	ID        int64      `json:"id"`
	ItemID    int64      `json:"item_id"`
	PersonID  int64      `json:"person_id"`
	Delta     int        `json:"delta"`
	Reason    string     `json:"reason,omitempty"`
	MovedAt   time.Time  `json:"moved_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"` // set for issues only

	// Joined fields (not always populated).
	ItemName   string `json:"item_name,omitempty"`
	ItemCode   string `json:"item_code,omitempty"`
	ItemSize   string `json:"item_size,omitempty"`
	PersonName string `json:"person_name,omitempty"`
}

// Movement reasons.
const (
	ReasonIssued   = "issued to collaborator"
	ReasonReturned = "returned by collaborator"
)

// Issued reports whether the movement took stock out of the warehouse.
func (m *Movement) Issued() bool {
	return m.Delta < 0
}

// ExpiredAt reports whether issued equipment is past its validity at the
// given time. Always false for returns.
func (m *Movement) ExpiredAt(now time.Time) bool {
	return m.ExpiresAt != nil && m.ExpiresAt.Before(now)
}

// OutstandingItem is one row of a person's outstanding balance: an item
// with a strictly positive quantity still issued and not returned.
type OutstandingItem struct {
	ItemID   int64  `json:"item_id"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	Size     string `json:"size,omitempty"`
	Quantity int    `json:"quantity"`
}
