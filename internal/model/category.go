package model

import "time"

// Category groups items by protection type (gloves, helmets, ...).
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Company is the employer a person belongs to.
type Company struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	TaxID     string     `json:"tax_id,omitempty"`
	Address   string     `json:"address,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
