package model

import (
	"fmt"
	"time"
)

// Person represents a collaborator or staff member. Every person can have
// equipment issued to them; operators and admins additionally run the
// warehouse workflows.
type Person struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Level        int        `json:"level"`
	FullName     string     `json:"full_name"`
	Badge        string     `json:"badge"`
	NationalID   string     `json:"national_id,omitempty"`
	CompanyID    *int64     `json:"company_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	CompanyName string `json:"company_name,omitempty"`
}

// Levels.
const (
	LevelHolder   = 1 // equipment holder, no warehouse rights
	LevelOperator = 2 // warehouse operator, may issue and receive stock
	LevelAdmin    = 3 // full management rights
)

// LevelAtLeast checks if level meets or exceeds the minimum required level.
// Unknown levels fail closed.
func LevelAtLeast(level, minimum int) bool {
	if level < LevelHolder || level > LevelAdmin {
		return false
	}
	if minimum < LevelHolder || minimum > LevelAdmin {
		return false
	}
	return level >= minimum
}

// ValidatePassword checks password requirements for new credentials.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
