package company

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 120
)

// Domain errors
var (
	ErrEmptyName    = errors.New("company name cannot be empty")
	ErrNameTooLong  = errors.New("company name cannot exceed 120 characters")
	ErrInvalidEmail = errors.New("contact email must contain '@'")
)

// Company represents a client company subscribed to the meal service.
type Company struct {
	ID           string
	Name         string
	TaxID        string // fiscal identifier (RUC)
	ContactEmail string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks if the Company has valid data.
// PRE: Company struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if c.ContactEmail != "" && !strings.Contains(c.ContactEmail, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// Deactivate marks the company inactive. Deliveries and logins for its
// accounts stop being meaningful but rows are never deleted.
// POST: Active is false
func (c *Company) Deactivate() {
	c.Active = false
}

// Reactivate marks the company active again.
// POST: Active is true
func (c *Company) Reactivate() {
	c.Active = true
}
