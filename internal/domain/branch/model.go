package branch

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyName      = errors.New("branch name cannot be empty")
	ErrEmptyCompanyID = errors.New("branch must belong to a company")
)

// Branch is a delivery location owned by a company.
type Branch struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
}

// Validate checks if the Branch has valid data.
// PRE: Branch struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Branch) Validate() error {
	if b.CompanyID == "" {
		return ErrEmptyCompanyID
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
