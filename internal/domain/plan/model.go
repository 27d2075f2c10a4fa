package plan

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyName      = errors.New("plan name cannot be empty")
	ErrInvalidPrice   = errors.New("weekly price cannot be negative")
	ErrInvalidMeals   = errors.New("meals per week must be between 1 and 7")
	ErrEmptyCompanyID = errors.New("assignment requires a company")
	ErrEmptyPlanID    = errors.New("assignment requires a plan")
)

// Plan is a subscription tier a company can be assigned to.
type Plan struct {
	ID           string
	Name         string
	Description  string // Markdown content
	PriceCents   int    // weekly price per employee, in cents
	MealsPerWeek int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Assignment links a company to its active plan. A company has at most
// one active assignment; assigning a new plan replaces the old row.
type Assignment struct {
	CompanyID  string
	PlanID     string
	AssignedAt time.Time
}

// Validate checks if the Plan has valid data.
// PRE: Plan struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if p.MealsPerWeek < 1 || p.MealsPerWeek > 7 {
		return ErrInvalidMeals
	}
	return nil
}

// Validate checks if the Assignment has valid data.
// PRE: Assignment struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Assignment) Validate() error {
	if a.CompanyID == "" {
		return ErrEmptyCompanyID
	}
	if a.PlanID == "" {
		return ErrEmptyPlanID
	}
	return nil
}
