package ingredient

import (
	"errors"
	"strings"
	"time"
)

// Measurement units for ingredients.
const (
	UnitGram       = "g"
	UnitMilliliter = "ml"
	UnitUnit       = "unidad"
)

// ValidUnits contains all valid measurement units.
var ValidUnits = []string{UnitGram, UnitMilliliter, UnitUnit}

// Domain errors
var (
	ErrEmptyName   = errors.New("ingredient name cannot be empty")
	ErrInvalidUnit = errors.New("unit must be one of: g, ml, unidad")
)

// Ingredient is a catalog item dishes are composed from.
type Ingredient struct {
	ID        string
	Name      string
	Unit      string
	Active    bool
	CreatedAt time.Time
}

// Validate checks if the Ingredient has valid data.
// PRE: Ingredient struct is populated
// POST: Returns nil if valid, error otherwise
func (i *Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if !isValidUnit(i.Unit) {
		return ErrInvalidUnit
	}
	return nil
}

func isValidUnit(u string) bool {
	for _, v := range ValidUnits {
		if v == u {
			return true
		}
	}
	return false
}
