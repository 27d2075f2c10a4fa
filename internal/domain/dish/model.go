package dish

import (
	"errors"
	"strings"
	"time"
)

// Category tags for dishes. These are the raw catalog tags; the menu
// package maps them into composition buckets.
const (
	CategoryPlatoPrincipal = "plato_principal"
	CategoryEntrada        = "entrada"
	CategoryEnsalada       = "ensalada"
	CategorySopa           = "sopa"
	CategoryPostre         = "postre"
	CategoryBebida         = "bebida"
)

// ValidCategories contains all valid category tags.
var ValidCategories = []string{
	CategoryPlatoPrincipal,
	CategoryEntrada,
	CategoryEnsalada,
	CategorySopa,
	CategoryPostre,
	CategoryBebida,
}

// Domain errors
var (
	ErrEmptyName       = errors.New("dish name cannot be empty")
	ErrInvalidCategory = errors.New("category must be one of: plato_principal, entrada, ensalada, sopa, postre, bebida")
)

// Dish is a catalog entry that can be assigned into weekly menus.
// Description supports Markdown formatting.
type Dish struct {
	ID          string
	Name        string
	Description string // Markdown content
	Category    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DishIngredient links a dish to one of its ingredients.
type DishIngredient struct {
	DishID       string
	IngredientID string
	Quantity     float64 // in the ingredient's unit
}

// Validate checks if the Dish has valid data.
// PRE: Dish struct is populated
// POST: Returns nil if valid, error otherwise
func (d *Dish) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if !IsValidCategory(d.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// IsValidCategory reports whether tag is a known catalog category.
func IsValidCategory(tag string) bool {
	for _, v := range ValidCategories {
		if v == tag {
			return true
		}
	}
	return false
}
