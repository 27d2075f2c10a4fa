package menu

import (
	"errors"
	"strings"
	"time"

	"gamagourmet/internal/domain/dish"
)

// Buckets group dishes within a day of a weekly menu.
const (
	BucketPrincipales = "principales"
	BucketEntradas    = "entradas"
	BucketPostres     = "postres"
)

// ValidBuckets contains all composition buckets.
var ValidBuckets = []string{BucketPrincipales, BucketEntradas, BucketPostres}

// BucketCapacity is the maximum number of distinct dishes allowed in one
// (weekday, bucket) slot. Static configuration, not branching logic, so
// capacities stay adjustable and testable in isolation.
var BucketCapacity = map[string]int{
	BucketPrincipales: 5,
	BucketEntradas:    2,
	BucketPostres:     4,
}

// categoryBuckets maps dish catalog categories to composition buckets.
// Beverages are intentionally absent: they never enter the composer.
var categoryBuckets = map[string]string{
	dish.CategoryPlatoPrincipal: BucketPrincipales,
	dish.CategoryEntrada:        BucketEntradas,
	dish.CategoryEnsalada:       BucketEntradas,
	dish.CategorySopa:           BucketEntradas,
	dish.CategoryPostre:         BucketPostres,
}

// BucketForCategory resolves a dish category tag to its composition bucket.
// Beverages return ok=false and are excluded from composition. Any other
// unrecognized tag falls back to principales, a deliberate default used
// when reloading stored menus, not an error.
func BucketForCategory(tag string) (bucket string, ok bool) {
	if tag == dish.CategoryBebida {
		return "", false
	}
	if b, found := categoryBuckets[tag]; found {
		return b, true
	}
	return BucketPrincipales, true
}

// Weekday bounds for menu authoring. Assignments store ISO weekday numbers;
// the authoring grid covers Monday through Friday.
const (
	FirstWeekday = 1 // Monday
	LastWeekday  = 5 // Friday
)

// WeekdayNames maps weekday numbers to Spanish display names.
var WeekdayNames = map[int]string{
	1: "Lunes",
	2: "Martes",
	3: "Miércoles",
	4: "Jueves",
	5: "Viernes",
}

// Domain errors
var (
	ErrEmptyName        = errors.New("menu name cannot be empty")
	ErrMissingStartDate = errors.New("menu start date is required")
	ErrMissingEndDate   = errors.New("menu end date is required")
	ErrDatesOutOfOrder  = errors.New("menu end date cannot be before start date")
	ErrNoDishes         = errors.New("menu must have at least one dish assigned")
	ErrAlreadyPublished = errors.New("menu is already published")
)

// WeeklyMenu is the persisted aggregate root. It owns zero or more
// SlotAssignment rows in menu_platos.
type WeeklyMenu struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Published bool
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotAssignment is one row of the menu_platos join table: a dish placed
// at a (weekday, bucket) slot with its 1-based position in that slot.
type SlotAssignment struct {
	MenuID   string
	DishID   string
	Weekday  int
	Bucket   string
	Position int
}

// Validate checks the menu header fields.
// PRE: WeeklyMenu struct is populated
// POST: Returns nil if valid, error otherwise
func (m *WeeklyMenu) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if m.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if m.EndDate.IsZero() {
		return ErrMissingEndDate
	}
	if m.EndDate.Before(m.StartDate) {
		return ErrDatesOutOfOrder
	}
	return nil
}

// Publish marks the menu as published.
// PRE: menu is not already published
// POST: Published is true, UpdatedAt is set
func (m *WeeklyMenu) Publish(now time.Time) error {
	if m.Published {
		return ErrAlreadyPublished
	}
	m.Published = true
	m.UpdatedAt = now
	return nil
}

// Covers reports whether the menu's date range includes the given day.
// INVARIANT: WeeklyMenu fields are not mutated
func (m *WeeklyMenu) Covers(day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	return !d.Before(m.StartDate.Truncate(24*time.Hour)) &&
		!d.After(m.EndDate.Truncate(24*time.Hour))
}
