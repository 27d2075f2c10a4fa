package menu

import (
	"context"
	"time"

	domain "gamagourmet/internal/domain/menu"
)

// Store persists WeeklyMenu state and its slot assignments.
//
// ReplaceAssignments implements the replace-all strategy: every edit
// deletes the menu's existing menu_platos rows and inserts the full new
// set in one transaction. There is no diffing and no concurrency token;
// the last submitter wins.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.WeeklyMenu, error)
	Save(ctx context.Context, value domain.WeeklyMenu) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.WeeklyMenu, error)
	Count(ctx context.Context, publishedOnly bool) (int, error)
	GetCurrentPublished(ctx context.Context, day time.Time) (domain.WeeklyMenu, error)
	ReplaceAssignments(ctx context.Context, menuID string, assignments []domain.SlotAssignment) error
	ListAssignments(ctx context.Context, menuID string) ([]domain.SlotAssignment, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	PublishedOnly bool
	ActiveOnly    bool
	Limit         int
	Offset        int
}
