package company

import (
	"context"

	domain "gamagourmet/internal/domain/company"
)

// Store persists Company state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Company, error)
	Save(ctx context.Context, value domain.Company) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Company, error)
	Count(ctx context.Context, activeOnly bool) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}
