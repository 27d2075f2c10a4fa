package branch

import (
	"context"

	domain "gamagourmet/internal/domain/branch"
)

// Store persists Branch state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Branch, error)
	Save(ctx context.Context, value domain.Branch) error
	Delete(ctx context.Context, id string) error
	ListByCompany(ctx context.Context, companyID string) ([]domain.Branch, error)
}
