package account

import (
	"context"

	domain "gamagourmet/internal/domain/account"
)

// Store persists Account state.
//
// GetByID is the elevated lookup path: it resolves any account by primary
// key with no company scoping applied, and is what the access gate uses to
// load the caller's own record. Company-scoped reads go through
// ListByCompany.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Account, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
	CountByCompany(ctx context.Context, companyID string, activeOnly bool) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Role   string
}
