package plan

import (
	"context"

	domain "gamagourmet/internal/domain/plan"
)

// Store persists Plan state and company plan assignments.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Plan, error)
	Save(ctx context.Context, value domain.Plan) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, activeOnly bool) ([]domain.Plan, error)
	AssignToCompany(ctx context.Context, a domain.Assignment) error
	GetCompanyPlan(ctx context.Context, companyID string) (domain.Plan, error)
}
