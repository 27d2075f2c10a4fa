package ingredient

import (
	"context"

	domain "gamagourmet/internal/domain/ingredient"
)

// Store persists Ingredient state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Ingredient, error)
	Save(ctx context.Context, value domain.Ingredient) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, activeOnly bool) ([]domain.Ingredient, error)
}
