package dish

import (
	"context"

	domain "gamagourmet/internal/domain/dish"
)

// Store persists Dish state and the dish→ingredient join.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Dish, error)
	Save(ctx context.Context, value domain.Dish) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Dish, error)
	Count(ctx context.Context, activeOnly bool) (int, error)
	ReplaceIngredients(ctx context.Context, dishID string, ingredients []domain.DishIngredient) error
	ListIngredients(ctx context.Context, dishID string) ([]domain.DishIngredient, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Search     string
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}
