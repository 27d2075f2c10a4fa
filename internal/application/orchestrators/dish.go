package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gamagourmet/internal/domain/dish"
)

// DishStoreForOrchestrator defines the store interface needed by dish orchestrators.
type DishStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (dish.Dish, error)
	Save(ctx context.Context, d dish.Dish) error
	ReplaceIngredients(ctx context.Context, dishID string, ingredients []dish.DishIngredient) error
}

// SaveDishInput carries input for create/edit of a dish.
type SaveDishInput struct {
	DishID      string // empty = create
	Name        string
	Description string
	Category    string
	Ingredients []dish.DishIngredient
}

// SaveDishDeps holds dependencies for dish orchestrators.
type SaveDishDeps struct {
	DishStore  DishStoreForOrchestrator
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSaveDish creates or updates a dish and replaces its ingredient list.
// PRE: Name non-empty, Category valid
// POST: Dish persisted; plato_ingredientes holds exactly the given rows
func ExecuteSaveDish(ctx context.Context, input SaveDishInput, deps SaveDishDeps) (dish.Dish, error) {
	now := deps.Now()
	creating := input.DishID == ""

	var d dish.Dish
	if creating {
		d = dish.Dish{
			ID:        deps.GenerateID(),
			Active:    true,
			CreatedAt: now,
		}
	} else {
		existing, err := deps.DishStore.GetByID(ctx, input.DishID)
		if err != nil {
			return dish.Dish{}, err
		}
		d = existing
		d.UpdatedAt = now
	}

	d.Name = input.Name
	d.Description = input.Description
	d.Category = input.Category

	if err := d.Validate(); err != nil {
		return dish.Dish{}, err
	}
	if err := deps.DishStore.Save(ctx, d); err != nil {
		return dish.Dish{}, err
	}

	for i := range input.Ingredients {
		input.Ingredients[i].DishID = d.ID
	}
	if err := deps.DishStore.ReplaceIngredients(ctx, d.ID, input.Ingredients); err != nil {
		return dish.Dish{}, err
	}

	event := "plato_updated"
	if creating {
		event = "plato_created"
	}
	slog.Info("catalog_event", "event", event, "plato_id", d.ID, "name", d.Name, "category", d.Category)
	return d, nil
}

// SetDishActiveInput carries input for the activation toggle.
type SetDishActiveInput struct {
	DishID string
	Active bool
}

// ExecuteSetDishActive activates or deactivates a dish. Inactive dishes
// stay referenced by existing menus but leave the composer candidate list.
// PRE: DishID is non-empty; dish exists
// POST: Active flag updated
func ExecuteSetDishActive(ctx context.Context, input SetDishActiveInput, deps SaveDishDeps) error {
	if input.DishID == "" {
		return errors.New("dish ID is required")
	}
	d, err := deps.DishStore.GetByID(ctx, input.DishID)
	if err != nil {
		return err
	}
	d.Active = input.Active
	d.UpdatedAt = deps.Now()
	if err := deps.DishStore.Save(ctx, d); err != nil {
		return err
	}

	event := "plato_deactivated"
	if input.Active {
		event = "plato_reactivated"
	}
	slog.Info("catalog_event", "event", event, "plato_id", input.DishID)
	return nil
}
