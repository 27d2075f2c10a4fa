package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gamagourmet/internal/domain/menu"
)

// MenuStoreForSave defines the store interface needed by the menu orchestrators.
type MenuStoreForSave interface {
	GetByID(ctx context.Context, id string) (menu.WeeklyMenu, error)
	Save(ctx context.Context, m menu.WeeklyMenu) error
	Delete(ctx context.Context, id string) error
	ReplaceAssignments(ctx context.Context, menuID string, assignments []menu.SlotAssignment) error
}

// SaveMenuInput carries input for the save menu orchestrator.
type SaveMenuInput struct {
	MenuID    string // empty = create a new menu
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Publish   bool
	Composer  *menu.Composer
}

// SaveMenuDeps holds dependencies for SaveMenu.
type SaveMenuDeps struct {
	MenuStore  MenuStoreForSave
	GenerateID func() string
	Now        func() time.Time
}

var ErrNilComposer = errors.New("menu composer state is required")

// ExecuteSaveMenu validates the menu header and composer state, persists
// the header, and replaces the menu's assignment rows with the composer's
// flattened snapshot. Edits are replace-all: the previous assignment set
// is deleted and fully re-inserted, never diffed.
//
// On create, if the assignment insert fails after the header row was
// written, a best-effort compensating delete removes the orphaned header;
// a failure of that delete is only logged.
//
// PRE: Composer is non-nil; name and both dates present; end >= start;
// at least one dish assigned
// POST: Header and assignments persisted; returns the menu
func ExecuteSaveMenu(ctx context.Context, input SaveMenuInput, deps SaveMenuDeps) (menu.WeeklyMenu, error) {
	if input.Composer == nil {
		return menu.WeeklyMenu{}, ErrNilComposer
	}
	if input.Composer.Count() == 0 {
		return menu.WeeklyMenu{}, menu.ErrNoDishes
	}

	now := deps.Now()
	creating := input.MenuID == ""

	var m menu.WeeklyMenu
	if creating {
		m = menu.WeeklyMenu{
			ID:        deps.GenerateID(),
			Active:    true,
			CreatedAt: now,
		}
	} else {
		existing, err := deps.MenuStore.GetByID(ctx, input.MenuID)
		if err != nil {
			return menu.WeeklyMenu{}, err
		}
		m = existing
		m.UpdatedAt = now
	}

	m.Name = input.Name
	m.StartDate = input.StartDate
	m.EndDate = input.EndDate
	if input.Publish {
		m.Published = true
	}

	if err := m.Validate(); err != nil {
		return menu.WeeklyMenu{}, err
	}

	if err := deps.MenuStore.Save(ctx, m); err != nil {
		return menu.WeeklyMenu{}, err
	}

	rows := input.Composer.Flatten(m.ID)
	if err := deps.MenuStore.ReplaceAssignments(ctx, m.ID, rows); err != nil {
		if creating {
			// Compensating delete of the orphaned header. Not transactional
			// with the failed insert; if it also fails we only log.
			if delErr := deps.MenuStore.Delete(ctx, m.ID); delErr != nil {
				slog.Error("menu_event", "event", "menu_compensation_failed", "menu_id", m.ID, "error", delErr)
			}
		}
		return menu.WeeklyMenu{}, err
	}

	event := "menu_updated"
	if creating {
		event = "menu_created"
	}
	slog.Info("menu_event", "event", event, "menu_id", m.ID, "name", m.Name,
		"published", m.Published, "dishes", len(rows))
	return m, nil
}

// --- Publish Menu ---

// PublishMenuInput carries input for the publish menu orchestrator.
type PublishMenuInput struct {
	MenuID string
}

// ExecutePublishMenu publishes an existing draft menu.
// PRE: MenuID is non-empty; menu exists and is not yet published
// POST: Menu is published, UpdatedAt set
func ExecutePublishMenu(ctx context.Context, input PublishMenuInput, deps SaveMenuDeps) (menu.WeeklyMenu, error) {
	if input.MenuID == "" {
		return menu.WeeklyMenu{}, errors.New("menu ID is required")
	}

	m, err := deps.MenuStore.GetByID(ctx, input.MenuID)
	if err != nil {
		return menu.WeeklyMenu{}, err
	}
	if err := m.Publish(deps.Now()); err != nil {
		return menu.WeeklyMenu{}, err
	}
	if err := deps.MenuStore.Save(ctx, m); err != nil {
		return menu.WeeklyMenu{}, err
	}

	slog.Info("menu_event", "event", "menu_published", "menu_id", m.ID)
	return m, nil
}

// --- Delete Menu ---

// DeleteMenuInput carries input for the delete menu orchestrator.
type DeleteMenuInput struct {
	MenuID string
}

// ExecuteDeleteMenu removes a menu and all of its assignments.
// PRE: MenuID is non-empty
// POST: Menu and its assignment rows are removed
func ExecuteDeleteMenu(ctx context.Context, input DeleteMenuInput, deps SaveMenuDeps) error {
	if input.MenuID == "" {
		return errors.New("menu ID is required")
	}
	if err := deps.MenuStore.Delete(ctx, input.MenuID); err != nil {
		return err
	}
	slog.Info("menu_event", "event", "menu_deleted", "menu_id", input.MenuID)
	return nil
}
