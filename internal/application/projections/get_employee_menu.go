package projections

import (
	"context"
	"errors"
	"time"

	"gamagourmet/internal/domain/dish"
	"gamagourmet/internal/domain/menu"
)

// MenuReaderForEmployee resolves the published menu and its assignments.
type MenuReaderForEmployee interface {
	GetCurrentPublished(ctx context.Context, day time.Time) (menu.WeeklyMenu, error)
	ListAssignments(ctx context.Context, menuID string) ([]menu.SlotAssignment, error)
}

// DishReaderForEmployee resolves dishes referenced by assignments.
type DishReaderForEmployee interface {
	GetByID(ctx context.Context, id string) (dish.Dish, error)
}

// ErrNoCurrentMenu indicates no published menu covers the requested day.
var ErrNoCurrentMenu = errors.New("no published menu covers this day")

// bucketLabels maps bucket keys to the Spanish section titles shown to
// employees.
var bucketLabels = map[string]string{
	menu.BucketPrincipales: "Platos principales",
	menu.BucketEntradas:    "Entradas",
	menu.BucketPostres:     "Postres",
}

// EmployeeMenuDay is one weekday column of the employee menu view.
type EmployeeMenuDay struct {
	Weekday int
	Name    string
	Buckets []EmployeeMenuBucket
}

// EmployeeMenuBucket is one section within a day.
type EmployeeMenuBucket struct {
	Key    string
	Label  string
	Dishes []menu.DishRef
}

// EmployeeMenu is the read model behind the employee menu page.
type EmployeeMenu struct {
	Menu menu.WeeklyMenu
	Days []EmployeeMenuDay
}

// EmployeeMenuDeps holds dependencies for GetEmployeeMenu.
type EmployeeMenuDeps struct {
	MenuStore MenuReaderForEmployee
	DishStore DishReaderForEmployee
	Now       func() time.Time
}

// ExecuteGetEmployeeMenu builds the weekday grid of the currently published
// menu. Stored rows are rebuilt through the composer so current catalog
// categories decide each dish's section and beverages never appear.
// POST: Returns days Monday through Friday in order; days with no dishes
// still appear with empty sections. ErrNoCurrentMenu when nothing covers
// the day.
func ExecuteGetEmployeeMenu(ctx context.Context, deps EmployeeMenuDeps) (EmployeeMenu, error) {
	current, err := deps.MenuStore.GetCurrentPublished(ctx, deps.Now())
	if err != nil {
		return EmployeeMenu{}, ErrNoCurrentMenu
	}

	rows, err := deps.MenuStore.ListAssignments(ctx, current.ID)
	if err != nil {
		return EmployeeMenu{}, err
	}

	refs := make(map[string]menu.DishRef, len(rows))
	for _, row := range rows {
		if _, seen := refs[row.DishID]; seen {
			continue
		}
		d, err := deps.DishStore.GetByID(ctx, row.DishID)
		if err != nil {
			// Dish removed from the catalog after publication; its slots
			// are simply omitted from the view.
			continue
		}
		refs[row.DishID] = menu.DishRef{ID: d.ID, Name: d.Name, Category: d.Category}
	}

	grid := menu.FromAssignments(rows, refs).Snapshot()

	view := EmployeeMenu{Menu: current}
	for weekday := menu.FirstWeekday; weekday <= menu.LastWeekday; weekday++ {
		day := EmployeeMenuDay{Weekday: weekday, Name: menu.WeekdayNames[weekday]}
		for _, bucket := range menu.ValidBuckets {
			day.Buckets = append(day.Buckets, EmployeeMenuBucket{
				Key:    bucket,
				Label:  bucketLabels[bucket],
				Dishes: grid[weekday][bucket],
			})
		}
		view.Days = append(view.Days, day)
	}
	return view, nil
}
