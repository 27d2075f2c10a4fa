package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamagourmet/internal/domain/dish"
	"gamagourmet/internal/domain/menu"
)

type mockMenuReader struct {
	current     menu.WeeklyMenu
	currentErr  error
	assignments []menu.SlotAssignment
}

func (m *mockMenuReader) GetCurrentPublished(_ context.Context, _ time.Time) (menu.WeeklyMenu, error) {
	if m.currentErr != nil {
		return menu.WeeklyMenu{}, m.currentErr
	}
	return m.current, nil
}

func (m *mockMenuReader) ListAssignments(_ context.Context, _ string) ([]menu.SlotAssignment, error) {
	return m.assignments, nil
}

type mockDishReader struct {
	dishes map[string]dish.Dish
}

func (m *mockDishReader) GetByID(_ context.Context, id string) (dish.Dish, error) {
	d, ok := m.dishes[id]
	if !ok {
		return dish.Dish{}, errors.New("not found")
	}
	return d, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
}

func TestExecuteGetEmployeeMenu(t *testing.T) {
	menus := &mockMenuReader{
		current: menu.WeeklyMenu{ID: "m1", Name: "Semana 36", Published: true, Active: true},
		assignments: []menu.SlotAssignment{
			{MenuID: "m1", DishID: "p1", Weekday: 1, Bucket: menu.BucketPrincipales, Position: 1},
			{MenuID: "m1", DishID: "e1", Weekday: 1, Bucket: menu.BucketEntradas, Position: 1},
			{MenuID: "m1", DishID: "p2", Weekday: 3, Bucket: menu.BucketPrincipales, Position: 1},
		},
	}
	dishes := &mockDishReader{dishes: map[string]dish.Dish{
		"p1": {ID: "p1", Name: "Lomo saltado", Category: dish.CategoryPlatoPrincipal},
		"e1": {ID: "e1", Name: "Ensalada chilena", Category: dish.CategoryEnsalada},
		"p2": {ID: "p2", Name: "Pastel de choclo", Category: dish.CategoryPlatoPrincipal},
	}}

	view, err := ExecuteGetEmployeeMenu(context.Background(), EmployeeMenuDeps{
		MenuStore: menus,
		DishStore: dishes,
		Now:       fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Menu.ID != "m1" {
		t.Errorf("expected menu m1, got %s", view.Menu.ID)
	}
	if len(view.Days) != 5 {
		t.Fatalf("expected 5 days, got %d", len(view.Days))
	}
	if view.Days[0].Name != "Lunes" || view.Days[4].Name != "Viernes" {
		t.Errorf("expected Monday..Friday order, got %s..%s", view.Days[0].Name, view.Days[4].Name)
	}

	monday := view.Days[0]
	if len(monday.Buckets) != 3 {
		t.Fatalf("expected 3 sections per day, got %d", len(monday.Buckets))
	}
	if got := monday.Buckets[0].Dishes; len(got) != 1 || got[0].Name != "Lomo saltado" {
		t.Errorf("expected lomo saltado in principales, got %+v", got)
	}
	if got := monday.Buckets[1].Dishes; len(got) != 1 || got[0].Name != "Ensalada chilena" {
		t.Errorf("expected ensalada in entradas, got %+v", got)
	}

	// Tuesday has no rows but still renders with empty sections.
	tuesday := view.Days[1]
	for _, b := range tuesday.Buckets {
		if len(b.Dishes) != 0 {
			t.Errorf("expected empty %s on Tuesday, got %+v", b.Key, b.Dishes)
		}
	}
}

func TestExecuteGetEmployeeMenu_MissingDishSkipped(t *testing.T) {
	menus := &mockMenuReader{
		current: menu.WeeklyMenu{ID: "m1", Name: "Semana 36", Published: true, Active: true},
		assignments: []menu.SlotAssignment{
			{MenuID: "m1", DishID: "gone", Weekday: 1, Bucket: menu.BucketPrincipales, Position: 1},
			{MenuID: "m1", DishID: "p1", Weekday: 1, Bucket: menu.BucketPrincipales, Position: 2},
		},
	}
	dishes := &mockDishReader{dishes: map[string]dish.Dish{
		"p1": {ID: "p1", Name: "Lomo saltado", Category: dish.CategoryPlatoPrincipal},
	}}

	view, err := ExecuteGetEmployeeMenu(context.Background(), EmployeeMenuDeps{
		MenuStore: menus,
		DishStore: dishes,
		Now:       fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := view.Days[0].Buckets[0].Dishes
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("expected only the surviving dish, got %+v", got)
	}
}

func TestExecuteGetEmployeeMenu_NoCurrentMenu(t *testing.T) {
	menus := &mockMenuReader{currentErr: errors.New("no rows")}
	_, err := ExecuteGetEmployeeMenu(context.Background(), EmployeeMenuDeps{
		MenuStore: menus,
		DishStore: &mockDishReader{},
		Now:       fixedNow,
	})
	if err != ErrNoCurrentMenu {
		t.Errorf("expected ErrNoCurrentMenu, got %v", err)
	}
}
