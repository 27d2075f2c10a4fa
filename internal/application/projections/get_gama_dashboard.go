package projections

import (
	"context"
)

// CompanyCounterForDashboard counts companies.
type CompanyCounterForDashboard interface {
	Count(ctx context.Context, activeOnly bool) (int, error)
}

// DishCounterForDashboard counts dishes.
type DishCounterForDashboard interface {
	Count(ctx context.Context, activeOnly bool) (int, error)
}

// MenuCounterForDashboard counts weekly menus.
type MenuCounterForDashboard interface {
	Count(ctx context.Context, publishedOnly bool) (int, error)
}

// AccountCounterForDashboard counts accounts.
type AccountCounterForDashboard interface {
	Count(ctx context.Context) (int, error)
}

// GamaDashboard is the read model behind the admin landing page.
type GamaDashboard struct {
	ActiveCompanies int
	ActiveDishes    int
	TotalMenus      int
	PublishedMenus  int
	TotalAccounts   int
}

// GamaDashboardDeps holds dependencies for GetGamaDashboard.
type GamaDashboardDeps struct {
	CompanyStore CompanyCounterForDashboard
	DishStore    DishCounterForDashboard
	MenuStore    MenuCounterForDashboard
	AccountStore AccountCounterForDashboard
}

// ExecuteGetGamaDashboard aggregates the counts shown on the gama dashboard.
// POST: Returns counts; read-only, no side effects
func ExecuteGetGamaDashboard(ctx context.Context, deps GamaDashboardDeps) (GamaDashboard, error) {
	var d GamaDashboard
	var err error

	if d.ActiveCompanies, err = deps.CompanyStore.Count(ctx, true); err != nil {
		return GamaDashboard{}, err
	}
	if d.ActiveDishes, err = deps.DishStore.Count(ctx, true); err != nil {
		return GamaDashboard{}, err
	}
	if d.TotalMenus, err = deps.MenuStore.Count(ctx, false); err != nil {
		return GamaDashboard{}, err
	}
	if d.PublishedMenus, err = deps.MenuStore.Count(ctx, true); err != nil {
		return GamaDashboard{}, err
	}
	if d.TotalAccounts, err = deps.AccountStore.Count(ctx); err != nil {
		return GamaDashboard{}, err
	}
	return d, nil
}
