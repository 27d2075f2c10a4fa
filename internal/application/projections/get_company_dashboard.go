package projections

import (
	"context"
	"time"

	"gamagourmet/internal/domain/menu"
	"gamagourmet/internal/domain/plan"
)

// AccountCounterForCompany counts accounts scoped to one company.
type AccountCounterForCompany interface {
	CountByCompany(ctx context.Context, companyID string, activeOnly bool) (int, error)
}

// PlanReaderForCompany resolves a company's assigned plan.
type PlanReaderForCompany interface {
	GetCompanyPlan(ctx context.Context, companyID string) (plan.Plan, error)
}

// MenuReaderForCompany resolves the menu currently in effect.
type MenuReaderForCompany interface {
	GetCurrentPublished(ctx context.Context, day time.Time) (menu.WeeklyMenu, error)
}

// CompanyDashboard is the read model behind the empresa landing page.
type CompanyDashboard struct {
	EmployeeCount   int
	ActiveEmployees int

	HasPlan      bool
	PlanName     string
	MealsPerWeek int

	HasCurrentMenu bool
	CurrentMenu    menu.WeeklyMenu
}

// CompanyDashboardDeps holds dependencies for GetCompanyDashboard.
type CompanyDashboardDeps struct {
	AccountStore AccountCounterForCompany
	PlanStore    PlanReaderForCompany
	MenuStore    MenuReaderForCompany
	Now          func() time.Time
}

// ExecuteGetCompanyDashboard builds the empresa dashboard for one company.
// A company without a plan or without a current menu is not an error; the
// view reports the absence and the page renders an empty state.
// PRE: companyID is non-empty
// POST: Returns the read model; read-only, no side effects
func ExecuteGetCompanyDashboard(ctx context.Context, companyID string, deps CompanyDashboardDeps) (CompanyDashboard, error) {
	var d CompanyDashboard
	var err error

	if d.EmployeeCount, err = deps.AccountStore.CountByCompany(ctx, companyID, false); err != nil {
		return CompanyDashboard{}, err
	}
	if d.ActiveEmployees, err = deps.AccountStore.CountByCompany(ctx, companyID, true); err != nil {
		return CompanyDashboard{}, err
	}

	if p, err := deps.PlanStore.GetCompanyPlan(ctx, companyID); err == nil {
		d.HasPlan = true
		d.PlanName = p.Name
		d.MealsPerWeek = p.MealsPerWeek
	}

	if m, err := deps.MenuStore.GetCurrentPublished(ctx, deps.Now()); err == nil {
		d.HasCurrentMenu = true
		d.CurrentMenu = m
	}

	return d, nil
}
