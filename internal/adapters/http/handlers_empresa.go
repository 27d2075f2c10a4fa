package web

import (
	"net/http"

	"gamagourmet/internal/adapters/http/middleware"
	"gamagourmet/internal/application/projections"
)

// handleCompanyDashboard handles GET /empresa/dashboard
func handleCompanyDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())

	result, err := projections.ExecuteGetCompanyDashboard(r.Context(), sess.CompanyID, projections.CompanyDashboardDeps{
		AccountStore: stores.AccountStore,
		PlanStore:    stores.PlanStore,
		MenuStore:    stores.MenuStore,
		Now:          timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "empresa_dashboard.html", result)
}

// handleCompanyEmployees handles GET /empresa/empleados: the employee
// roster, always scoped to the caller's own company.
func handleCompanyEmployees(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())

	accounts, err := stores.AccountStore.ListByCompany(r.Context(), sess.CompanyID)
	if err != nil {
		internalError(w, err)
		return
	}

	type employee struct {
		Email  string
		Role   string
		Active bool
	}
	employees := make([]employee, 0, len(accounts))
	for _, a := range accounts {
		employees = append(employees, employee{Email: a.Email, Role: a.Role, Active: a.Active})
	}

	renderTemplate(w, r, "empresa_employees.html", map[string]any{
		"Employees": employees,
	})
}
