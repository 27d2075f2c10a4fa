package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	accountStore "gamagourmet/internal/adapters/storage/account"
	companyStore "gamagourmet/internal/adapters/storage/company"
	dishStore "gamagourmet/internal/adapters/storage/dish"
	"gamagourmet/internal/application/listutil"
	"gamagourmet/internal/application/orchestrators"
	"gamagourmet/internal/application/projections"
	accountDomain "gamagourmet/internal/domain/account"
	dishDomain "gamagourmet/internal/domain/dish"
	ingredientDomain "gamagourmet/internal/domain/ingredient"
)

// handleGamaDashboard handles GET /gama/dashboard
func handleGamaDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := projections.ExecuteGetGamaDashboard(r.Context(), projections.GamaDashboardDeps{
		CompanyStore: stores.CompanyStore,
		DishStore:    stores.DishStore,
		MenuStore:    stores.MenuStore,
		AccountStore: stores.AccountStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "gama_dashboard.html", result)
}

// handleGamaPerf handles GET /gama/rendimiento: recent request and query
// timings as JSON.
func handleGamaPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	since := timeNow().Add(-15 * time.Minute)
	if v := r.URL.Query().Get("minutes"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			since = timeNow().Add(-time.Duration(n) * time.Minute)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(perfCollector.Snapshot(since, 20))
}

// handleCompanies handles GET (list) and POST (create/edit) for /gama/empresas
func handleCompanies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(), []string{"name"}, nil)

		filter := companyStore.ListFilter{
			Search: lp.Search,
			Limit:  lp.PerPage,
			Offset: (lp.Page - 1) * lp.PerPage,
		}
		companies, err := stores.CompanyStore.List(ctx, filter)
		if err != nil {
			internalError(w, err)
			return
		}
		total, err := stores.CompanyStore.Count(ctx, false)
		if err != nil {
			internalError(w, err)
			return
		}

		renderTemplate(w, r, "gama_companies.html", map[string]any{
			"Companies": companies,
			"PageInfo":  listutil.NewPageInfo(lp.Page, lp.PerPage, total),
			"Search":    lp.Search,
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input := orchestrators.SaveCompanyInput{
			CompanyID:    r.FormValue("CompanyID"),
			Name:         r.FormValue("Name"),
			TaxID:        r.FormValue("TaxID"),
			ContactEmail: r.FormValue("ContactEmail"),
		}
		if _, err := orchestrators.ExecuteSaveCompany(ctx, input, companyDeps()); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/gama/empresas", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleCompanyActive handles POST /gama/empresas/estado
func handleCompanyActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.SetCompanyActiveInput{
		CompanyID: r.FormValue("CompanyID"),
		Active:    r.FormValue("Active") == "true",
	}
	if err := orchestrators.ExecuteSetCompanyActive(r.Context(), input, companyDeps()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/gama/empresas", http.StatusSeeOther)
}

func companyDeps() orchestrators.SaveCompanyDeps {
	return orchestrators.SaveCompanyDeps{
		CompanyStore: stores.CompanyStore,
		BranchStore:  stores.BranchStore,
		GenerateID:   generateID,
		Now:          timeNow,
	}
}

// handleBranches handles GET (list per company) and POST (create/edit) for /gama/sucursales
func handleBranches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		companyID := r.URL.Query().Get("empresa")
		if companyID == "" {
			http.Error(w, "empresa is required", http.StatusBadRequest)
			return
		}
		company, err := stores.CompanyStore.GetByID(ctx, companyID)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		branches, err := stores.BranchStore.ListByCompany(ctx, companyID)
		if err != nil {
			internalError(w, err)
			return
		}
		renderTemplate(w, r, "gama_branches.html", map[string]any{
			"Company":   company,
			"Branches":  branches,
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input := orchestrators.SaveBranchInput{
			BranchID:  r.FormValue("BranchID"),
			CompanyID: r.FormValue("CompanyID"),
			Name:      r.FormValue("Name"),
			Address:   r.FormValue("Address"),
		}
		if _, err := orchestrators.ExecuteSaveBranch(ctx, input, companyDeps()); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/gama/sucursales?empresa="+input.CompanyID, http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleBranchDelete handles POST /gama/sucursales/eliminar
func handleBranchDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.FormValue("BranchID")
	if id == "" {
		http.Error(w, "BranchID is required", http.StatusBadRequest)
		return
	}
	if err := stores.BranchStore.Delete(r.Context(), id); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/gama/sucursales?empresa="+r.FormValue("CompanyID"), http.StatusSeeOther)
}

// handleIngredients handles GET (list) and POST (create/edit) for /gama/ingredientes
func handleIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		ingredients, err := stores.IngredientStore.List(ctx, false)
		if err != nil {
			internalError(w, err)
			return
		}
		renderTemplate(w, r, "gama_ingredients.html", map[string]any{
			"Ingredients": ingredients,
			"Units":       ingredientDomain.ValidUnits,
			"CSRFToken":   csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		ing := ingredientDomain.Ingredient{
			ID:     r.FormValue("IngredientID"),
			Name:   r.FormValue("Name"),
			Unit:   r.FormValue("Unit"),
			Active: true,
		}
		if ing.ID == "" {
			ing.ID = generateID()
			ing.CreatedAt = timeNow()
		} else {
			existing, err := stores.IngredientStore.GetByID(ctx, ing.ID)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			ing.CreatedAt = existing.CreatedAt
			ing.Active = existing.Active
		}
		if err := ing.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.IngredientStore.Save(ctx, ing); err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, "/gama/ingredientes", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleIngredientDelete handles POST /gama/ingredientes/eliminar
func handleIngredientDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.FormValue("IngredientID")
	if id == "" {
		http.Error(w, "IngredientID is required", http.StatusBadRequest)
		return
	}
	if err := stores.IngredientStore.Delete(r.Context(), id); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/gama/ingredientes", http.StatusSeeOther)
}

// handleDishes handles GET (list) and POST (create/edit) for /gama/platos
func handleDishes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(), []string{"name", "category"}, []string{"category"})

		filter := dishStore.ListFilter{
			Search:   lp.Search,
			Category: lp.Filters["category"],
			Limit:    lp.PerPage,
			Offset:   (lp.Page - 1) * lp.PerPage,
		}
		dishes, err := stores.DishStore.List(ctx, filter)
		if err != nil {
			internalError(w, err)
			return
		}
		total, err := stores.DishStore.Count(ctx, false)
		if err != nil {
			internalError(w, err)
			return
		}
		ingredients, err := stores.IngredientStore.List(ctx, true)
		if err != nil {
			internalError(w, err)
			return
		}

		renderTemplate(w, r, "gama_dishes.html", map[string]any{
			"Dishes":      dishes,
			"Ingredients": ingredients,
			"Categories":  dishDomain.ValidCategories,
			"PageInfo":    listutil.NewPageInfo(lp.Page, lp.PerPage, total),
			"Search":      lp.Search,
			"Category":    lp.Filters["category"],
			"CSRFToken":   csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input := orchestrators.SaveDishInput{
			DishID:      r.FormValue("DishID"),
			Name:        r.FormValue("Name"),
			Description: r.FormValue("Description"),
			Category:    r.FormValue("Category"),
		}
		// Ingredient rows arrive as parallel form slices.
		ids := r.Form["IngredientID"]
		quantities := r.Form["Quantity"]
		for i, ingredientID := range ids {
			if ingredientID == "" {
				continue
			}
			qty := 0.0
			if i < len(quantities) {
				qty, _ = strconv.ParseFloat(quantities[i], 64)
			}
			input.Ingredients = append(input.Ingredients, dishDomain.DishIngredient{
				IngredientID: ingredientID,
				Quantity:     qty,
			})
		}

		if _, err := orchestrators.ExecuteSaveDish(ctx, input, dishDeps()); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/gama/platos", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleDishActive handles POST /gama/platos/estado
func handleDishActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.SetDishActiveInput{
		DishID: r.FormValue("DishID"),
		Active: r.FormValue("Active") == "true",
	}
	if err := orchestrators.ExecuteSetDishActive(r.Context(), input, dishDeps()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/gama/platos", http.StatusSeeOther)
}

func dishDeps() orchestrators.SaveDishDeps {
	return orchestrators.SaveDishDeps{
		DishStore:  stores.DishStore,
		GenerateID: generateID,
		Now:        timeNow,
	}
}

// handlePlans handles GET (list) and POST (create/edit) for /gama/planes
func handlePlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		plans, err := stores.PlanStore.List(ctx, false)
		if err != nil {
			internalError(w, err)
			return
		}
		companies, err := stores.CompanyStore.List(ctx, companyStore.ListFilter{ActiveOnly: true, Limit: 1000})
		if err != nil {
			internalError(w, err)
			return
		}
		renderTemplate(w, r, "gama_plans.html", map[string]any{
			"Plans":     plans,
			"Companies": companies,
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		priceCents, _ := strconv.Atoi(r.FormValue("PriceCents"))
		mealsPerWeek, _ := strconv.Atoi(r.FormValue("MealsPerWeek"))
		input := orchestrators.SavePlanInput{
			PlanID:       r.FormValue("PlanID"),
			Name:         r.FormValue("Name"),
			Description:  r.FormValue("Description"),
			PriceCents:   priceCents,
			MealsPerWeek: mealsPerWeek,
		}
		if _, err := orchestrators.ExecuteSavePlan(ctx, input, planDeps()); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/gama/planes", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handlePlanAssign handles POST /gama/planes/asignar
func handlePlanAssign(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.AssignPlanInput{
		CompanyID: r.FormValue("CompanyID"),
		PlanID:    r.FormValue("PlanID"),
	}
	if err := orchestrators.ExecuteAssignPlan(r.Context(), input, planDeps()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/gama/planes", http.StatusSeeOther)
}

func planDeps() orchestrators.SavePlanDeps {
	return orchestrators.SavePlanDeps{
		PlanStore:    stores.PlanStore,
		CompanyStore: stores.CompanyStore,
		GenerateID:   generateID,
		Now:          timeNow,
	}
}

func accountStoreFilter(lp listutil.ListParams) accountStore.ListFilter {
	return accountStore.ListFilter{
		Role:   lp.Filters["role"],
		Limit:  lp.PerPage,
		Offset: (lp.Page - 1) * lp.PerPage,
	}
}

// handleAccounts handles GET (list) and POST (create) for /gama/usuarios
func handleAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(), []string{"email", "role"}, []string{"role"})

		accounts, err := stores.AccountStore.List(ctx, accountStoreFilter(lp))
		if err != nil {
			internalError(w, err)
			return
		}
		companies, err := stores.CompanyStore.List(ctx, companyStore.ListFilter{ActiveOnly: true, Limit: 1000})
		if err != nil {
			internalError(w, err)
			return
		}
		total, err := stores.AccountStore.Count(ctx)
		if err != nil {
			internalError(w, err)
			return
		}

		// Password hashes never leave the handler.
		type safeAccount struct {
			ID        string
			Email     string
			Role      string
			CompanyID string
			Active    bool
		}
		safe := make([]safeAccount, 0, len(accounts))
		for _, a := range accounts {
			safe = append(safe, safeAccount{ID: a.ID, Email: a.Email, Role: a.Role, CompanyID: a.CompanyID, Active: a.Active})
		}

		renderTemplate(w, r, "gama_accounts.html", map[string]any{
			"Accounts":  safe,
			"Companies": companies,
			"Roles":     accountDomain.ValidRoles,
			"PageInfo":  listutil.NewPageInfo(lp.Page, lp.PerPage, total),
			"Role":      lp.Filters["role"],
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input := orchestrators.CreateAccountInput{
			Email:                  strings.TrimSpace(r.FormValue("Email")),
			Password:               r.FormValue("Password"),
			Role:                   r.FormValue("Role"),
			CompanyID:              r.FormValue("CompanyID"),
			PasswordChangeRequired: true,
		}
		deps := orchestrators.CreateAccountDeps{
			AccountStore: stores.AccountStore,
			EmailSender:  emailSender,
			FromAddress:  emailFromAddress,
			BaseURL:      baseURL,
		}
		if _, err := orchestrators.ExecuteCreateAccount(ctx, input, deps); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/gama/usuarios", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAccountActive handles POST /gama/usuarios/estado
func handleAccountActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.SetAccountActiveInput{
		AccountID: r.FormValue("AccountID"),
		Active:    r.FormValue("Active") == "true",
	}
	if err := orchestrators.ExecuteSetAccountActive(r.Context(), input, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/gama/usuarios", http.StatusSeeOther)
}
