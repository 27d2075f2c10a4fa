package web

import (
	"net/http"

	"gamagourmet/internal/application/projections"
)

// handleEmployeeMenu handles GET /empleado/menu: the week's published menu.
func handleEmployeeMenu(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := projections.ExecuteGetEmployeeMenu(r.Context(), projections.EmployeeMenuDeps{
		MenuStore: stores.MenuStore,
		DishStore: stores.DishStore,
		Now:       timeNow,
	})
	if err == projections.ErrNoCurrentMenu {
		renderTemplate(w, r, "empleado_menu.html", map[string]any{
			"NoMenu": true,
		})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "empleado_menu.html", map[string]any{
		"Menu": result.Menu,
		"Days": result.Days,
	})
}
