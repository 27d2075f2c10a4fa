package web

import (
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/csrf"

	"gamagourmet/internal/adapters/http/middleware"
	dishStore "gamagourmet/internal/adapters/storage/dish"
	menuStore "gamagourmet/internal/adapters/storage/menu"
	"gamagourmet/internal/application/listutil"
	"gamagourmet/internal/application/orchestrators"
	menuDomain "gamagourmet/internal/domain/menu"
)

const menuDateLayout = "2006-01-02"

// menuDraft is the authoring state of one menu being composed. It lives in
// memory only; nothing is persisted until the draft is submitted.
type menuDraft struct {
	MenuID    string // empty while creating
	Name      string
	StartDate string // form value, YYYY-MM-DD
	EndDate   string
	Composer  *menuDomain.Composer
}

// draftStore holds one draft per gama account. Access is serialized; the
// builder is a single-user flow per account.
type draftStore struct {
	mu     sync.Mutex
	drafts map[string]*menuDraft
}

var menuDrafts = &draftStore{drafts: make(map[string]*menuDraft)}

func (ds *draftStore) get(accountID string) (*menuDraft, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	d, ok := ds.drafts[accountID]
	return d, ok
}

func (ds *draftStore) put(accountID string, d *menuDraft) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.drafts[accountID] = d
}

func (ds *draftStore) clear(accountID string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.drafts, accountID)
}

func menuDeps() orchestrators.SaveMenuDeps {
	return orchestrators.SaveMenuDeps{
		MenuStore:  stores.MenuStore,
		GenerateID: generateID,
		Now:        timeNow,
	}
}

// handleMenus handles GET (list) for /gama/menus
func handleMenus(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	lp := listutil.ParseListParams(r.URL.Query(), []string{"name", "start_date"}, nil)
	menus, err := stores.MenuStore.List(r.Context(), menuStore.ListFilter{
		Limit:  lp.PerPage,
		Offset: (lp.Page - 1) * lp.PerPage,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	total, err := stores.MenuStore.Count(r.Context(), false)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "gama_menus.html", map[string]any{
		"Menus":     menus,
		"PageInfo":  listutil.NewPageInfo(lp.Page, lp.PerPage, total),
		"CSRFToken": csrf.Token(r),
	})
}

// handleMenuBuilder handles GET /gama/menus/nuevo: the weekly composition grid.
func handleMenuBuilder(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	draft, found := menuDrafts.get(sess.AccountID)
	if !found || r.URL.Query().Get("reiniciar") == "1" {
		draft = &menuDraft{Composer: menuDomain.NewComposer()}
		menuDrafts.put(sess.AccountID, draft)
	}

	renderBuilder(w, r, draft, r.URL.Query().Get("error"))
}

// handleMenuEdit handles GET /gama/menus/editar?id=X: loads a stored menu
// into a fresh draft and opens the builder.
func handleMenuEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	ctx := r.Context()

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	m, err := stores.MenuStore.GetByID(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	rows, err := stores.MenuStore.ListAssignments(ctx, id)
	if err != nil {
		internalError(w, err)
		return
	}

	refs := make(map[string]menuDomain.DishRef, len(rows))
	for _, row := range rows {
		if _, seen := refs[row.DishID]; seen {
			continue
		}
		d, err := stores.DishStore.GetByID(ctx, row.DishID)
		if err != nil {
			continue
		}
		refs[row.DishID] = menuDomain.DishRef{ID: d.ID, Name: d.Name, Category: d.Category}
	}

	draft := &menuDraft{
		MenuID:    m.ID,
		Name:      m.Name,
		StartDate: m.StartDate.Format(menuDateLayout),
		EndDate:   m.EndDate.Format(menuDateLayout),
		Composer:  menuDomain.FromAssignments(rows, refs),
	}
	menuDrafts.put(sess.AccountID, draft)

	renderBuilder(w, r, draft, "")
}

func renderBuilder(w http.ResponseWriter, r *http.Request, draft *menuDraft, errMsg string) {
	candidates, err := stores.DishStore.List(r.Context(), dishStore.ListFilter{ActiveOnly: true, Limit: 1000})
	if err != nil {
		internalError(w, err)
		return
	}

	weekdays := make([]int, 0, menuDomain.LastWeekday)
	for d := menuDomain.FirstWeekday; d <= menuDomain.LastWeekday; d++ {
		weekdays = append(weekdays, d)
	}

	renderTemplate(w, r, "gama_menu_builder.html", map[string]any{
		"Draft":     draft,
		"Grid":      draft.Composer.Snapshot(),
		"Count":     draft.Composer.Count(),
		"Weekdays":  weekdays,
		"Buckets":   menuDomain.ValidBuckets,
		"Dishes":    candidates,
		"Error":     errMsg,
		"CSRFToken": csrf.Token(r),
	})
}

// builderRedirect sends the browser back to the builder, optionally with a
// user-visible rejection message.
func builderRedirect(w http.ResponseWriter, r *http.Request, errMsg string) {
	target := "/gama/menus/nuevo"
	if errMsg != "" {
		target += "?error=" + url.QueryEscape(errMsg)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleMenuAddDish handles POST /gama/menus/agregar-plato
func handleMenuAddDish(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	draft, ok := menuDrafts.get(sess.AccountID)
	if !ok {
		builderRedirect(w, r, "")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	// Header fields travel with every grid action so typed values survive.
	draft.Name = r.FormValue("Name")
	draft.StartDate = r.FormValue("StartDate")
	draft.EndDate = r.FormValue("EndDate")

	weekday, _ := strconv.Atoi(r.FormValue("Weekday"))
	d, err := stores.DishStore.GetByID(r.Context(), r.FormValue("DishID"))
	if err != nil {
		builderRedirect(w, r, "plato no encontrado")
		return
	}

	// The dish's current catalog category decides its bucket.
	bucket, ok := menuDomain.BucketForCategory(d.Category)
	if !ok {
		builderRedirect(w, r, menuDomain.ErrExcludedDish.Error())
		return
	}
	ref := menuDomain.DishRef{ID: d.ID, Name: d.Name, Category: d.Category}
	if err := draft.Composer.AddDish(ref, weekday, bucket); err != nil {
		builderRedirect(w, r, err.Error())
		return
	}
	builderRedirect(w, r, "")
}

// handleMenuRemoveDish handles POST /gama/menus/quitar-plato
func handleMenuRemoveDish(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	draft, ok := menuDrafts.get(sess.AccountID)
	if !ok {
		builderRedirect(w, r, "")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	draft.Name = r.FormValue("Name")
	draft.StartDate = r.FormValue("StartDate")
	draft.EndDate = r.FormValue("EndDate")

	weekday, _ := strconv.Atoi(r.FormValue("Weekday"))
	draft.Composer.RemoveDish(r.FormValue("DishID"), weekday, r.FormValue("Bucket"))
	builderRedirect(w, r, "")
}

// handleMenuSave handles POST /gama/menus/guardar: persists the draft with
// the replace-all strategy.
func handleMenuSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	draft, ok := menuDrafts.get(sess.AccountID)
	if !ok {
		builderRedirect(w, r, "no hay un menú en edición")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	draft.Name = r.FormValue("Name")
	draft.StartDate = r.FormValue("StartDate")
	draft.EndDate = r.FormValue("EndDate")

	var startDate, endDate time.Time
	if draft.StartDate != "" {
		var err error
		if startDate, err = time.Parse(menuDateLayout, draft.StartDate); err != nil {
			builderRedirect(w, r, "fecha de inicio inválida")
			return
		}
	}
	if draft.EndDate != "" {
		var err error
		if endDate, err = time.Parse(menuDateLayout, draft.EndDate); err != nil {
			builderRedirect(w, r, "fecha de término inválida")
			return
		}
	}

	input := orchestrators.SaveMenuInput{
		MenuID:    draft.MenuID,
		Name:      draft.Name,
		StartDate: startDate,
		EndDate:   endDate,
		Publish:   r.FormValue("Publish") == "true",
		Composer:  draft.Composer,
	}
	if _, err := orchestrators.ExecuteSaveMenu(r.Context(), input, menuDeps()); err != nil {
		builderRedirect(w, r, err.Error())
		return
	}

	menuDrafts.clear(sess.AccountID)
	http.Redirect(w, r, "/gama/menus", http.StatusSeeOther)
}

// handleMenuPublish handles POST /gama/menus/publicar
func handleMenuPublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.PublishMenuInput{MenuID: r.FormValue("MenuID")}
	if _, err := orchestrators.ExecutePublishMenu(r.Context(), input, menuDeps()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/gama/menus", http.StatusSeeOther)
}

// handleMenuDelete handles POST /gama/menus/eliminar
func handleMenuDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.DeleteMenuInput{MenuID: r.FormValue("MenuID")}
	if err := orchestrators.ExecuteDeleteMenu(r.Context(), input, menuDeps()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/gama/menus", http.StatusSeeOther)
}
