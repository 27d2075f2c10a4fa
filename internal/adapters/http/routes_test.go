package web

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"gamagourmet/internal/adapters/http/perf"
	"gamagourmet/internal/adapters/storage"
	accountStore "gamagourmet/internal/adapters/storage/account"
	branchStore "gamagourmet/internal/adapters/storage/branch"
	companyStore "gamagourmet/internal/adapters/storage/company"
	dishStore "gamagourmet/internal/adapters/storage/dish"
	ingredientStore "gamagourmet/internal/adapters/storage/ingredient"
	menuStore "gamagourmet/internal/adapters/storage/menu"
	planStore "gamagourmet/internal/adapters/storage/plan"
	accountDomain "gamagourmet/internal/domain/account"
	companyDomain "gamagourmet/internal/domain/company"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// A pooled second connection would see a different in-memory database.
	db.SetMaxOpenConns(1)
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}

	s := &Stores{
		AccountStore:    accountStore.NewSQLiteStore(db),
		CompanyStore:    companyStore.NewSQLiteStore(db),
		BranchStore:     branchStore.NewSQLiteStore(db),
		IngredientStore: ingredientStore.NewSQLiteStore(db),
		DishStore:       dishStore.NewSQLiteStore(db),
		MenuStore:       menuStore.NewSQLiteStore(db),
		PlanStore:       planStore.NewSQLiteStore(db),
	}

	RateLimitPerSecond = 1000
	return NewMux("static", s, perf.NewCollector(perf.DefaultRingSize))
}

// loginAs saves an account and opens a session for it, returning the
// session cookie value. A company row is seeded first so the account's
// empresa_id foreign key holds.
func loginAs(t *testing.T, email, role, companyID string) string {
	t.Helper()
	if companyID != "" {
		c := companyDomain.Company{
			ID:           companyID,
			Name:         "Empresa " + companyID,
			TaxID:        "20-" + companyID,
			ContactEmail: "contacto@" + companyID + ".cl",
			Active:       true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := stores.CompanyStore.Save(context.Background(), c); err != nil {
			t.Fatal(err)
		}
	}
	acct := accountDomain.Account{
		ID:        "acct-" + email,
		Email:     email,
		Role:      role,
		CompanyID: companyID,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := acct.SetPassword("contrasena-de-prueba"); err != nil {
		t.Fatal(err)
	}
	if err := stores.AccountStore.Save(context.Background(), acct); err != nil {
		t.Fatal(err)
	}
	token, err := sessions.Create(acct.ID, acct.Email, acct.Role, acct.CompanyID)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func doGet(handler http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "gama_session", Value: token})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginPageRenders(t *testing.T) {
	handler := newTestServer(t)

	rec := doGet(handler, "/login", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %s", ct)
	}

	// Gate denial reasons surface as a Spanish message on the form.
	rec = doGet(handler, "/login?error=no_session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Su sesión ha expirado") {
		t.Error("expected the expired-session message on the login page")
	}
}

func TestEmployeeMenuPageRenders(t *testing.T) {
	handler := newTestServer(t)
	token := loginAs(t, "ana@empresa.cl", accountDomain.RoleEmpleado, "empresa-1")

	rec := doGet(handler, "/empleado/menu", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "no hay un menú publicado") {
		t.Error("expected the empty-week message for a week without a menu")
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestServer(t)
	rec := doGet(handler, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAnonymousRedirectedToLogin(t *testing.T) {
	handler := newTestServer(t)

	rec := doGet(handler, "/gama/dashboard", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/login" {
		t.Errorf("expected /login, got %s", loc.Path)
	}
	if loc.Query().Get("error") != "no_session" {
		t.Errorf("expected no_session, got %s", loc.Query().Get("error"))
	}
	if loc.Query().Get("redirectTo") != "/gama/dashboard" {
		t.Errorf("expected original path, got %s", loc.Query().Get("redirectTo"))
	}
}

func TestRootRedirectsAnonymousToLogin(t *testing.T) {
	handler := newTestServer(t)
	rec := doGet(handler, "/", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected /login, got %s", loc)
	}
}

func TestWrongSectionRedirectsToOwnHome(t *testing.T) {
	handler := newTestServer(t)
	token := loginAs(t, "ana@empresa.cl", accountDomain.RoleEmpleado, "empresa-1")

	rec := doGet(handler, "/empresa/dashboard", token)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/empleado/menu" {
		t.Errorf("expected role default page, got %s", loc.Path)
	}
	if loc.Query().Get("error") != "" {
		t.Errorf("wrong-section redirect must carry no error, got %s", loc.Query().Get("error"))
	}
}

func TestDeactivatedAccountDeniedMidSession(t *testing.T) {
	handler := newTestServer(t)
	token := loginAs(t, "ana@empresa.cl", accountDomain.RoleEmpleado, "empresa-1")

	acct, err := stores.AccountStore.GetByID(context.Background(), "acct-ana@empresa.cl")
	if err != nil {
		t.Fatal(err)
	}
	acct.Deactivate()
	if err := stores.AccountStore.Save(context.Background(), acct); err != nil {
		t.Fatal(err)
	}

	rec := doGet(handler, "/empleado/menu", token)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Query().Get("error") != "user_inactive" {
		t.Errorf("expected user_inactive, got %s", loc.Query().Get("error"))
	}
}
