package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"gamagourmet/internal/adapters/email"
	"gamagourmet/internal/adapters/http/middleware"
	"gamagourmet/internal/adapters/http/perf"
	accountStore "gamagourmet/internal/adapters/storage/account"
	branchStore "gamagourmet/internal/adapters/storage/branch"
	companyStore "gamagourmet/internal/adapters/storage/company"
	dishStore "gamagourmet/internal/adapters/storage/dish"
	ingredientStore "gamagourmet/internal/adapters/storage/ingredient"
	menuStore "gamagourmet/internal/adapters/storage/menu"
	planStore "gamagourmet/internal/adapters/storage/plan"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	CompanyStore    companyStore.Store
	BranchStore     branchStore.Store
	IngredientStore ingredientStore.Store
	DishStore       dishStore.Store
	MenuStore       menuStore.Store
	PlanStore       planStore.Store
}

// loadCSRFKey reads the CSRF secret from GAMA_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("GAMA_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("GAMA_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("GAMA_ENV") == "production" {
		log.Fatal("GAMA_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set GAMA_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var baseURL string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, base string) {
	emailSender = sender
	emailFromAddress = from
	baseURL = base
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("GAMA_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Gate -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.AccessGate(sessions, stores.AccountStore),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}

// registerRoutes attaches every handler to the mux. The access gate runs
// in front of the mux, so handlers under /gama, /empresa and /empleado
// can assume an active, role-checked session in context.
func registerRoutes(mux *http.ServeMux) {
	// Public
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)

	// Shared authenticated
	mux.HandleFunc("/change-password", handleChangePassword)

	// Gama admin section
	mux.HandleFunc("/gama/dashboard", handleGamaDashboard)
	mux.HandleFunc("/gama/rendimiento", handleGamaPerf)
	mux.HandleFunc("/gama/empresas", handleCompanies)
	mux.HandleFunc("/gama/empresas/estado", handleCompanyActive)
	mux.HandleFunc("/gama/sucursales", handleBranches)
	mux.HandleFunc("/gama/sucursales/eliminar", handleBranchDelete)
	mux.HandleFunc("/gama/ingredientes", handleIngredients)
	mux.HandleFunc("/gama/ingredientes/eliminar", handleIngredientDelete)
	mux.HandleFunc("/gama/platos", handleDishes)
	mux.HandleFunc("/gama/platos/estado", handleDishActive)
	mux.HandleFunc("/gama/planes", handlePlans)
	mux.HandleFunc("/gama/planes/asignar", handlePlanAssign)
	mux.HandleFunc("/gama/usuarios", handleAccounts)
	mux.HandleFunc("/gama/usuarios/estado", handleAccountActive)
	mux.HandleFunc("/gama/menus", handleMenus)
	mux.HandleFunc("/gama/menus/nuevo", handleMenuBuilder)
	mux.HandleFunc("/gama/menus/editar", handleMenuEdit)
	mux.HandleFunc("/gama/menus/agregar-plato", handleMenuAddDish)
	mux.HandleFunc("/gama/menus/quitar-plato", handleMenuRemoveDish)
	mux.HandleFunc("/gama/menus/guardar", handleMenuSave)
	mux.HandleFunc("/gama/menus/publicar", handleMenuPublish)
	mux.HandleFunc("/gama/menus/eliminar", handleMenuDelete)

	// Empresa section
	mux.HandleFunc("/empresa/dashboard", handleCompanyDashboard)
	mux.HandleFunc("/empresa/empleados", handleCompanyEmployees)

	// Empleado section
	mux.HandleFunc("/empleado/menu", handleEmployeeMenu)
}
