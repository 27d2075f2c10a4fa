package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	emailPkg "gamagourmet/internal/adapters/email"
	web "gamagourmet/internal/adapters/http"
	"gamagourmet/internal/adapters/http/perf"
	"gamagourmet/internal/adapters/storage"
	accountStore "gamagourmet/internal/adapters/storage/account"
	branchStore "gamagourmet/internal/adapters/storage/branch"
	companyStore "gamagourmet/internal/adapters/storage/company"
	dishStore "gamagourmet/internal/adapters/storage/dish"
	ingredientStore "gamagourmet/internal/adapters/storage/ingredient"
	menuStore "gamagourmet/internal/adapters/storage/menu"
	planStore "gamagourmet/internal/adapters/storage/plan"
	"gamagourmet/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// WAL mode, foreign keys and busy timeout are set in the DSN so every
	// pooled connection gets them.
	dbPath := envOrDefault("GAMA_DB_PATH", "gamagourmet.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:    acctStore,
		CompanyStore:    companyStore.NewSQLiteStore(timedDB),
		BranchStore:     branchStore.NewSQLiteStore(timedDB),
		IngredientStore: ingredientStore.NewSQLiteStore(timedDB),
		DishStore:       dishStore.NewSQLiteStore(timedDB),
		MenuStore:       menuStore.NewSQLiteStore(timedDB),
		PlanStore:       planStore.NewSQLiteStore(timedDB),
	}

	// Seed the default gama account if no accounts exist
	adminEmail := envOrDefault("GAMA_ADMIN_EMAIL", "admin@gamagourmet.cl")
	adminPassword := envOrDefault("GAMA_ADMIN_PASSWORD", "cambiar-al-entrar")
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("GAMA_RESEND_API_KEY")
	emailFrom := envOrDefault("GAMA_RESEND_FROM", "Gama Gourmet <noreply@gamagourmet.cl>")
	base := envOrDefault("GAMA_BASE_URL", "http://localhost:8080")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, base)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, base)
		if os.Getenv("GAMA_ENV") == "production" {
			log.Println("WARNING: GAMA_RESEND_API_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop; set GAMA_RESEND_API_KEY for real delivery)")
		}
	}

	// Create HTTP handler with middleware (pass collector for timing)
	mux := web.NewMux("static", stores, collector)

	addr := ":" + envOrDefault("PORT", "8080")
	log.Printf("Gama Gourmet %s starting on %s (env=%s)", version, addr, envOrDefault("GAMA_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
