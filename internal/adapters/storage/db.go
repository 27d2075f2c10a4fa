package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		empresa_id TEXT,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT,
		password_change_required INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (empresa_id) REFERENCES empresas(id)
	);

	CREATE TABLE IF NOT EXISTS empresas (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tax_id TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS sucursales (
		id TEXT PRIMARY KEY,
		empresa_id TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		FOREIGN KEY (empresa_id) REFERENCES empresas(id)
	);

	CREATE TABLE IF NOT EXISTS ingredientes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		unit TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS platos (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS plato_ingredientes (
		plato_id TEXT NOT NULL,
		ingrediente_id TEXT NOT NULL,
		quantity REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (plato_id, ingrediente_id),
		FOREIGN KEY (plato_id) REFERENCES platos(id),
		FOREIGN KEY (ingrediente_id) REFERENCES ingredientes(id)
	);

	CREATE TABLE IF NOT EXISTS menus_semanales (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		published INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS menu_platos (
		menu_id TEXT NOT NULL,
		plato_id TEXT NOT NULL,
		weekday INTEGER NOT NULL,
		bucket TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (menu_id, weekday, bucket, position),
		FOREIGN KEY (menu_id) REFERENCES menus_semanales(id),
		FOREIGN KEY (plato_id) REFERENCES platos(id)
	);

	CREATE TABLE IF NOT EXISTS planes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price_cents INTEGER NOT NULL DEFAULT 0,
		meals_per_week INTEGER NOT NULL DEFAULT 5,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS empresa_planes (
		empresa_id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL,
		assigned_at TEXT NOT NULL,
		FOREIGN KEY (empresa_id) REFERENCES empresas(id),
		FOREIGN KEY (plan_id) REFERENCES planes(id)
	);

	CREATE INDEX IF NOT EXISTS idx_users_empresa ON users(empresa_id);
	CREATE INDEX IF NOT EXISTS idx_sucursales_empresa ON sucursales(empresa_id);
	CREATE INDEX IF NOT EXISTS idx_menu_platos_menu ON menu_platos(menu_id);
	CREATE INDEX IF NOT EXISTS idx_platos_category ON platos(category);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
