package account

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"gamagourmet/internal/adapters/storage"
	domain "gamagourmet/internal/domain/account"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const userColumns = `id, email, password_hash, role, empresa_id, active, created_at,
		failed_logins, locked_until, password_change_required`

// GetByID retrieves an account by ID with no company scoping applied.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanAccount(row)
}

// GetByEmail retrieves an account by email.
// PRE: email is non-empty
// POST: Returns the entity or sql.ErrNoRows if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanAccount(row)
}

// Save inserts or updates an account.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, a domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, empresa_id, active, created_at,
		   failed_logins, locked_until, password_change_required)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, password_hash=excluded.password_hash, role=excluded.role,
		   empresa_id=excluded.empresa_id, active=excluded.active,
		   failed_logins=excluded.failed_logins, locked_until=excluded.locked_until,
		   password_change_required=excluded.password_change_required`,
		a.ID, a.Email, a.PasswordHash, a.Role, nullableString(a.CompanyID),
		boolToInt(a.Active), a.CreatedAt.Format(timeLayout),
		a.FailedLogins, nullableTime(a.LockedUntil), boolToInt(a.PasswordChangeRequired))
	return err
}

// Delete removes an account by ID.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// List returns accounts matching the filter, ordered by email.
// PRE: filter has valid parameters
// POST: Returns matching accounts
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []any{}

	if filter.Role != "" {
		query += ` AND role = ?`
		args = append(args, filter.Role)
	}
	query += ` ORDER BY email`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// ListByCompany returns all accounts belonging to a company, ordered by email.
// PRE: companyID is non-empty
// POST: Returns the company's accounts
func (s *SQLiteStore) ListByCompany(ctx context.Context, companyID string) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE empresa_id = ? ORDER BY email`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// Count returns the total number of accounts.
// POST: Returns count of all rows in users
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// CountByCompany returns the number of accounts in a company.
// PRE: companyID is non-empty
// POST: Returns count, restricted to active accounts when activeOnly is set
func (s *SQLiteStore) CountByCompany(ctx context.Context, companyID string, activeOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE empresa_id = ?`
	args := []any{companyID}
	if activeOnly {
		query += ` AND active = 1`
	}
	var count int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// scanAccount scans a single row into an Account.
func scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account
	var companyID, lockedUntil sql.NullString
	var active, pwChange int
	var createdAt string

	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &companyID, &active,
		&createdAt, &a.FailedLogins, &lockedUntil, &pwChange)
	if err != nil {
		return domain.Account{}, err
	}
	applyScannedAccount(&a, companyID, lockedUntil, active, pwChange, createdAt)
	return a, nil
}

// scanAccounts scans multiple rows into a slice of Accounts.
func scanAccounts(rows *sql.Rows) ([]domain.Account, error) {
	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		var companyID, lockedUntil sql.NullString
		var active, pwChange int
		var createdAt string

		err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &companyID, &active,
			&createdAt, &a.FailedLogins, &lockedUntil, &pwChange)
		if err != nil {
			return nil, err
		}
		applyScannedAccount(&a, companyID, lockedUntil, active, pwChange, createdAt)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// applyScannedAccount converts raw scanned values into Account domain fields.
func applyScannedAccount(a *domain.Account, companyID, lockedUntil sql.NullString, active, pwChange int, createdAt string) {
	if companyID.Valid {
		a.CompanyID = companyID.String
	}
	a.Active = active != 0
	a.PasswordChangeRequired = pwChange != 0
	a.CreatedAt = parseTime(createdAt, "created_at", a.ID)
	if lockedUntil.Valid {
		a.LockedUntil = parseTime(lockedUntil.String, "locked_until", a.ID)
	}
}

// parseTime parses a time string, logging a warning on failure.
func parseTime(raw, field, id string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		slog.Warn("users: failed to parse time", "field", field, "user_id", id, "raw", raw, "error", err)
	}
	return t
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(timeLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
