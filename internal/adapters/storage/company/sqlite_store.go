package company

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"gamagourmet/internal/adapters/storage"
	domain "gamagourmet/internal/domain/company"
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

const companyColumns = `id, name, tax_id, contact_email, active, created_at, updated_at`

// GetByID retrieves a company by ID.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM empresas WHERE id = ?`, id)
	return scanCompany(row)
}

// Save inserts or updates a company.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, c domain.Company) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO empresas (id, name, tax_id, contact_email, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, tax_id=excluded.tax_id, contact_email=excluded.contact_email,
		   active=excluded.active, updated_at=excluded.updated_at`,
		c.ID, c.Name, c.TaxID, c.ContactEmail, boolToInt(c.Active),
		c.CreatedAt.Format(timeLayout), nullableTime(c.UpdatedAt))
	return err
}

// Delete removes a company by ID.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM empresas WHERE id = ?`, id)
	return err
}

// List returns companies matching the filter, ordered by name.
// PRE: filter has valid parameters
// POST: Returns matching companies
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM empresas WHERE 1=1`
	args := []any{}

	if filter.Search != "" {
		query += ` AND name LIKE ?`
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.ActiveOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY name`
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

	var companies []domain.Company
	for rows.Next() {
		c, err := scanCompanyRow(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// Count returns the number of companies.
// POST: Returns count, restricted to active rows when activeOnly is set
func (s *SQLiteStore) Count(ctx context.Context, activeOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM empresas`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	var count int
	err := s.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

func scanCompany(row *sql.Row) (domain.Company, error) {
	var c domain.Company
	var active int
	var createdAt string
	var updatedAt sql.NullString

	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.ContactEmail, &active, &createdAt, &updatedAt)
	if err != nil {
		return domain.Company{}, err
	}
	applyScannedCompany(&c, active, createdAt, updatedAt)
	return c, nil
}

func scanCompanyRow(rows *sql.Rows) (domain.Company, error) {
	var c domain.Company
	var active int
	var createdAt string
	var updatedAt sql.NullString

	err := rows.Scan(&c.ID, &c.Name, &c.TaxID, &c.ContactEmail, &active, &createdAt, &updatedAt)
	if err != nil {
		return domain.Company{}, err
	}
	applyScannedCompany(&c, active, createdAt, updatedAt)
	return c, nil
}

func applyScannedCompany(c *domain.Company, active int, createdAt string, updatedAt sql.NullString) {
	c.Active = active != 0
	c.CreatedAt = parseTime(createdAt, "created_at", c.ID)
	if updatedAt.Valid {
		c.UpdatedAt = parseTime(updatedAt.String, "updated_at", c.ID)
	}
}

// parseTime parses a time string, logging a warning on failure.
func parseTime(raw, field, id string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		slog.Warn("empresas: failed to parse time", "field", field, "empresa_id", id, "raw", raw, "error", err)
	}
	return t
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
