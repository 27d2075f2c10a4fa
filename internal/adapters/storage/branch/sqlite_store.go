package branch

import (
	"context"
	"log/slog"
	"time"

	"gamagourmet/internal/adapters/storage"
	domain "gamagourmet/internal/domain/branch"
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

const branchColumns = `id, empresa_id, name, address, active, created_at`

// GetByID retrieves a branch by ID.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Branch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+branchColumns+` FROM sucursales WHERE id = ?`, id)
	var b domain.Branch
	var active int
	var createdAt string
	if err := row.Scan(&b.ID, &b.CompanyID, &b.Name, &b.Address, &active, &createdAt); err != nil {
		return domain.Branch{}, err
	}
	b.Active = active != 0
	b.CreatedAt = parseTime(createdAt, b.ID)
	return b, nil
}

// Save inserts or updates a branch.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, b domain.Branch) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sucursales (id, empresa_id, name, address, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   empresa_id=excluded.empresa_id, name=excluded.name,
		   address=excluded.address, active=excluded.active`,
		b.ID, b.CompanyID, b.Name, b.Address, boolToInt(b.Active),
		b.CreatedAt.Format(timeLayout))
	return err
}

// Delete removes a branch by ID.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sucursales WHERE id = ?`, id)
	return err
}

// ListByCompany returns all branches of a company, ordered by name.
// PRE: companyID is non-empty
// POST: Returns the company's branches
func (s *SQLiteStore) ListByCompany(ctx context.Context, companyID string) ([]domain.Branch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+branchColumns+` FROM sucursales WHERE empresa_id = ? ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []domain.Branch
	for rows.Next() {
		var b domain.Branch
		var active int
		var createdAt string
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.Name, &b.Address, &active, &createdAt); err != nil {
			return nil, err
		}
		b.Active = active != 0
		b.CreatedAt = parseTime(createdAt, b.ID)
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func parseTime(raw, id string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		slog.Warn("sucursales: failed to parse time", "sucursal_id", id, "raw", raw, "error", err)
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
