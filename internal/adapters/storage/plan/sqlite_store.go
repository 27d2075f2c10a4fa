package plan

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"gamagourmet/internal/adapters/storage"
	domain "gamagourmet/internal/domain/plan"
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

const planColumns = `id, name, description, price_cents, meals_per_week, active, created_at, updated_at`

// GetByID retrieves a plan by ID.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Plan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM planes WHERE id = ?`, id)
	return scanPlan(row)
}

// Save inserts or updates a plan.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, p domain.Plan) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO planes (id, name, description, price_cents, meals_per_week, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, description=excluded.description, price_cents=excluded.price_cents,
		   meals_per_week=excluded.meals_per_week, active=excluded.active, updated_at=excluded.updated_at`,
		p.ID, p.Name, p.Description, p.PriceCents, p.MealsPerWeek, boolToInt(p.Active),
		p.CreatedAt.Format(timeLayout), nullableTime(p.UpdatedAt))
	return err
}

// Delete removes a plan by ID.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM planes WHERE id = ?`, id)
	return err
}

// List returns plans ordered by name.
// POST: Returns all plans, restricted to active ones when activeOnly is set
func (s *SQLiteStore) List(ctx context.Context, activeOnly bool) ([]domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM planes`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		p, err := scanPlanRow(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// AssignToCompany sets the company's active plan. The empresa_planes table
// keys on empresa_id, so assigning replaces any previous plan row.
// PRE: assignment has been validated
// POST: Company's single plan row points at the given plan
func (s *SQLiteStore) AssignToCompany(ctx context.Context, a domain.Assignment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO empresa_planes (empresa_id, plan_id, assigned_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(empresa_id) DO UPDATE SET
		   plan_id=excluded.plan_id, assigned_at=excluded.assigned_at`,
		a.CompanyID, a.PlanID, a.AssignedAt.Format(timeLayout))
	return err
}

// GetCompanyPlan returns the plan currently assigned to a company.
// PRE: companyID is non-empty
// POST: Returns the plan or sql.ErrNoRows if none is assigned
func (s *SQLiteStore) GetCompanyPlan(ctx context.Context, companyID string) (domain.Plan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT p.id, p.name, p.description, p.price_cents, p.meals_per_week, p.active, p.created_at, p.updated_at
		 FROM planes p JOIN empresa_planes ep ON ep.plan_id = p.id
		 WHERE ep.empresa_id = ?`, companyID)
	return scanPlan(row)
}

func scanPlan(row *sql.Row) (domain.Plan, error) {
	var p domain.Plan
	var active int
	var createdAt string
	var updatedAt sql.NullString

	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.MealsPerWeek, &active, &createdAt, &updatedAt)
	if err != nil {
		return domain.Plan{}, err
	}
	applyScannedPlan(&p, active, createdAt, updatedAt)
	return p, nil
}

func scanPlanRow(rows *sql.Rows) (domain.Plan, error) {
	var p domain.Plan
	var active int
	var createdAt string
	var updatedAt sql.NullString

	err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.MealsPerWeek, &active, &createdAt, &updatedAt)
	if err != nil {
		return domain.Plan{}, err
	}
	applyScannedPlan(&p, active, createdAt, updatedAt)
	return p, nil
}

func applyScannedPlan(p *domain.Plan, active int, createdAt string, updatedAt sql.NullString) {
	p.Active = active != 0
	p.CreatedAt = parseTime(createdAt, p.ID)
	if updatedAt.Valid {
		p.UpdatedAt = parseTime(updatedAt.String, p.ID)
	}
}

func parseTime(raw, id string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		slog.Warn("planes: failed to parse time", "plan_id", id, "raw", raw, "error", err)
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
