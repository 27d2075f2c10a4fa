package ingredient

import (
	"context"
	"log/slog"
	"time"

	"gamagourmet/internal/adapters/storage"
	domain "gamagourmet/internal/domain/ingredient"
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

// GetByID retrieves an ingredient by ID.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Ingredient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, unit, active, created_at FROM ingredientes WHERE id = ?`, id)
	var i domain.Ingredient
	var active int
	var createdAt string
	if err := row.Scan(&i.ID, &i.Name, &i.Unit, &active, &createdAt); err != nil {
		return domain.Ingredient{}, err
	}
	i.Active = active != 0
	i.CreatedAt = parseTime(createdAt, i.ID)
	return i, nil
}

// Save inserts or updates an ingredient.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, i domain.Ingredient) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingredientes (id, name, unit, active, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, unit=excluded.unit, active=excluded.active`,
		i.ID, i.Name, i.Unit, boolToInt(i.Active), i.CreatedAt.Format(timeLayout))
	return err
}

// Delete removes an ingredient by ID.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ingredientes WHERE id = ?`, id)
	return err
}

// List returns ingredients ordered by name.
// POST: Returns all ingredients, restricted to active ones when activeOnly is set
func (s *SQLiteStore) List(ctx context.Context, activeOnly bool) ([]domain.Ingredient, error) {
	query := `SELECT id, name, unit, active, created_at FROM ingredientes`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ingredients []domain.Ingredient
	for rows.Next() {
		var i domain.Ingredient
		var active int
		var createdAt string
		if err := rows.Scan(&i.ID, &i.Name, &i.Unit, &active, &createdAt); err != nil {
			return nil, err
		}
		i.Active = active != 0
		i.CreatedAt = parseTime(createdAt, i.ID)
		ingredients = append(ingredients, i)
	}
	return ingredients, rows.Err()
}

func parseTime(raw, id string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		slog.Warn("ingredientes: failed to parse time", "ingrediente_id", id, "raw", raw, "error", err)
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
