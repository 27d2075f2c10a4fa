package dish

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gamagourmet/internal/adapters/storage"
	domain "gamagourmet/internal/domain/dish"
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

const dishColumns = `id, name, description, category, active, created_at, updated_at`

// GetByID retrieves a dish by ID.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Dish, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+dishColumns+` FROM platos WHERE id = ?`, id)
	var d domain.Dish
	var active int
	var createdAt string
	var updatedAt sql.NullString
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Category, &active, &createdAt, &updatedAt); err != nil {
		return domain.Dish{}, err
	}
	applyScannedDish(&d, active, createdAt, updatedAt)
	return d, nil
}

// Save inserts or updates a dish.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, d domain.Dish) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO platos (id, name, description, category, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, description=excluded.description, category=excluded.category,
		   active=excluded.active, updated_at=excluded.updated_at`,
		d.ID, d.Name, d.Description, d.Category, boolToInt(d.Active),
		d.CreatedAt.Format(timeLayout), nullableTime(d.UpdatedAt))
	return err
}

// Delete removes a dish and its ingredient links.
// PRE: id is non-empty
// POST: Dish and plato_ingredientes rows are removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plato_ingredientes WHERE plato_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM platos WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// List returns dishes matching the filter, ordered by name.
// PRE: filter has valid parameters
// POST: Returns matching dishes
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Dish, error) {
	query := `SELECT ` + dishColumns + ` FROM platos WHERE 1=1`
	args := []any{}

	if filter.Search != "" {
		query += ` AND name LIKE ?`
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
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

	var dishes []domain.Dish
	for rows.Next() {
		var d domain.Dish
		var active int
		var createdAt string
		var updatedAt sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Category, &active, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		applyScannedDish(&d, active, createdAt, updatedAt)
		dishes = append(dishes, d)
	}
	return dishes, rows.Err()
}

// Count returns the number of dishes.
// POST: Returns count, restricted to active rows when activeOnly is set
func (s *SQLiteStore) Count(ctx context.Context, activeOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM platos`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	var count int
	err := s.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

// ReplaceIngredients replaces the full ingredient list of a dish in one
// transaction (delete-then-insert, same pattern as menu assignments).
// PRE: dishID is non-empty
// POST: plato_ingredientes holds exactly the given rows for the dish
func (s *SQLiteStore) ReplaceIngredients(ctx context.Context, dishID string, ingredients []domain.DishIngredient) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plato_ingredientes WHERE plato_id = ?`, dishID); err != nil {
		return fmt.Errorf("failed to clear dish ingredients: %w", err)
	}
	for _, di := range ingredients {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO plato_ingredientes (plato_id, ingrediente_id, quantity) VALUES (?, ?, ?)`,
			dishID, di.IngredientID, di.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert dish ingredient: %w", err)
		}
	}
	return tx.Commit()
}

// ListIngredients returns the ingredient rows of a dish.
// PRE: dishID is non-empty
// POST: Returns the dish's plato_ingredientes rows
func (s *SQLiteStore) ListIngredients(ctx context.Context, dishID string) ([]domain.DishIngredient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plato_id, ingrediente_id, quantity FROM plato_ingredientes WHERE plato_id = ?`, dishID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DishIngredient
	for rows.Next() {
		var di domain.DishIngredient
		if err := rows.Scan(&di.DishID, &di.IngredientID, &di.Quantity); err != nil {
			return nil, err
		}
		out = append(out, di)
	}
	return out, rows.Err()
}

func applyScannedDish(d *domain.Dish, active int, createdAt string, updatedAt sql.NullString) {
	d.Active = active != 0
	d.CreatedAt = parseTime(createdAt, d.ID)
	if updatedAt.Valid {
		d.UpdatedAt = parseTime(updatedAt.String, d.ID)
	}
}

func parseTime(raw, id string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		slog.Warn("platos: failed to parse time", "plato_id", id, "raw", raw, "error", err)
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
