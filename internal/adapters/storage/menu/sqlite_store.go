package menu

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gamagourmet/internal/adapters/storage"
	domain "gamagourmet/internal/domain/menu"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// dateLayout is used for start/end dates, which carry no time component.
const dateLayout = "2006-01-02"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const menuColumns = `id, name, start_date, end_date, published, active, created_at, updated_at`

// GetByID retrieves a menu by ID.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.WeeklyMenu, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+menuColumns+` FROM menus_semanales WHERE id = ?`, id)
	return scanMenu(row)
}

// Save inserts or updates a menu header.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, m domain.WeeklyMenu) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO menus_semanales (id, name, start_date, end_date, published, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, start_date=excluded.start_date, end_date=excluded.end_date,
		   published=excluded.published, active=excluded.active, updated_at=excluded.updated_at`,
		m.ID, m.Name, m.StartDate.Format(dateLayout), m.EndDate.Format(dateLayout),
		boolToInt(m.Published), boolToInt(m.Active),
		m.CreatedAt.Format(timeLayout), nullableTime(m.UpdatedAt))
	return err
}

// Delete removes a menu and all of its assignments.
// PRE: id is non-empty
// POST: menus_semanales row and its menu_platos rows are removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_platos WHERE menu_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM menus_semanales WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// List returns menus matching the filter, newest start date first.
// PRE: filter has valid parameters
// POST: Returns matching menus
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.WeeklyMenu, error) {
	query := `SELECT ` + menuColumns + ` FROM menus_semanales WHERE 1=1`
	args := []any{}

	if filter.PublishedOnly {
		query += ` AND published = 1`
	}
	if filter.ActiveOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY start_date DESC`
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
	return scanMenus(rows)
}

// Count returns the number of menus.
// POST: Returns count, restricted to published rows when publishedOnly is set
func (s *SQLiteStore) Count(ctx context.Context, publishedOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM menus_semanales`
	if publishedOnly {
		query += ` WHERE published = 1`
	}
	var count int
	err := s.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

// GetCurrentPublished returns the published, active menu whose date range
// covers the given day. When ranges overlap, the most recently started wins.
// PRE: day is the reference date
// POST: Returns the current menu or sql.ErrNoRows
func (s *SQLiteStore) GetCurrentPublished(ctx context.Context, day time.Time) (domain.WeeklyMenu, error) {
	dayStr := day.Format(dateLayout)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+menuColumns+` FROM menus_semanales
		 WHERE published = 1 AND active = 1 AND start_date <= ? AND end_date >= ?
		 ORDER BY start_date DESC LIMIT 1`,
		dayStr, dayStr)
	return scanMenu(row)
}

// ReplaceAssignments replaces the menu's full assignment set in one
// transaction: delete all existing rows, insert the new flattened set.
// PRE: menuID is non-empty; assignments all carry menuID
// POST: menu_platos holds exactly the given rows for the menu
func (s *SQLiteStore) ReplaceAssignments(ctx context.Context, menuID string, assignments []domain.SlotAssignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_platos WHERE menu_id = ?`, menuID); err != nil {
		return fmt.Errorf("failed to clear menu assignments: %w", err)
	}
	for _, a := range assignments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO menu_platos (menu_id, plato_id, weekday, bucket, position)
			 VALUES (?, ?, ?, ?, ?)`,
			menuID, a.DishID, a.Weekday, a.Bucket, a.Position)
		if err != nil {
			return fmt.Errorf("failed to insert menu assignment: %w", err)
		}
	}
	return tx.Commit()
}

// ListAssignments returns the menu's assignment rows in slot order.
// PRE: menuID is non-empty
// POST: Returns rows ordered by (weekday, bucket, position)
func (s *SQLiteStore) ListAssignments(ctx context.Context, menuID string) ([]domain.SlotAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT menu_id, plato_id, weekday, bucket, position
		 FROM menu_platos WHERE menu_id = ?
		 ORDER BY weekday, bucket, position`, menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []domain.SlotAssignment
	for rows.Next() {
		var a domain.SlotAssignment
		if err := rows.Scan(&a.MenuID, &a.DishID, &a.Weekday, &a.Bucket, &a.Position); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func scanMenu(row *sql.Row) (domain.WeeklyMenu, error) {
	var m domain.WeeklyMenu
	var published, active int
	var startDate, endDate, createdAt string
	var updatedAt sql.NullString

	err := row.Scan(&m.ID, &m.Name, &startDate, &endDate, &published, &active, &createdAt, &updatedAt)
	if err != nil {
		return domain.WeeklyMenu{}, err
	}
	applyScannedMenu(&m, startDate, endDate, createdAt, updatedAt, published, active)
	return m, nil
}

func scanMenus(rows *sql.Rows) ([]domain.WeeklyMenu, error) {
	var menus []domain.WeeklyMenu
	for rows.Next() {
		var m domain.WeeklyMenu
		var published, active int
		var startDate, endDate, createdAt string
		var updatedAt sql.NullString

		err := rows.Scan(&m.ID, &m.Name, &startDate, &endDate, &published, &active, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}
		applyScannedMenu(&m, startDate, endDate, createdAt, updatedAt, published, active)
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

func applyScannedMenu(m *domain.WeeklyMenu, startDate, endDate, createdAt string, updatedAt sql.NullString, published, active int) {
	m.Published = published != 0
	m.Active = active != 0
	m.StartDate = parseDate(startDate, "start_date", m.ID)
	m.EndDate = parseDate(endDate, "end_date", m.ID)
	m.CreatedAt = parseTime(createdAt, "created_at", m.ID)
	if updatedAt.Valid {
		m.UpdatedAt = parseTime(updatedAt.String, "updated_at", m.ID)
	}
}

func parseDate(raw, field, menuID string) time.Time {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		slog.Warn("menus: failed to parse date", "field", field, "menu_id", menuID, "raw", raw, "error", err)
	}
	return t
}

func parseTime(raw, field, menuID string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		slog.Warn("menus: failed to parse time", "field", field, "menu_id", menuID, "raw", raw, "error", err)
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
