package menu

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"gamagourmet/internal/adapters/storage"
	domain "gamagourmet/internal/domain/menu"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// A pooled second connection would see a different in-memory database.
	db.SetMaxOpenConns(1)
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	// menu_platos has a foreign key on platos; seed the dishes used below.
	for _, id := range []string{"p1", "p2", "p3", "e1"} {
		_, err := db.Exec(
			`INSERT INTO platos (id, name, category, created_at) VALUES (?, ?, 'plato_principal', ?)`,
			id, "Plato "+id, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			t.Fatalf("failed to seed dish %s: %v", id, err)
		}
	}
	return NewSQLiteStore(db)
}

func testMenu(id string) domain.WeeklyMenu {
	return domain.WeeklyMenu{
		ID:        id,
		Name:      "Semana 36",
		StartDate: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC),
		Active:    true,
		CreatedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndGetByID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	m := testMenu("m1")
	if err := store.Save(ctx, m); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := store.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != m.Name || !got.StartDate.Equal(m.StartDate) || !got.EndDate.Equal(m.EndDate) {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.Published || !got.Active {
		t.Errorf("expected unpublished active menu, got %+v", got)
	}
}

func TestReplaceAssignments_ReplacesAll(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testMenu("m1")); err != nil {
		t.Fatal(err)
	}
	first := []domain.SlotAssignment{
		{MenuID: "m1", DishID: "p1", Weekday: 1, Bucket: domain.BucketPrincipales, Position: 1},
		{MenuID: "m1", DishID: "p2", Weekday: 1, Bucket: domain.BucketPrincipales, Position: 2},
		{MenuID: "m1", DishID: "e1", Weekday: 2, Bucket: domain.BucketEntradas, Position: 1},
	}
	if err := store.ReplaceAssignments(ctx, "m1", first); err != nil {
		t.Fatalf("first ReplaceAssignments failed: %v", err)
	}

	second := []domain.SlotAssignment{
		{MenuID: "m1", DishID: "p3", Weekday: 3, Bucket: domain.BucketPrincipales, Position: 1},
	}
	if err := store.ReplaceAssignments(ctx, "m1", second); err != nil {
		t.Fatalf("second ReplaceAssignments failed: %v", err)
	}

	got, err := store.ListAssignments(ctx, "m1")
	if err != nil {
		t.Fatalf("ListAssignments failed: %v", err)
	}
	if len(got) != 1 || got[0].DishID != "p3" || got[0].Weekday != 3 {
		t.Errorf("expected only the replacement row, got %v", got)
	}
}

func TestReplaceAssignments_FailureRollsBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testMenu("m1")); err != nil {
		t.Fatal(err)
	}
	good := []domain.SlotAssignment{
		{MenuID: "m1", DishID: "p1", Weekday: 1, Bucket: domain.BucketPrincipales, Position: 1},
	}
	if err := store.ReplaceAssignments(ctx, "m1", good); err != nil {
		t.Fatal(err)
	}

	// A row referencing a dish that does not exist violates the foreign
	// key; the whole replacement must roll back, keeping the old rows.
	bad := []domain.SlotAssignment{
		{MenuID: "m1", DishID: "p2", Weekday: 1, Bucket: domain.BucketPrincipales, Position: 1},
		{MenuID: "m1", DishID: "missing", Weekday: 1, Bucket: domain.BucketPrincipales, Position: 2},
	}
	if err := store.ReplaceAssignments(ctx, "m1", bad); err == nil {
		t.Fatal("expected error from foreign key violation")
	}

	got, err := store.ListAssignments(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].DishID != "p1" {
		t.Errorf("expected original rows preserved after failed replace, got %v", got)
	}
}

func TestListAssignments_SlotOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testMenu("m1")); err != nil {
		t.Fatal(err)
	}
	rows := []domain.SlotAssignment{
		{MenuID: "m1", DishID: "p2", Weekday: 2, Bucket: domain.BucketPrincipales, Position: 1},
		{MenuID: "m1", DishID: "p1", Weekday: 1, Bucket: domain.BucketPrincipales, Position: 2},
		{MenuID: "m1", DishID: "p3", Weekday: 1, Bucket: domain.BucketPrincipales, Position: 1},
	}
	if err := store.ReplaceAssignments(ctx, "m1", rows); err != nil {
		t.Fatal(err)
	}
	got, err := store.ListAssignments(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"p3", "p1", "p2"}
	for i, dishID := range want {
		if got[i].DishID != dishID {
			t.Errorf("row %d: expected %s, got %s", i, dishID, got[i].DishID)
		}
	}
}

func TestDelete_RemovesAssignments(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testMenu("m1")); err != nil {
		t.Fatal(err)
	}
	rows := []domain.SlotAssignment{
		{MenuID: "m1", DishID: "p1", Weekday: 1, Bucket: domain.BucketPrincipales, Position: 1},
	}
	if err := store.ReplaceAssignments(ctx, "m1", rows); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "m1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, "m1"); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows after delete, got %v", err)
	}
	got, err := store.ListAssignments(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no assignments after delete, got %v", got)
	}
}

func TestGetCurrentPublished(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	draft := testMenu("draft")
	if err := store.Save(ctx, draft); err != nil {
		t.Fatal(err)
	}
	published := testMenu("pub")
	published.Published = true
	if err := store.Save(ctx, published); err != nil {
		t.Fatal(err)
	}

	day := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	got, err := store.GetCurrentPublished(ctx, day)
	if err != nil {
		t.Fatalf("GetCurrentPublished failed: %v", err)
	}
	if got.ID != "pub" {
		t.Errorf("expected published menu, got %s", got.ID)
	}

	outside := time.Date(2026, 9, 20, 12, 0, 0, 0, time.UTC)
	if _, err := store.GetCurrentPublished(ctx, outside); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows outside range, got %v", err)
	}
}
