package branch

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"gamagourmet/internal/adapters/storage"
	domain "gamagourmet/internal/domain/branch"
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
	// sucursales has a foreign key on empresas; seed the companies used below.
	for _, id := range []string{"c1", "c2"} {
		_, err := db.Exec(
			`INSERT INTO empresas (id, name, tax_id, contact_email, active, created_at, updated_at) VALUES (?, ?, ?, ?, 1, ?, ?)`,
			id, "Empresa "+id, "20"+id, id+"@example.com",
			time.Now().UTC().Format(time.RFC3339), time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			t.Fatalf("failed to seed company %s: %v", id, err)
		}
	}
	return NewSQLiteStore(db)
}

func testBranch(id, companyID string) domain.Branch {
	return domain.Branch{
		ID:        id,
		CompanyID: companyID,
		Name:      "Sucursal " + id,
		Address:   "Av. Principal 123",
		Active:    true,
		CreatedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndGetByID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	b := testBranch("s1", "c1")
	if err := store.Save(ctx, b); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != b.Name || got.CompanyID != b.CompanyID || got.Address != b.Address {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if !got.Active || !got.CreatedAt.Equal(b.CreatedAt) {
		t.Errorf("expected active branch with original timestamp, got %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestSave_UpdatesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	b := testBranch("s1", "c1")
	if err := store.Save(ctx, b); err != nil {
		t.Fatal(err)
	}
	b.Name = "Sucursal Centro"
	b.Active = false
	if err := store.Save(ctx, b); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Sucursal Centro" || got.Active {
		t.Errorf("update not applied: got %+v", got)
	}
}

func TestListByCompany_ScopedAndOrdered(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, b := range []domain.Branch{
		testBranch("s1", "c1"),
		testBranch("s2", "c2"),
		testBranch("s3", "c1"),
	} {
		if err := store.Save(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ListByCompany(ctx, "c1")
	if err != nil {
		t.Fatalf("ListByCompany failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 branches for c1, got %d", len(got))
	}
	for _, b := range got {
		if b.CompanyID != "c1" {
			t.Errorf("branch %s leaked from company %s", b.ID, b.CompanyID)
		}
	}
	if got[0].Name > got[1].Name {
		t.Errorf("branches not ordered by name: %s before %s", got[0].Name, got[1].Name)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testBranch("s1", "c1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, "s1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows after delete, got %v", err)
	}
}
