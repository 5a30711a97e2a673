package repo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"
)

// newTestDB opens a migrated SQLite database in a temp dir.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "medtrack.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func TestOpenSQLite_ErrorOnBadPath(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "does-not-exist", "medtrack.db")

	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}
	lower := strings.ToLower(err.Error())
	if !(os.IsNotExist(err) ||
		strings.Contains(lower, "unable to open database file") ||
		strings.Contains(lower, "no such file or directory") ||
		strings.Contains(lower, "out of memory")) {
		t.Fatalf("unexpected error opening %q: %v", bad, err)
	}
}

func TestMedicineCRUDRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	m, err := CreateMedicine(ctx, db, "u1", "Aspirin", "2 x 500mg", "after meals")
	if err != nil {
		t.Fatalf("CreateMedicine: %v", err)
	}
	if m.ID == "" {
		t.Fatal("medicine ID not generated")
	}

	got, err := GetMedicine(ctx, db, m.ID, "u1")
	if err != nil {
		t.Fatalf("GetMedicine: %v", err)
	}
	if got.Name != "Aspirin" || got.Dosage != "2 x 500mg" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	// Wrong owner is not found.
	if _, err := GetMedicine(ctx, db, m.ID, "u2"); !IsNotFound(err) {
		t.Fatalf("GetMedicine wrong owner = %v; want not found", err)
	}

	if err := UpdateMedicine(ctx, db, m.ID, "u1", "Aspirin Forte", "1 x 1000mg", ""); err != nil {
		t.Fatalf("UpdateMedicine: %v", err)
	}
	got, _ = GetMedicine(ctx, db, m.ID, "u1")
	if got.Name != "Aspirin Forte" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := UpdateMedicine(ctx, db, "missing", "u1", "x", "", ""); !IsNotFound(err) {
		t.Fatalf("UpdateMedicine missing = %v; want not found", err)
	}

	if err := DeleteMedicine(ctx, db, m.ID, "u1"); err != nil {
		t.Fatalf("DeleteMedicine: %v", err)
	}
	if err := DeleteMedicine(ctx, db, m.ID, "u1"); !IsNotFound(err) {
		t.Fatalf("second DeleteMedicine = %v; want not found", err)
	}
}

func TestListAndCountMedicines(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		if _, err := CreateMedicine(ctx, db, "u1", name, "", ""); err != nil {
			t.Fatalf("CreateMedicine(%s): %v", name, err)
		}
	}
	if _, err := CreateMedicine(ctx, db, "u2", "other", "", ""); err != nil {
		t.Fatalf("CreateMedicine(other): %v", err)
	}

	list, err := ListMedicines(ctx, db, "u1")
	if err != nil {
		t.Fatalf("ListMedicines: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("ListMedicines returned %d; want 3", len(list))
	}

	total, err := CountMedicines(ctx, db, "u1")
	if err != nil || total != 3 {
		t.Fatalf("CountMedicines = (%d, %v); want (3, nil)", total, err)
	}
}
