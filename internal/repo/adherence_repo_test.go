package repo

import (
	"context"
	"testing"
	"time"
)

func TestUpsertChecklistEntry_LastWriteWins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := GetChecklistEntry(ctx, db, "2024-01-01", "med1"); !IsNotFound(err) {
		t.Fatalf("missing entry = %v; want not found", err)
	}

	if err := UpsertChecklistEntry(ctx, db, "2024-01-01", "med1", true); err != nil {
		t.Fatalf("UpsertChecklistEntry: %v", err)
	}
	e, err := GetChecklistEntry(ctx, db, "2024-01-01", "med1")
	if err != nil || !e.Taken {
		t.Fatalf("entry = (%+v, %v); want taken=true", e, err)
	}

	if err := UpsertChecklistEntry(ctx, db, "2024-01-01", "med1", false); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	e, _ = GetChecklistEntry(ctx, db, "2024-01-01", "med1")
	if e.Taken {
		t.Fatal("last write did not win")
	}

	// Still exactly one row for the pair.
	var count int64
	if err := db.Table("checklist_entries").Where("date = ? AND medicine_id = ?", "2024-01-01", "med1").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row per (date, medicine), got %d", count)
	}
}

func TestCountTakenInRange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_ = UpsertChecklistEntry(ctx, db, "2024-01-01", "med1", true)
	_ = UpsertChecklistEntry(ctx, db, "2024-01-03", "med1", true)
	_ = UpsertChecklistEntry(ctx, db, "2024-01-03", "med2", false)
	_ = UpsertChecklistEntry(ctx, db, "2024-01-10", "med1", true) // outside range

	n, err := CountTakenInRange(ctx, db, []string{"med1", "med2"}, "2024-01-01", "2024-01-07")
	if err != nil || n != 2 {
		t.Fatalf("CountTakenInRange = (%d, %v); want (2, nil)", n, err)
	}

	n, err = CountTakenInRange(ctx, db, nil, "2024-01-01", "2024-01-07")
	if err != nil || n != 0 {
		t.Fatalf("CountTakenInRange(no medicines) = (%d, %v); want (0, nil)", n, err)
	}
}

func TestHistoryAppendOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, taken := range []bool{true, false, true} {
		if _, err := AppendHistoryEvent(ctx, db, "med1", "2024-01-01", taken, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("AppendHistoryEvent: %v", err)
		}
	}
	if _, err := AppendHistoryEvent(ctx, db, "med1", "2024-01-02", true, base.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("AppendHistoryEvent: %v", err)
	}

	events, err := ListHistoryByDate(ctx, db, "2024-01-01")
	if err != nil {
		t.Fatalf("ListHistoryByDate: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events; want 3", len(events))
	}
	want := []bool{true, false, true}
	for i, ev := range events {
		if ev.Taken != want[i] {
			t.Fatalf("append order broken at %d: %+v", i, events)
		}
	}

	taken, err := CountHistoryByDate(ctx, db, "2024-01-01", true)
	if err != nil || taken != 2 {
		t.Fatalf("CountHistoryByDate(taken) = (%d, %v); want (2, nil)", taken, err)
	}
	missed, err := CountHistoryByDate(ctx, db, "2024-01-01", false)
	if err != nil || missed != 1 {
		t.Fatalf("CountHistoryByDate(missed) = (%d, %v); want (1, nil)", missed, err)
	}
}
