// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the adherence
// ledger: checklist entries (current state) and history events (audit log).
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-medtrack-backend/internal/domain"
)

// GetChecklistEntry fetches the entry for (date, medicineID). A missing entry
// returns ErrNotFound; callers treat that as "not taken".
func GetChecklistEntry(ctx context.Context, db *gorm.DB, date, medicineID string) (*domain.ChecklistEntry, error) {
	var e domain.ChecklistEntry
	err := db.WithContext(ctx).
		Where("date = ? AND medicine_id = ?", date, medicineID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpsertChecklistEntry writes taken for (date, medicineID), creating the row
// when absent and overwriting it otherwise. At most one row exists per pair;
// last write wins.
func UpsertChecklistEntry(ctx context.Context, db *gorm.DB, date, medicineID string, taken bool) error {
	res := db.WithContext(ctx).
		Model(&domain.ChecklistEntry{}).
		Where("date = ? AND medicine_id = ?", date, medicineID).
		Update("taken", taken)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	e := &domain.ChecklistEntry{
		ID:         uuid.NewString(),
		Date:       date,
		MedicineID: medicineID,
		Taken:      taken,
		CreatedAt:  time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(e).Error
}

// CountTakenInRange counts checklist cells marked taken for the given
// medicines over the inclusive [from, to] date range. Date strings compare
// lexicographically because of the fixed "YYYY-MM-DD" form.
func CountTakenInRange(ctx context.Context, db *gorm.DB, medicineIDs []string, from, to string) (int64, error) {
	if len(medicineIDs) == 0 {
		return 0, nil
	}
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ChecklistEntry{}).
		Where("medicine_id IN ? AND date >= ? AND date <= ? AND taken = ?", medicineIDs, from, to, true).
		Count(&total).Error
	return total, err
}

// AppendHistoryEvent appends one event to the audit log. History is
// append-only: there is no update or delete counterpart.
func AppendHistoryEvent(ctx context.Context, db *gorm.DB, medicineID, date string, taken bool, recordedAt time.Time) (*domain.HistoryEvent, error) {
	ev := &domain.HistoryEvent{
		ID:         uuid.NewString(),
		MedicineID: medicineID,
		Date:       date,
		Taken:      taken,
		RecordedAt: recordedAt,
	}
	if err := db.WithContext(ctx).Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

// ListHistoryByDate returns every history event for the given calendar day in
// original append order. Presentation decides whether to reverse it.
func ListHistoryByDate(ctx context.Context, db *gorm.DB, date string) ([]domain.HistoryEvent, error) {
	var out []domain.HistoryEvent
	err := db.WithContext(ctx).
		Where("date = ?", date).
		Order("recorded_at asc").
		Find(&out).Error
	return out, err
}

// CountHistoryByDate returns the number of events on date with the given
// taken flag. Used by the daily taken/missed stats.
func CountHistoryByDate(ctx context.Context, db *gorm.DB, date string, taken bool) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.HistoryEvent{}).
		Where("date = ? AND taken = ?", date, taken).
		Count(&total).Error
	return total, err
}

// IsNotFound reports whether err is the repo's not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
