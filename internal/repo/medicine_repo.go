// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Medicine
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Cascading behavior (deleting a
// medicine's alarms and cancelling their triggers) lives in the service
// layer, which owns the ordering between the notification service and the
// database.
//
// Error semantics:
//   - When a medicine is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-medtrack-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateMedicine inserts a new Medicine row owned by userID. The medicine ID
// is a randomly generated UUID (string), and CreatedAt is set to UTC.
func CreateMedicine(ctx context.Context, db *gorm.DB, userID, name, dosage, instructions string) (*domain.Medicine, error) {
	m := &domain.Medicine{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		Dosage:       dosage,
		Instructions: instructions,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListMedicines returns all medicines belonging to userID, ordered by
// creation time ascending (insertion order, the way the checklist renders
// them). It returns an empty slice when the user has none.
func ListMedicines(ctx context.Context, db *gorm.DB, userID string) ([]domain.Medicine, error) {
	var out []domain.Medicine
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// CountMedicines returns the total number of medicines owned by userID.
func CountMedicines(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Medicine{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// GetMedicine fetches a single medicine by its ID and owner. If the record
// does not exist, it returns ErrNotFound.
func GetMedicine(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Medicine, error) {
	var m domain.Medicine
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMedicine updates the mutable fields of a medicine owned by userID.
// If no rows are affected (missing or not owned), it returns ErrNotFound.
func UpdateMedicine(ctx context.Context, db *gorm.DB, id, userID, name, dosage, instructions string) error {
	res := db.WithContext(ctx).
		Model(&domain.Medicine{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"name":         name,
			"dosage":       dosage,
			"instructions": instructions,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMedicine removes a medicine row owned by userID. Alarms and adherence
// rows are untouched here; the service layer decides what cascades.
// If no rows are affected, it returns ErrNotFound.
func DeleteMedicine(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Medicine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
