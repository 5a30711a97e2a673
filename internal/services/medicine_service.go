package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-medtrack-backend/internal/domain"
	"github.com/tbourn/go-medtrack-backend/internal/repo"
)

// MedicineRepo defines the repository contract required by MedicineService.
type MedicineRepo interface {
	CreateMedicine(ctx context.Context, db *gorm.DB, userID, name, dosage, instructions string) (*domain.Medicine, error)
	ListMedicines(ctx context.Context, db *gorm.DB, userID string) ([]domain.Medicine, error)
	GetMedicine(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Medicine, error)
	UpdateMedicine(ctx context.Context, db *gorm.DB, id, userID, name, dosage, instructions string) error
	DeleteMedicine(ctx context.Context, db *gorm.DB, id, userID string) error
}

// AlarmCascadeRepo is the slice of the alarm repository the delete cascade
// needs.
type AlarmCascadeRepo interface {
	ListAlarmsByMedicine(ctx context.Context, db *gorm.DB, medicineID, userID string) ([]repo.AlarmRecord, error)
	DeleteAlarmsByMedicine(ctx context.Context, db *gorm.DB, medicineID, userID string) (int64, error)
}

// TriggerCanceller cancels live trigger registrations. Satisfied by
// scheduler.Lifecycle.
type TriggerCanceller interface {
	Cancel(ctx context.Context, handles []string)
}

// MedicineService implements CRUD for the medicine cabinet and owns the
// delete cascade over alarms.
type MedicineService struct {
	DB     *gorm.DB
	Repo   MedicineRepo
	Alarms AlarmCascadeRepo
	// Triggers cancels registrations when alarms are swept by a delete.
	Triggers TriggerCanceller
	Log      zerolog.Logger
}

// MedicineInput carries a create or update request for a medicine.
type MedicineInput struct {
	Name         string
	Dosage       string
	Instructions string
}

// Create adds a medicine to the user's cabinet. The name is required; dosage
// and instructions are free text.
func (s *MedicineService) Create(ctx context.Context, userID string, in MedicineInput) (*domain.Medicine, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return s.Repo.CreateMedicine(ctx, s.DB, userID, name, strings.TrimSpace(in.Dosage), strings.TrimSpace(in.Instructions))
}

// List returns the user's medicines, oldest first.
func (s *MedicineService) List(ctx context.Context, userID string) ([]domain.Medicine, error) {
	return s.Repo.ListMedicines(ctx, s.DB, userID)
}

// Get returns a single medicine.
func (s *MedicineService) Get(ctx context.Context, userID, id string) (*domain.Medicine, error) {
	m, err := s.Repo.GetMedicine(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMedicineNotFound
		}
		return nil, err
	}
	return m, nil
}

// Update rewrites a medicine's fields. The alarm rows keep their name
// snapshot from save time; they pick up the new name on their next update.
func (s *MedicineService) Update(ctx context.Context, userID, id string, in MedicineInput) (*domain.Medicine, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	err := s.Repo.UpdateMedicine(ctx, s.DB, id, userID, name, strings.TrimSpace(in.Dosage), strings.TrimSpace(in.Instructions))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMedicineNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// Delete removes a medicine and sweeps its alarms: every alarm referencing
// the medicine has its live triggers cancelled and its row removed, then the
// medicine row goes. Checklist entries and history events are retained; past
// adherence stays queryable and renders under a placeholder name once the
// medicine is gone.
//
// Trigger cancellation happens before the row deletes and is best-effort. The
// alarm and medicine rows are removed in one transaction.
func (s *MedicineService) Delete(ctx context.Context, userID, id string) error {
	alarms, err := s.Alarms.ListAlarmsByMedicine(ctx, s.DB, id, userID)
	if err != nil {
		return err
	}
	for _, a := range alarms {
		s.Triggers.Cancel(ctx, a.Handles)
	}

	start := time.Now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Alarms.DeleteAlarmsByMedicine(ctx, tx, id, userID); err != nil {
			return err
		}
		return s.Repo.DeleteMedicine(ctx, tx, id, userID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMedicineNotFound
		}
		return err
	}

	s.Log.Info().
		Str("medicine_id", id).
		Int("alarms_swept", len(alarms)).
		Dur("took", time.Since(start)).
		Msg("medicine deleted")
	return nil
}
