// AlarmService, the orchestrator of the alarm engine. It validates alarm
// requests, expands the recurrence rule into trigger descriptors, hands them
// to the trigger lifecycle manager, and persists the alarm record together
// with the handles that came back.
//
// Ordering matters: the notification service is always consulted before the
// database. An alarm save reports success only after every trigger has
// registered; a scheduling failure aborts the save with nothing persisted and
// nothing left registered.

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-medtrack-backend/internal/domain"
	"github.com/tbourn/go-medtrack-backend/internal/notify"
	"github.com/tbourn/go-medtrack-backend/internal/repo"
	"github.com/tbourn/go-medtrack-backend/internal/schedule"
)

// AlarmRepo defines the repository contract required by AlarmService.
type AlarmRepo interface {
	// CreateAlarm inserts a new alarm row under the caller-minted id with its
	// handle list.
	CreateAlarm(ctx context.Context, db *gorm.DB, id, userID, medicineID, medicineName string, hour, minute int, weekdays []time.Weekday, handles []string) (*repo.AlarmRecord, error)

	// GetAlarm fetches an alarm by ID ensuring it belongs to the user.
	GetAlarm(ctx context.Context, db *gorm.DB, id, userID string) (*repo.AlarmRecord, error)

	// ListAlarms returns all alarms belonging to the user.
	ListAlarms(ctx context.Context, db *gorm.DB, userID string) ([]repo.AlarmRecord, error)

	// UpdateAlarm rewrites an alarm's schedulable fields and handle list.
	UpdateAlarm(ctx context.Context, db *gorm.DB, id, userID, medicineID, medicineName string, hour, minute int, weekdays []time.Weekday, handles []string) error

	// DeleteAlarm removes an alarm row.
	DeleteAlarm(ctx context.Context, db *gorm.DB, id, userID string) error
}

// MedicineGetter is the slice of the medicine repository AlarmService needs:
// resolving the referenced medicine to validate it and snapshot its name.
type MedicineGetter interface {
	GetMedicine(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Medicine, error)
}

// TriggerLifecycle is the contract of the trigger lifecycle manager
// (internal/scheduler.Lifecycle satisfies it).
type TriggerLifecycle interface {
	Schedule(ctx context.Context, triggers []schedule.Trigger, content notify.Content) ([]string, error)
	Reschedule(ctx context.Context, oldHandles []string, triggers []schedule.Trigger, content notify.Content) ([]string, error)
	Cancel(ctx context.Context, handles []string)
}

// PermissionChecker asks the notification service whether reminders may be
// delivered at all. notify.Notifier satisfies it.
type PermissionChecker interface {
	RequestPermission(ctx context.Context) (bool, error)
}

// AlarmService coordinates recurrence expansion, trigger scheduling, and
// alarm persistence.
type AlarmService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the alarm repository used by this service.
	Repo AlarmRepo
	// Medicines resolves the referenced medicine at save time.
	Medicines MedicineGetter
	// Triggers manages registrations with the notification service.
	Triggers TriggerLifecycle
	// Permissions gates scheduling on delivery permission.
	Permissions PermissionChecker

	// Now supplies the clock for one-off expansion; defaults to time.Now.
	Now func() time.Time
}

// AlarmInput carries a create or update request for an alarm.
type AlarmInput struct {
	// MedicineID references the medicine the reminder is for.
	MedicineID string
	// Time is the strict "HH:MM" time of day.
	Time string
	// Weekdays is the repeat set (0=Sunday..6=Saturday). Required unless
	// OneOff is set.
	Weekdays []time.Weekday
	// OneOff requests a single non-repeating reminder at the next matching
	// instant instead of a weekly recurrence.
	OneOff bool
}

// Create validates input, schedules the triggers, and persists the alarm with
// the returned handles.
//
// Failure modes:
//   - schedule.ErrInvalidTime / schedule.ErrNoRepeatDays: validation, nothing
//     mutated.
//   - ErrMedicineNotFound: the referenced medicine is missing or not owned.
//   - scheduler.ErrSchedulingFailed: registration failed; partial handles were
//     rolled back and no row was written.
func (s *AlarmService) Create(ctx context.Context, userID string, in AlarmInput) (*repo.AlarmRecord, error) {
	hour, minute, err := schedule.ParseTimeOfDay(in.Time)
	if err != nil {
		return nil, err
	}
	if err := s.checkPermission(ctx); err != nil {
		return nil, err
	}

	med, err := s.Medicines.GetMedicine(ctx, s.DB, in.MedicineID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMedicineNotFound
		}
		return nil, err
	}

	triggers, weekdays, err := s.expand(hour, minute, in)
	if err != nil {
		return nil, err
	}

	// The ID is minted here, before scheduling, so the delivery content of
	// every trigger carries the alarm it belongs to.
	alarmID := uuid.NewString()

	handles, err := s.Triggers.Schedule(ctx, triggers, reminderContent(alarmID, med.Name))
	if err != nil {
		return nil, err
	}

	rec, err := s.Repo.CreateAlarm(ctx, s.DB, alarmID, userID, med.ID, med.Name, hour, minute, weekdays, handles)
	if err != nil {
		// The row never materialized; the registrations must not outlive it.
		s.Triggers.Cancel(ctx, handles)
		return nil, err
	}
	return rec, nil
}

// Update revalidates input, replaces the alarm's trigger registrations, and
// rewrites the row, refreshing the denormalized medicine-name snapshot.
//
// Old handles are cancelled best-effort before the new set registers; a new
// scheduling failure leaves the alarm row untouched (its previous handles are
// already cancelled or stale, which is the accepted leak of the best-effort
// cancel path).
func (s *AlarmService) Update(ctx context.Context, userID, alarmID string, in AlarmInput) (*repo.AlarmRecord, error) {
	hour, minute, err := schedule.ParseTimeOfDay(in.Time)
	if err != nil {
		return nil, err
	}
	if err := s.checkPermission(ctx); err != nil {
		return nil, err
	}

	existing, err := s.Repo.GetAlarm(ctx, s.DB, alarmID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlarmNotFound
		}
		return nil, err
	}

	med, err := s.Medicines.GetMedicine(ctx, s.DB, in.MedicineID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMedicineNotFound
		}
		return nil, err
	}

	triggers, weekdays, err := s.expand(hour, minute, in)
	if err != nil {
		return nil, err
	}

	handles, err := s.Triggers.Reschedule(ctx, existing.Handles, triggers, reminderContent(alarmID, med.Name))
	if err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateAlarm(ctx, s.DB, alarmID, userID, med.ID, med.Name, hour, minute, weekdays, handles); err != nil {
		s.Triggers.Cancel(ctx, handles)
		return nil, err
	}
	return s.Repo.GetAlarm(ctx, s.DB, alarmID, userID)
}

// Delete cancels the alarm's live registrations and removes the row.
// Cancellation is best-effort and precedes the row delete.
func (s *AlarmService) Delete(ctx context.Context, userID, alarmID string) error {
	existing, err := s.Repo.GetAlarm(ctx, s.DB, alarmID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAlarmNotFound
		}
		return err
	}

	s.Triggers.Cancel(ctx, existing.Handles)

	if err := s.Repo.DeleteAlarm(ctx, s.DB, alarmID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAlarmNotFound
		}
		return err
	}
	return nil
}

// Get fetches a single alarm owned by the user.
func (s *AlarmService) Get(ctx context.Context, userID, alarmID string) (*repo.AlarmRecord, error) {
	rec, err := s.Repo.GetAlarm(ctx, s.DB, alarmID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlarmNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns all alarms for a user, oldest first.
func (s *AlarmService) List(ctx context.Context, userID string) ([]repo.AlarmRecord, error) {
	return s.Repo.ListAlarms(ctx, s.DB, userID)
}

// checkPermission consults the notification service before any scheduling
// work. A nil checker means permission handling is delegated elsewhere.
func (s *AlarmService) checkPermission(ctx context.Context) error {
	if s.Permissions == nil {
		return nil
	}
	ok, err := s.Permissions.RequestPermission(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

// expand runs the recurrence expansion for in, returning the triggers and the
// weekday set to persist (empty for one-off alarms).
func (s *AlarmService) expand(hour, minute int, in AlarmInput) ([]schedule.Trigger, []time.Weekday, error) {
	if in.OneOff {
		now := time.Now()
		if s.Now != nil {
			now = s.Now()
		}
		tr, err := schedule.NextOccurrence(now, hour, minute)
		if err != nil {
			return nil, nil, err
		}
		return []schedule.Trigger{tr}, nil, nil
	}
	triggers, err := schedule.Expand(hour, minute, in.Weekdays)
	if err != nil {
		return nil, nil, err
	}
	return triggers, in.Weekdays, nil
}

// reminderContent builds the delivery payload for an alarm's triggers.
func reminderContent(alarmID, medicineName string) notify.Content {
	return notify.Content{
		Title:        "Medicine Reminder",
		Body:         fmt.Sprintf("Time to take %s", medicineName),
		AlarmID:      alarmID,
		MedicineName: medicineName,
	}
}
