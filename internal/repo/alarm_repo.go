// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Alarm model.
//
// Weekdays and trigger handles are stored as JSON columns; the helpers here
// encode and decode them so callers deal in []time.Weekday and []string.
package repo

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-medtrack-backend/internal/domain"
)

// AlarmRecord is the decoded form of a persisted alarm, with the JSON columns
// unpacked for the service layer.
type AlarmRecord struct {
	domain.Alarm
	WeekdaySet []time.Weekday
	Handles    []string
}

// decodeAlarm unpacks the JSON columns of a. Corrupt JSON yields the raw
// error; an absent handles column decodes to an empty list.
func decodeAlarm(a domain.Alarm) (AlarmRecord, error) {
	rec := AlarmRecord{Alarm: a}
	var days []int
	if err := json.Unmarshal(a.Weekdays, &days); err != nil {
		return rec, err
	}
	rec.WeekdaySet = make([]time.Weekday, 0, len(days))
	for _, d := range days {
		rec.WeekdaySet = append(rec.WeekdaySet, time.Weekday(d))
	}
	if len(a.TriggerHandles) > 0 {
		if err := json.Unmarshal(a.TriggerHandles, &rec.Handles); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// encodeWeekdays marshals a weekday set into its JSON column form.
func encodeWeekdays(weekdays []time.Weekday) (datatypes.JSON, error) {
	days := make([]int, 0, len(weekdays))
	for _, wd := range weekdays {
		days = append(days, int(wd))
	}
	b, err := json.Marshal(days)
	return datatypes.JSON(b), err
}

// encodeHandles marshals a handle list into its JSON column form. A nil list
// encodes as an empty array, never as JSON null.
func encodeHandles(handles []string) (datatypes.JSON, error) {
	if handles == nil {
		handles = []string{}
	}
	b, err := json.Marshal(handles)
	return datatypes.JSON(b), err
}

// CreateAlarm inserts a new Alarm row owned by userID. The ID is minted by
// the caller: AlarmService assigns it before scheduling so trigger content can
// reference the alarm ahead of the insert. The handle list is the set of live
// registrations obtained for this alarm (may be empty when scheduling is
// deferred).
func CreateAlarm(ctx context.Context, db *gorm.DB, id, userID, medicineID, medicineName string, hour, minute int, weekdays []time.Weekday, handles []string) (*AlarmRecord, error) {
	wd, err := encodeWeekdays(weekdays)
	if err != nil {
		return nil, err
	}
	hd, err := encodeHandles(handles)
	if err != nil {
		return nil, err
	}
	a := &domain.Alarm{
		ID:             id,
		UserID:         userID,
		MedicineID:     medicineID,
		MedicineName:   medicineName,
		Hour:           hour,
		Minute:         minute,
		Weekdays:       wd,
		TriggerHandles: hd,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	rec, err := decodeAlarm(*a)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetAlarm fetches a single alarm by ID and owner, decoding its JSON columns.
// Missing rows return ErrNotFound.
func GetAlarm(ctx context.Context, db *gorm.DB, id, userID string) (*AlarmRecord, error) {
	var a domain.Alarm
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	rec, err := decodeAlarm(a)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAlarms returns all alarms belonging to userID, oldest first.
func ListAlarms(ctx context.Context, db *gorm.DB, userID string) ([]AlarmRecord, error) {
	var rows []domain.Alarm
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]AlarmRecord, 0, len(rows))
	for _, a := range rows {
		rec, err := decodeAlarm(a)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ListAlarmsByMedicine returns all alarms referencing medicineID for userID.
// Used by the medicine-delete cascade.
func ListAlarmsByMedicine(ctx context.Context, db *gorm.DB, medicineID, userID string) ([]AlarmRecord, error) {
	var rows []domain.Alarm
	err := db.WithContext(ctx).
		Where("medicine_id = ? AND user_id = ?", medicineID, userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]AlarmRecord, 0, len(rows))
	for _, a := range rows {
		rec, err := decodeAlarm(a)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// UpdateAlarm rewrites the schedulable fields and handle list of an alarm
// owned by userID. If no rows are affected, it returns ErrNotFound.
func UpdateAlarm(ctx context.Context, db *gorm.DB, id, userID, medicineID, medicineName string, hour, minute int, weekdays []time.Weekday, handles []string) error {
	wd, err := encodeWeekdays(weekdays)
	if err != nil {
		return err
	}
	hd, err := encodeHandles(handles)
	if err != nil {
		return err
	}
	res := db.WithContext(ctx).
		Model(&domain.Alarm{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"medicine_id":     medicineID,
			"medicine_name":   medicineName,
			"hour":            hour,
			"minute":          minute,
			"weekdays":        wd,
			"trigger_handles": hd,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAlarm removes an alarm row owned by userID. Trigger cancellation is
// the service layer's job and must happen before this call.
func DeleteAlarm(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Alarm{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAlarmsByMedicine removes every alarm row referencing medicineID for
// userID, returning the number of rows removed.
func DeleteAlarmsByMedicine(ctx context.Context, db *gorm.DB, medicineID, userID string) (int64, error) {
	res := db.WithContext(ctx).
		Where("medicine_id = ? AND user_id = ?", medicineID, userID).
		Delete(&domain.Alarm{})
	return res.RowsAffected, res.Error
}
