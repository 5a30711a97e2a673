// Package domain defines the persistence models for medicines, alarms,
// checklist entries, and history events. These types are mapped with GORM
// and form the core data layer of the medicine-reminder application.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Medicine represents a tracked medicine owned by a patient account.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the owning patient; indexed for retrieval.
//   - Name: display name shown in lists and reminders.
//   - Dosage: optional free-text dosage ("2 x 500mg").
//   - Instructions: optional free-text intake instructions.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// Deleting a Medicine cascades to its Alarms (rows and live trigger
// registrations). Checklist and history rows referencing the medicine are
// intentionally retained; see AdherenceService.
type Medicine struct {
	ID           string    `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID       string    `json:"user_id"      gorm:"type:varchar(64);not null;index:idx_user_medicines"`
	Name         string    `json:"name"         gorm:"type:varchar(255);not null"`
	Dosage       string    `json:"dosage,omitempty"       gorm:"type:varchar(255)"`
	Instructions string    `json:"instructions,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Medicine.
func (Medicine) TableName() string { return "medicines" }

// Alarm represents a recurring medicine reminder: a time of day plus the set
// of weekdays it repeats on.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: identifier of the owning patient.
//   - MedicineID: foreign key to the reminded medicine (indexed).
//   - MedicineName: denormalized snapshot of the medicine name, refreshed at
//     alarm-save time rather than kept live.
//   - Hour / Minute: 24h time of day the reminder fires.
//   - Weekdays: JSON array of weekday numbers (0=Sunday..6=Saturday). An alarm
//     must repeat on at least one weekday.
//   - TriggerHandles: JSON array of handles returned by the notification
//     service, one per live trigger registration. Empty until the alarm has
//     been scheduled successfully.
//
// Invariant: every entry in TriggerHandles corresponds to exactly one live
// registration, and no alarm holds two live registrations for the same
// weekday. The handle list is written only after scheduling succeeds as a
// whole, so it is all-or-nothing consistent with the notification service.
type Alarm struct {
	ID             string         `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID         string         `json:"user_id"       gorm:"type:varchar(64);not null;index:idx_user_alarms"`
	MedicineID     string         `json:"medicine_id"   gorm:"type:char(36);not null;index:idx_medicine_alarms"`
	MedicineName   string         `json:"medicine_name" gorm:"type:varchar(255);not null"`
	Hour           int            `json:"hour"          gorm:"not null;check:hour >= 0 AND hour <= 23"`
	Minute         int            `json:"minute"        gorm:"not null;check:minute >= 0 AND minute <= 59"`
	Weekdays       datatypes.JSON `json:"weekdays"      gorm:"not null"`
	TriggerHandles datatypes.JSON `json:"trigger_handles,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Alarm.
func (Alarm) TableName() string { return "alarms" }

// ChecklistEntry is the current-state projection of daily adherence: one
// boolean per (date, medicine) pair. At most one row exists per pair; toggles
// upsert it (last write wins). Dates are calendar days in "YYYY-MM-DD" form.
type ChecklistEntry struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Date       string    `json:"date"        gorm:"type:char(10);not null;uniqueIndex:ux_checklist_date_medicine,priority:1"`
	MedicineID string    `json:"medicine_id" gorm:"type:char(36);not null;uniqueIndex:ux_checklist_date_medicine,priority:2"`
	Taken      bool      `json:"taken"       gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for ChecklistEntry.
func (ChecklistEntry) TableName() string { return "checklist_entries" }

// HistoryEvent is one record in the append-only adherence audit log. Every
// checklist toggle appends a new event carrying the resulting state, even when
// it flips a day back and forth. Events are never mutated and survive deletion
// of the medicine they refer to.
//
// Date is the calendar day the event concerns ("YYYY-MM-DD"); RecordedAt is
// the wall-clock instant the toggle happened.
type HistoryEvent struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	MedicineID string    `json:"medicine_id" gorm:"type:char(36);not null;index:idx_history_medicine"`
	Date       string    `json:"date"        gorm:"type:char(10);not null;index:idx_history_date"`
	Taken      bool      `json:"taken"       gorm:"not null"`
	RecordedAt time.Time `json:"recorded_at" gorm:"not null"`
}

// TableName returns the database table name for HistoryEvent.
func (HistoryEvent) TableName() string { return "history_events" }
