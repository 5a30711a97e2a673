// Package services defines the business logic for medicines, alarms, and the
// adherence ledger. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer. Validation errors from internal/schedule (ErrInvalidTime,
// ErrNoRepeatDays) and the scheduling failure from internal/scheduler
// (ErrSchedulingFailed) pass through unchanged so handlers can match them with
// errors.Is.
package services

import "errors"

var (
	// ErrMedicineNotFound indicates that the requested medicine does not exist
	// or is not accessible to the current user.
	ErrMedicineNotFound = errors.New("medicine not found")

	// ErrAlarmNotFound indicates that the requested alarm does not exist or is
	// not accessible to the current user.
	ErrAlarmNotFound = errors.New("alarm not found")

	// ErrNameRequired is returned when a medicine is created or updated
	// without a display name.
	ErrNameRequired = errors.New("medicine name is required")

	// ErrPermissionDenied is returned when the notification service refuses
	// permission to deliver reminders, so no alarm can be scheduled.
	ErrPermissionDenied = errors.New("notification permission denied")
)
