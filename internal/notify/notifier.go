// Package notify defines the contract the alarm engine expects from the
// notification-delivery service, plus an in-process implementation backed by
// robfig/cron. The engine only ever asks for "register a trigger, get a handle
// back" and "cancel by handle"; how an alert actually reaches the user is the
// implementation's business.
package notify

import (
	"context"
	"errors"

	"github.com/tbourn/go-medtrack-backend/internal/schedule"
)

// ErrRegistrationFailed is returned by Register when the underlying delivery
// service rejects a trigger. Callers treat it as retryable at the operation
// level: the whole schedule attempt is rolled back and may be repeated.
var ErrRegistrationFailed = errors.New("trigger registration failed")

// Content is the user-visible payload attached to a registered trigger.
type Content struct {
	// Title of the delivered reminder.
	Title string
	// Body of the delivered reminder ("Time to take Aspirin").
	Body string
	// AlarmID and MedicineName travel with the delivery for correlation.
	AlarmID      string
	MedicineName string
}

// Notifier is the external notification service collaborator.
//
// Implementations must make Cancel idempotent: cancelling an unknown or
// already-cancelled handle is not an error. Register returns an opaque handle
// that uniquely identifies the live registration.
type Notifier interface {
	// RequestPermission reports whether the service is allowed to deliver
	// reminders at all. Scheduling proceeds only when it returns true.
	RequestPermission(ctx context.Context) (bool, error)

	// Register installs a single trigger and returns its handle. It fails
	// with an error wrapping ErrRegistrationFailed when the trigger cannot
	// be installed.
	Register(ctx context.Context, tr schedule.Trigger, content Content) (string, error)

	// Cancel removes the registration identified by handle. Unknown handles
	// are ignored.
	Cancel(ctx context.Context, handle string) error
}
