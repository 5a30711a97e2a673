// Package scheduler manages the lifecycle of an alarm's trigger registrations
// against the notification service: scheduling a fresh set, replacing an old
// set on edit, and cancelling on delete.
//
// The critical property lives here: an alarm's handle list is all-or-nothing
// consistent with the notification service. Either every trigger registers and
// the full handle list is returned, or nothing stays registered and the
// operation fails.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-medtrack-backend/internal/notify"
	"github.com/tbourn/go-medtrack-backend/internal/schedule"
)

// ErrSchedulingFailed is returned when any individual trigger registration
// fails. All handles obtained before the failure have been cancelled again by
// the time the caller sees this error.
var ErrSchedulingFailed = errors.New("alarm scheduling failed")

// Lifecycle owns the 1:N relationship between an alarm and its live trigger
// registrations.
type Lifecycle struct {
	Notifier notify.Notifier
	Log      zerolog.Logger
}

// New constructs a Lifecycle over the given notifier.
func New(n notify.Notifier, log zerolog.Logger) *Lifecycle {
	return &Lifecycle{Notifier: n, Log: log}
}

// Schedule registers every trigger with the notification service and returns
// the collected handles, one per trigger in order.
//
// If any registration fails, the handles obtained so far are cancelled and the
// whole operation fails with an error wrapping ErrSchedulingFailed, so a
// partially-scheduled alarm never reaches the persisted record.
func (l *Lifecycle) Schedule(ctx context.Context, triggers []schedule.Trigger, content notify.Content) ([]string, error) {
	handles := make([]string, 0, len(triggers))
	for i, tr := range triggers {
		h, err := l.Notifier.Register(ctx, tr, content)
		observe(registrations, err)
		if err != nil {
			l.rollback(ctx, handles)
			return nil, fmt.Errorf("%w: trigger %d of %d: %v", ErrSchedulingFailed, i+1, len(triggers), err)
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// Reschedule replaces an alarm's registrations: it cancels oldHandles
// best-effort, then schedules the new trigger set.
//
// Cancellation failures are logged and never block the new schedule; a stale
// handle may linger in the notification service but is no longer referenced
// by any alarm. The leak is bounded by alarm edit frequency.
func (l *Lifecycle) Reschedule(ctx context.Context, oldHandles []string, triggers []schedule.Trigger, content notify.Content) ([]string, error) {
	l.Cancel(ctx, oldHandles)
	return l.Schedule(ctx, triggers, content)
}

// Cancel cancels every handle. It is idempotent and never fails the caller:
// unknown or already-cancelled handles are tolerated and individual failures
// are only logged.
func (l *Lifecycle) Cancel(ctx context.Context, handles []string) {
	for _, h := range handles {
		err := l.Notifier.Cancel(ctx, h)
		observe(cancellations, err)
		if err != nil {
			l.Log.Warn().Str("handle", h).Err(err).Msg("trigger cancellation failed")
		}
	}
}

// rollback undoes the partial registrations of a failed Schedule.
func (l *Lifecycle) rollback(ctx context.Context, handles []string) {
	for _, h := range handles {
		if err := l.Notifier.Cancel(ctx, h); err != nil {
			l.Log.Warn().Str("handle", h).Err(err).Msg("rollback cancellation failed")
		}
	}
}
