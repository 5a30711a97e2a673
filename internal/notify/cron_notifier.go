// In-process Notifier backed by robfig/cron. Weekly triggers become cron
// entries ("M H * * DOW"); one-off triggers become timers. Handles are UUIDs
// mapped to the underlying entry so they stay opaque to callers.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-medtrack-backend/internal/schedule"
)

// Sender delivers a reminder that has come due. Implementations decide the
// channel (log line, push gateway, webhook).
type Sender interface {
	Send(content Content)
}

// LogSender writes due reminders to the structured log. It is the default
// delivery channel for single-process deployments and for tests.
type LogSender struct {
	Log zerolog.Logger
}

// Send logs the reminder at info level.
func (s LogSender) Send(content Content) {
	s.Log.Info().
		Str("alarm_id", content.AlarmID).
		Str("medicine", content.MedicineName).
		Str("title", content.Title).
		Str("body", content.Body).
		Msg("reminder due")
}

// registration tracks one live trigger: either a cron entry (weekly) or a
// timer (one-off). Exactly one of entryID/timer is set.
type registration struct {
	entryID cron.EntryID
	timer   *time.Timer
}

// CronNotifier implements Notifier on top of an in-process cron scheduler.
//
// Permission is a process-level gate (Enabled): when false, RequestPermission
// reports denial and registration attempts fail. This mirrors the OS-level
// permission prompt of a mobile notification service without pretending to be
// one.
//
// The type is safe for concurrent use, although the engine invokes it
// serially.
type CronNotifier struct {
	cron    *cron.Cron
	sender  Sender
	log     zerolog.Logger
	enabled bool

	mu   sync.Mutex
	regs map[string]registration
}

// NewCronNotifier constructs a started CronNotifier delivering via sender.
func NewCronNotifier(sender Sender, enabled bool, log zerolog.Logger) *CronNotifier {
	n := &CronNotifier{
		cron:    cron.New(),
		sender:  sender,
		log:     log,
		enabled: enabled,
		regs:    make(map[string]registration),
	}
	n.cron.Start()
	return n
}

// RequestPermission reports the configured delivery gate.
func (n *CronNotifier) RequestPermission(ctx context.Context) (bool, error) {
	return n.enabled, nil
}

// Register installs tr and returns its opaque handle.
//
// Weekly triggers are translated to a five-field cron spec on the trigger's
// weekday. One-off triggers arm a timer for the concrete instant; a one-off
// whose instant is already in the past is rejected.
func (n *CronNotifier) Register(ctx context.Context, tr schedule.Trigger, content Content) (string, error) {
	if !n.enabled {
		return "", fmt.Errorf("%w: notifications disabled", ErrRegistrationFailed)
	}

	handle := uuid.NewString()
	deliver := func() { n.sender.Send(content) }

	if tr.Repeats {
		spec := fmt.Sprintf("%d %d * * %d", tr.Minute, tr.Hour, int(tr.Weekday))
		id, err := n.cron.AddFunc(spec, deliver)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
		}
		n.mu.Lock()
		n.regs[handle] = registration{entryID: id}
		n.mu.Unlock()
		return handle, nil
	}

	delay := time.Until(tr.At)
	if delay <= 0 {
		return "", fmt.Errorf("%w: one-off instant %v already passed", ErrRegistrationFailed, tr.At)
	}
	timer := time.AfterFunc(delay, func() {
		deliver()
		// A fired one-off is no longer live; drop its handle.
		n.mu.Lock()
		delete(n.regs, handle)
		n.mu.Unlock()
	})
	n.mu.Lock()
	n.regs[handle] = registration{timer: timer}
	n.mu.Unlock()
	return handle, nil
}

// Cancel removes the registration for handle. Unknown handles are ignored.
func (n *CronNotifier) Cancel(ctx context.Context, handle string) error {
	n.mu.Lock()
	reg, ok := n.regs[handle]
	if ok {
		delete(n.regs, handle)
	}
	n.mu.Unlock()
	if !ok {
		return nil
	}
	if reg.timer != nil {
		reg.timer.Stop()
	} else {
		n.cron.Remove(reg.entryID)
	}
	return nil
}

// Live reports the number of live registrations. Intended for tests and the
// health endpoint.
func (n *CronNotifier) Live() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.regs)
}

// Stop shuts the underlying cron scheduler down and stops all one-off timers.
// Registered handles become invalid afterwards.
func (n *CronNotifier) Stop() {
	n.cron.Stop()
	n.mu.Lock()
	defer n.mu.Unlock()
	for h, reg := range n.regs {
		if reg.timer != nil {
			reg.timer.Stop()
		}
		delete(n.regs, h)
	}
}
