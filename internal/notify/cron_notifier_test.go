package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-medtrack-backend/internal/schedule"
)

type captureSender struct {
	sent []Content
}

func (s *captureSender) Send(c Content) { s.sent = append(s.sent, c) }

func newTestNotifier(t *testing.T, enabled bool) (*CronNotifier, *captureSender) {
	t.Helper()
	sender := &captureSender{}
	n := NewCronNotifier(sender, enabled, zerolog.Nop())
	t.Cleanup(n.Stop)
	return n, sender
}

func TestRequestPermission(t *testing.T) {
	ctx := context.Background()

	n, _ := newTestNotifier(t, true)
	if ok, err := n.RequestPermission(ctx); err != nil || !ok {
		t.Fatalf("RequestPermission = (%v, %v); want (true, nil)", ok, err)
	}

	d, _ := newTestNotifier(t, false)
	if ok, err := d.RequestPermission(ctx); err != nil || ok {
		t.Fatalf("RequestPermission = (%v, %v); want (false, nil)", ok, err)
	}
}

func TestRegister_WeeklyTrigger(t *testing.T) {
	ctx := context.Background()
	n, _ := newTestNotifier(t, true)

	h, err := n.Register(ctx, schedule.Trigger{
		Weekday: time.Monday, Hour: 8, Minute: 30, Repeats: true,
	}, Content{AlarmID: "a1", MedicineName: "Aspirin"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if h == "" {
		t.Fatal("Register returned empty handle")
	}
	if n.Live() != 1 {
		t.Fatalf("Live = %d; want 1", n.Live())
	}
}

func TestRegister_DisabledFails(t *testing.T) {
	ctx := context.Background()
	n, _ := newTestNotifier(t, false)

	_, err := n.Register(ctx, schedule.Trigger{Weekday: time.Monday, Hour: 8, Repeats: true}, Content{})
	if !errors.Is(err, ErrRegistrationFailed) {
		t.Fatalf("Register with notifications disabled = %v; want ErrRegistrationFailed", err)
	}
}

func TestRegister_OneOffInPastFails(t *testing.T) {
	ctx := context.Background()
	n, _ := newTestNotifier(t, true)

	past := schedule.Trigger{At: time.Now().Add(-time.Minute), Repeats: false}
	if _, err := n.Register(ctx, past, Content{}); !errors.Is(err, ErrRegistrationFailed) {
		t.Fatalf("Register(past one-off) = %v; want ErrRegistrationFailed", err)
	}
}

func TestRegister_OneOffFires(t *testing.T) {
	ctx := context.Background()
	n, sender := newTestNotifier(t, true)

	tr := schedule.Trigger{At: time.Now().Add(20 * time.Millisecond), Repeats: false}
	if _, err := n.Register(ctx, tr, Content{AlarmID: "a1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(sender.sent) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(sender.sent) != 1 || sender.sent[0].AlarmID != "a1" {
		t.Fatalf("expected one delivery for a1, got %v", sender.sent)
	}
	if n.Live() != 0 {
		t.Fatalf("fired one-off should drop its handle; Live = %d", n.Live())
	}
}

func TestCancel_Idempotent(t *testing.T) {
	ctx := context.Background()
	n, _ := newTestNotifier(t, true)

	h, err := n.Register(ctx, schedule.Trigger{Weekday: time.Friday, Hour: 9, Repeats: true}, Content{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := n.Cancel(ctx, h); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if n.Live() != 0 {
		t.Fatalf("Live = %d after cancel; want 0", n.Live())
	}

	// Cancelling again, or cancelling garbage, must not fail.
	if err := n.Cancel(ctx, h); err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if err := n.Cancel(ctx, "not-a-handle"); err != nil {
		t.Fatalf("Cancel(unknown): %v", err)
	}
}
