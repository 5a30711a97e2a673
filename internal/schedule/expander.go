// Package schedule implements the recurrence expansion at the heart of the
// alarm engine: turning a user-defined time-of-day plus a set of weekdays into
// concrete trigger descriptors ready to hand to the notification service.
//
// Everything in this package is a pure function over its inputs. State,
// persistence, and the notification service itself live elsewhere
// (internal/scheduler, internal/notify).
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors returned by the expansion functions. Callers are expected
// to reject malformed form input before reaching this package; these exist so
// out-of-range values can never produce a trigger regardless of the caller.
var (
	// ErrInvalidTime is returned when an hour/minute pair is outside 0..23 /
	// 0..59, or when a textual time does not parse as strict "HH:MM".
	ErrInvalidTime = errors.New("invalid time of day")

	// ErrNoRepeatDays is returned when a weekly expansion is requested with an
	// empty weekday set. An alarm must fire at least weekly on some day.
	ErrNoRepeatDays = errors.New("alarm has no repeat days")
)

// Trigger describes a single registration request for the notification
// service: either a weekly recurrence (Repeats true, Weekday/Hour/Minute set)
// or a one-off instant (Repeats false, At set).
type Trigger struct {
	// Weekday the trigger fires on, for recurring triggers.
	Weekday time.Weekday
	// Hour and Minute of day (24h), for recurring triggers.
	Hour   int
	Minute int
	// At is the concrete firing instant for one-off triggers.
	At time.Time
	// Repeats distinguishes the weekly path from the one-off path.
	Repeats bool
}

// ParseTimeOfDay parses a strict two-digit "HH:MM" string into an hour and
// minute. Any other shape (wrong digit count, missing colon, out-of-range
// values) fails with ErrInvalidTime.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	if err := validate(hour, minute); err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}

// Expand translates a time-of-day and a non-empty weekday set into one
// recurring trigger per weekday, preserving the input order. Weekdays are a
// set by contract, so no deduplication is performed.
//
// An empty weekday set fails with ErrNoRepeatDays; out-of-range hour or minute
// fails with ErrInvalidTime even though callers validate first.
func Expand(hour, minute int, weekdays []time.Weekday) ([]Trigger, error) {
	if err := validate(hour, minute); err != nil {
		return nil, err
	}
	if len(weekdays) == 0 {
		return nil, ErrNoRepeatDays
	}
	out := make([]Trigger, 0, len(weekdays))
	for _, wd := range weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, fmt.Errorf("%w: weekday %d", ErrInvalidTime, wd)
		}
		out = append(out, Trigger{
			Weekday: wd,
			Hour:    hour,
			Minute:  minute,
			Repeats: true,
		})
	}
	return out, nil
}

// NextOccurrence computes the single one-off trigger for an alarm without
// repeat days: the first wall-clock instant at or after now whose time of day
// matches hour:minute. When that time has already passed today, the instant
// rolls to the next calendar day.
//
// This is a distinct code path from Expand, not a degenerate case of it: the
// result carries a concrete instant instead of a weekday recurrence.
func NextOccurrence(now time.Time, hour, minute int) (Trigger, error) {
	if err := validate(hour, minute); err != nil {
		return Trigger{}, err
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return Trigger{At: at, Repeats: false}, nil
}

// validate checks the numeric time-of-day ranges shared by all entry points.
func validate(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}
	return nil
}
