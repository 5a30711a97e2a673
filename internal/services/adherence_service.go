package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-medtrack-backend/internal/domain"
	"github.com/tbourn/go-medtrack-backend/internal/repo"
)

// UnknownMedicineName is shown for history events whose medicine has been
// deleted. The ledger keeps those events on purpose.
const UnknownMedicineName = "Unknown Medicine"

// DateLayout is the calendar-day key format used across the ledger.
const DateLayout = "2006-01-02"

// AdherenceService maintains the daily checklist and the append-only intake
// history, and derives summaries from both.
//
// Unlike the other services it calls the repo package directly: Toggle needs
// its two writes inside one transaction, and injecting the transaction-bound
// handle through an interface buys nothing here.
type AdherenceService struct {
	DB *gorm.DB

	// Now supplies timestamps for history events; defaults to time.Now.
	Now func() time.Time
}

// ChecklistItem is one row of a day's checklist: a medicine joined with its
// taken state for that date.
type ChecklistItem struct {
	Medicine domain.Medicine
	Taken    bool
}

// HistoryItem is one history event resolved against the current cabinet.
type HistoryItem struct {
	Event        domain.HistoryEvent
	MedicineName string
}

// WeekSummary is the adherence ratio over a calendar week.
type WeekSummary struct {
	Taken int64 `json:"taken"`
	Total int64 `json:"total"`
}

// DayStats is the taken/missed event breakdown for one calendar day. Total is
// the size of the user's cabinet, not the event count.
type DayStats struct {
	Taken  int64 `json:"taken"`
	Missed int64 `json:"missed"`
	Total  int64 `json:"total"`
}

func (s *AdherenceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Toggle flips the checklist cell for (date, medicine): an absent entry reads
// as not taken, so the first toggle marks the medicine taken. The new state is
// upserted and a history event recording it is appended, both in one
// transaction: the current state and the audit trail move together or not at
// all. The new state is returned.
//
// The medicine need not reference a live row. Cells for deleted medicines stay
// togglable; their history renders as UnknownMedicineName. Repeated toggles
// keep appending; history never collapses.
func (s *AdherenceService) Toggle(ctx context.Context, medicineID, date string) (bool, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return false, err
	}

	recordedAt := s.now().UTC()
	var newState bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := checklistState(ctx, tx, date, medicineID)
		if err != nil {
			return err
		}
		newState = !current
		if err := repo.UpsertChecklistEntry(ctx, tx, date, medicineID, newState); err != nil {
			return err
		}
		_, err = repo.AppendHistoryEvent(ctx, tx, medicineID, date, newState, recordedAt)
		return err
	})
	return newState, err
}

// StatusFor reports the checklist state for (date, medicine). A missing entry
// reads as not taken. Pure read, no side effects.
func (s *AdherenceService) StatusFor(ctx context.Context, date, medicineID string) (bool, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return false, err
	}
	return checklistState(ctx, s.DB, date, medicineID)
}

func checklistState(ctx context.Context, db *gorm.DB, date, medicineID string) (bool, error) {
	entry, err := repo.GetChecklistEntry(ctx, db, date, medicineID)
	if err != nil {
		if repo.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return entry.Taken, nil
}

// ChecklistFor returns the user's full cabinet joined with the checklist
// state for date. Medicines with no entry for the day read as not taken.
func (s *AdherenceService) ChecklistFor(ctx context.Context, userID, date string) ([]ChecklistItem, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, err
	}
	meds, err := repo.ListMedicines(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ChecklistItem, 0, len(meds))
	for _, m := range meds {
		taken, err := checklistState(ctx, s.DB, date, m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ChecklistItem{Medicine: m, Taken: taken})
	}
	return out, nil
}

// HistoryFor returns the day's history events newest first, with medicine
// names resolved against the current cabinet. Events for deleted medicines
// survive and carry UnknownMedicineName.
func (s *AdherenceService) HistoryFor(ctx context.Context, userID, date string) ([]HistoryItem, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, err
	}
	events, err := repo.ListHistoryByDate(ctx, s.DB, date)
	if err != nil {
		return nil, err
	}
	meds, err := repo.ListMedicines(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(meds))
	for _, m := range meds {
		names[m.ID] = m.Name
	}

	out := make([]HistoryItem, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		name, ok := names[ev.MedicineID]
		if !ok {
			name = UnknownMedicineName
		}
		out = append(out, HistoryItem{Event: ev, MedicineName: name})
	}
	return out, nil
}

// WeekSummaryFor computes the adherence ratio for the calendar week containing
// anchor. Weeks start on Sunday. Total is the medicine count times seven days,
// regardless of when medicines were added; a user with no medicines gets
// {0, 0}.
func (s *AdherenceService) WeekSummaryFor(ctx context.Context, userID string, anchor time.Time) (WeekSummary, error) {
	meds, err := repo.ListMedicines(ctx, s.DB, userID)
	if err != nil {
		return WeekSummary{}, err
	}
	if len(meds) == 0 {
		return WeekSummary{}, nil
	}

	weekStart := anchor.AddDate(0, 0, -int(anchor.Weekday()))
	from := weekStart.Format(DateLayout)
	to := weekStart.AddDate(0, 0, 6).Format(DateLayout)

	ids := make([]string, 0, len(meds))
	for _, m := range meds {
		ids = append(ids, m.ID)
	}
	taken, err := repo.CountTakenInRange(ctx, s.DB, ids, from, to)
	if err != nil {
		return WeekSummary{}, err
	}
	return WeekSummary{Taken: taken, Total: int64(len(meds)) * 7}, nil
}

// DayStatsFor breaks a day's history events down into taken and missed, and
// reports the user's live medicine count as the total. A medicine with no
// event that day shows up in the total but in neither event count.
func (s *AdherenceService) DayStatsFor(ctx context.Context, userID, date string) (DayStats, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return DayStats{}, err
	}
	taken, err := repo.CountHistoryByDate(ctx, s.DB, date, true)
	if err != nil {
		return DayStats{}, err
	}
	missed, err := repo.CountHistoryByDate(ctx, s.DB, date, false)
	if err != nil {
		return DayStats{}, err
	}
	total, err := repo.CountMedicines(ctx, s.DB, userID)
	if err != nil {
		return DayStats{}, err
	}
	return DayStats{Taken: taken, Missed: missed, Total: total}, nil
}
