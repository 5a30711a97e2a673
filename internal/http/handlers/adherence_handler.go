// Adherence HTTP handlers.
//
// This file exposes the daily checklist, the intake history, and the derived
// summaries:
//   - GET  /checklist         (cabinet joined with today's taken state)
//   - POST /checklist/toggle  (flip a day's taken state)
//   - GET  /history           (audit log for a day, newest first)
//   - GET  /stats/week        (adherence ratio for the calendar week)
//   - GET  /stats/day         (taken/missed breakdown, caretaker view)
//
// All endpoints take an optional ?date=YYYY-MM-DD which defaults to today.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-medtrack-backend/internal/services"
	"github.com/tbourn/go-medtrack-backend/internal/utils"
)

//
// DTOs
//

// ToggleRequest is the JSON payload for flipping a checklist cell.
type ToggleRequest struct {
	// MedicineID references a medicine; it need not still exist.
	MedicineID string `json:"medicine_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// Date is the checklist day, "YYYY-MM-DD". Defaults to today.
	Date string `json:"date" example:"2026-08-28"`
}

// ToggleResponse reports the state the toggle produced.
type ToggleResponse struct {
	MedicineID string `json:"medicine_id"`
	Date       string `json:"date"`
	Taken      bool   `json:"taken"`
}

// ChecklistItemResponse is one checklist row.
type ChecklistItemResponse struct {
	MedicineID   string `json:"medicine_id"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Taken        bool   `json:"taken"`
}

// HistoryItemResponse is one history event.
type HistoryItemResponse struct {
	MedicineID   string    `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	Taken        bool      `json:"taken"`
	RecordedAt   time.Time `json:"recorded_at"`
}

//
// Helpers
//

// dateParam returns the "date" query param, defaulting to today, and reports
// whether it is well-formed.
func (h *Handlers) dateParam(c *gin.Context) (string, bool) {
	now := time.Now()
	if h.now != nil {
		now = h.now()
	}
	date := c.Query("date")
	if date == "" {
		return now.Format(services.DateLayout), true
	}
	if _, err := time.Parse(services.DateLayout, date); err != nil {
		return "", false
	}
	return date, true
}

//
// Handlers
//

// GetChecklist godoc
// @ID          getChecklist
// @Summary     Daily checklist
// @Description Returns the full cabinet joined with the taken state for the
// @Description given day. Medicines without an entry read as not taken.
// @Tags        Adherence
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"     example(user123)
// @Param       date       query   string  false "Day, YYYY-MM-DD (default today)"
//
// @Success     200  {array}   handlers.ChecklistItemResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /checklist [get]
func (h *Handlers) GetChecklist(c *gin.Context) {
	date, valid := h.dateParam(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
		return
	}
	items, err := h.adhSvc.ChecklistFor(c.Request.Context(), userID(c), date)
	if err != nil {
		failFromService(c, err)
		return
	}
	out := make([]ChecklistItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ChecklistItemResponse{
			MedicineID:   it.Medicine.ID,
			Name:         it.Medicine.Name,
			Dosage:       it.Medicine.Dosage,
			Instructions: it.Medicine.Instructions,
			Taken:        it.Taken,
		})
	}
	ok(c, http.StatusOK, out)
}

// ToggleChecklist godoc
// @ID          toggleChecklist
// @Summary     Flip a checklist cell
// @Description Flips the taken state for (date, medicine); a missing cell
// @Description reads as not taken, so the first toggle marks it taken. A
// @Description history event is appended on every toggle.
// @Tags        Adherence
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"  example(user123)
// @Param       body       body    handlers.ToggleRequest  true  "Toggle payload"
//
// @Success     200  {object}  handlers.ToggleResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /checklist/toggle [post]
func (h *Handlers) ToggleChecklist(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	date := req.Date
	if date == "" {
		now := time.Now()
		if h.now != nil {
			now = h.now()
		}
		date = now.Format(services.DateLayout)
	} else if _, err := time.Parse(services.DateLayout, date); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
		return
	}

	taken, err := h.adhSvc.Toggle(c.Request.Context(), req.MedicineID, date)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, ToggleResponse{MedicineID: req.MedicineID, Date: date, Taken: taken})
}

// GetHistory godoc
// @ID          getHistory
// @Summary     Intake history for a day
// @Description Returns the day's history events newest first. Events whose
// @Description medicine was deleted carry the name "Unknown Medicine".
// @Tags        Adherence
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"     example(user123)
// @Param       date       query   string  false "Day, YYYY-MM-DD (default today)"
// @Param       limit      query   int     false "Cap on returned events"        minimum(1) maximum(500)
//
// @Success     200  {array}   handlers.HistoryItemResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /history [get]
func (h *Handlers) GetHistory(c *gin.Context) {
	date, valid := h.dateParam(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
		return
	}
	limit := utils.ClampInt(utils.AtoiDefault(c.Query("limit"), 200), 1, 500)

	items, err := h.adhSvc.HistoryFor(c.Request.Context(), userID(c), date)
	if err != nil {
		failFromService(c, err)
		return
	}
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]HistoryItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, HistoryItemResponse{
			MedicineID:   it.Event.MedicineID,
			MedicineName: it.MedicineName,
			Taken:        it.Event.Taken,
			RecordedAt:   it.Event.RecordedAt,
		})
	}
	ok(c, http.StatusOK, out)
}

// GetWeekSummary godoc
// @ID          getWeekSummary
// @Summary     Weekly adherence summary
// @Description Returns taken/total for the calendar week (Sunday through
// @Description Saturday) containing the given date. Total is medicines times
// @Description seven days.
// @Tags        Adherence
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"     example(user123)
// @Param       date       query   string  false "Anchor day, YYYY-MM-DD (default today)"
//
// @Success     200  {object}  services.WeekSummary
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /stats/week [get]
func (h *Handlers) GetWeekSummary(c *gin.Context) {
	date, valid := h.dateParam(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
		return
	}
	anchor, _ := time.Parse(services.DateLayout, date)

	sum, err := h.adhSvc.WeekSummaryFor(c.Request.Context(), userID(c), anchor)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, sum)
}

// GetDayStats godoc
// @ID          getDayStats
// @Summary     Daily taken/missed breakdown
// @Description Returns the taken and missed event counts for a day together
// @Description with the size of the patient's cabinet as the total. Mounted
// @Description under the caretaker-gated route group.
// @Tags        Adherence
// @Produce     json
//
// @Param       X-User-ID    header  string  false "User ID (gateway header)"   example(user123)
// @Param       X-User-Roles header  string  false "Roles (must include caretaker)"
// @Param       date         query   string  false "Day, YYYY-MM-DD (default today)"
//
// @Success     200  {object}  services.DayStats
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Missing caretaker role"
// @Router      /stats/day [get]
func (h *Handlers) GetDayStats(c *gin.Context) {
	date, valid := h.dateParam(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
		return
	}
	stats, err := h.adhSvc.DayStatsFor(c.Request.Context(), userID(c), date)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}
