// Alarm HTTP handlers.
//
// This file exposes REST endpoints for alarm resources:
//   - POST   /alarms        (create and schedule)
//   - GET    /alarms        (list)
//   - GET    /alarms/{id}   (fetch)
//   - PUT    /alarms/{id}   (reschedule)
//   - DELETE /alarms/{id}   (cancel and delete)
//
// The JSON shape keeps the mobile-friendly form: a strict "HH:MM" time and a
// weekday array with 0=Sunday..6=Saturday.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-medtrack-backend/internal/repo"
	"github.com/tbourn/go-medtrack-backend/internal/services"
)

//
// DTOs
//

// AlarmRequest is the JSON payload for creating or updating an alarm.
type AlarmRequest struct {
	// MedicineID references a medicine in the user's cabinet.
	MedicineID string `json:"medicine_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// Time is the reminder time of day, strict 24h "HH:MM".
	Time string `json:"time" binding:"required" example:"08:30"`
	// Weekdays are the repeat days, 0=Sunday..6=Saturday. Required unless
	// one_off is true.
	Weekdays []int `json:"weekdays" example:"1,4"`
	// OneOff requests a single reminder at the next matching instant.
	OneOff bool `json:"one_off"`
}

// AlarmResponse is the wire form of an alarm.
type AlarmResponse struct {
	ID           string    `json:"id"`
	MedicineID   string    `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	Time         string    `json:"time" example:"08:30"`
	Weekdays     []int     `json:"weekdays"`
	CreatedAt    time.Time `json:"created_at"`
}

// toAlarmResponse converts a decoded alarm record to its wire form.
func toAlarmResponse(rec *repo.AlarmRecord) AlarmResponse {
	days := make([]int, 0, len(rec.WeekdaySet))
	for _, wd := range rec.WeekdaySet {
		days = append(days, int(wd))
	}
	return AlarmResponse{
		ID:           rec.ID,
		MedicineID:   rec.MedicineID,
		MedicineName: rec.MedicineName,
		Time:         fmt.Sprintf("%02d:%02d", rec.Hour, rec.Minute),
		Weekdays:     days,
		CreatedAt:    rec.CreatedAt,
	}
}

// toAlarmInput converts the request DTO into the service input.
func toAlarmInput(req AlarmRequest) services.AlarmInput {
	days := make([]time.Weekday, 0, len(req.Weekdays))
	for _, d := range req.Weekdays {
		days = append(days, time.Weekday(d))
	}
	return services.AlarmInput{
		MedicineID: req.MedicineID,
		Time:       req.Time,
		Weekdays:   days,
		OneOff:     req.OneOff,
	}
}

//
// Handlers
//

// CreateAlarm godoc
// @ID          createAlarm
// @Summary     Create an alarm
// @Description Expands the recurrence rule, registers every trigger with the
// @Description notification service, and persists the alarm. The alarm is
// @Description only saved when every trigger registered.
// @Tags        Alarms
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"  example(user123)
// @Param       body       body    handlers.AlarmRequest  true  "Alarm payload"
//
// @Success     201  {object}  handlers.AlarmResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Notification permission denied"
// @Failure     404  {object}  handlers.ErrorResponse  "Medicine not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Scheduling failed"
// @Router      /alarms [post]
func (h *Handlers) CreateAlarm(c *gin.Context) {
	var req AlarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	rec, err := h.alarmSvc.Create(c.Request.Context(), userID(c), toAlarmInput(req))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusCreated, toAlarmResponse(rec))
}

// ListAlarms godoc
// @ID          listAlarms
// @Summary     List alarms
// @Tags        Alarms
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"  example(user123)
//
// @Success     200  {array}   handlers.AlarmResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /alarms [get]
func (h *Handlers) ListAlarms(c *gin.Context) {
	recs, err := h.alarmSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	out := make([]AlarmResponse, 0, len(recs))
	for i := range recs {
		out = append(out, toAlarmResponse(&recs[i]))
	}
	ok(c, http.StatusOK, out)
}

// GetAlarm godoc
// @ID          getAlarm
// @Summary     Fetch an alarm
// @Tags        Alarms
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"  example(user123)
// @Param       id         path    string  true  "Alarm ID (UUID)"           format(uuid)
//
// @Success     200  {object}  handlers.AlarmResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Alarm not found"
// @Router      /alarms/{id} [get]
func (h *Handlers) GetAlarm(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "alarm id must be a UUID")
		return
	}
	rec, err := h.alarmSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, toAlarmResponse(rec))
}

// UpdateAlarm godoc
// @ID          updateAlarm
// @Summary     Reschedule an alarm
// @Description Cancels the alarm's current triggers and registers a new set
// @Description from the updated rule.
// @Tags        Alarms
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"  example(user123)
// @Param       id         path    string  true  "Alarm ID (UUID)"           format(uuid)
// @Param       body       body    handlers.AlarmRequest  true  "Alarm payload"
//
// @Success     200  {object}  handlers.AlarmResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Alarm or medicine not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Scheduling failed"
// @Router      /alarms/{id} [put]
func (h *Handlers) UpdateAlarm(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "alarm id must be a UUID")
		return
	}
	var req AlarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	rec, err := h.alarmSvc.Update(c.Request.Context(), userID(c), id, toAlarmInput(req))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, toAlarmResponse(rec))
}

// DeleteAlarm godoc
// @ID          deleteAlarm
// @Summary     Delete an alarm
// @Description Cancels the alarm's live triggers and removes it.
// @Tags        Alarms
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"  example(user123)
// @Param       id         path    string  true  "Alarm ID (UUID)"           format(uuid)
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Alarm not found"
// @Router      /alarms/{id} [delete]
func (h *Handlers) DeleteAlarm(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "alarm id must be a UUID")
		return
	}
	if err := h.alarmSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}
