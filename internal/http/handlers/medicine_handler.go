// Medicine HTTP handlers.
//
// This file exposes REST endpoints for medicine resources:
//   - POST   /medicines        (create)
//   - GET    /medicines        (list)
//   - GET    /medicines/{id}   (fetch)
//   - PUT    /medicines/{id}   (update)
//   - DELETE /medicines/{id}   (delete, sweeps the medicine's alarms)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-medtrack-backend/internal/domain"
	"github.com/tbourn/go-medtrack-backend/internal/repo"
	"github.com/tbourn/go-medtrack-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// MedicineService defines cabinet operations consumed by HTTP handlers.
// Implementations must be safe for concurrent use and honor the provided
// context.
type MedicineService interface {
	Create(ctx context.Context, userID string, in services.MedicineInput) (*domain.Medicine, error)
	List(ctx context.Context, userID string) ([]domain.Medicine, error)
	Get(ctx context.Context, userID, id string) (*domain.Medicine, error)
	Update(ctx context.Context, userID, id string, in services.MedicineInput) (*domain.Medicine, error)
	Delete(ctx context.Context, userID, id string) error
}

// AlarmService defines alarm lifecycle operations consumed by HTTP handlers.
type AlarmService interface {
	Create(ctx context.Context, userID string, in services.AlarmInput) (*repo.AlarmRecord, error)
	Get(ctx context.Context, userID, alarmID string) (*repo.AlarmRecord, error)
	Update(ctx context.Context, userID, alarmID string, in services.AlarmInput) (*repo.AlarmRecord, error)
	Delete(ctx context.Context, userID, alarmID string) error
	List(ctx context.Context, userID string) ([]repo.AlarmRecord, error)
}

// AdherenceService defines checklist and history operations consumed by HTTP
// handlers.
type AdherenceService interface {
	Toggle(ctx context.Context, medicineID, date string) (bool, error)
	ChecklistFor(ctx context.Context, userID, date string) ([]services.ChecklistItem, error)
	HistoryFor(ctx context.Context, userID, date string) ([]services.HistoryItem, error)
	WeekSummaryFor(ctx context.Context, userID string, anchor time.Time) (services.WeekSummary, error)
	DayStatsFor(ctx context.Context, userID, date string) (services.DayStats, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for medicines, alarms, and adherence.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	medSvc   MedicineService
	alarmSvc AlarmService
	adhSvc   AdherenceService

	// now supplies "today" for date-defaulting query params; nil means
	// time.Now.
	now func() time.Time
}

// New constructs and returns a Handlers instance bound to the given services.
func New(medSvc MedicineService, alarmSvc AlarmService, adhSvc AdherenceService) *Handlers {
	return &Handlers{medSvc: medSvc, alarmSvc: alarmSvc, adhSvc: adhSvc}
}

// userID extracts the authenticated user id from Gin context (set by the
// identity middleware). If absent, it falls back to "X-User-ID" header
// (tests use it), and finally to "demo-user".
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// MedicineRequest is the JSON payload for creating or updating a medicine.
type MedicineRequest struct {
	// Name is the display name (required).
	Name string `json:"name" binding:"required,min=1,max=255" example:"Aspirin"`
	// Dosage is free text, e.g. "2 x 500mg".
	Dosage string `json:"dosage" example:"2 x 500mg"`
	// Instructions is free text, e.g. "after meals".
	Instructions string `json:"instructions" example:"after meals"`
}

//
// Handlers
//

// CreateMedicine godoc
// @ID          createMedicine
// @Summary     Add a medicine
// @Description Adds a medicine to the current user's cabinet.
// @Tags        Medicines
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"  example(user123)
// @Param       body       body    handlers.MedicineRequest  true  "Medicine payload"
//
// @Success     201  {object}  domain.Medicine
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /medicines [post]
func (h *Handlers) CreateMedicine(c *gin.Context) {
	var req MedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	m, err := h.medSvc.Create(c.Request.Context(), userID(c), services.MedicineInput{
		Name:         req.Name,
		Dosage:       req.Dosage,
		Instructions: req.Instructions,
	})
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusCreated, m)
}

// ListMedicines godoc
// @ID          listMedicines
// @Summary     List medicines
// @Description Returns the user's medicines, oldest first.
// @Tags        Medicines
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"  example(user123)
//
// @Success     200  {array}   domain.Medicine
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /medicines [get]
func (h *Handlers) ListMedicines(c *gin.Context) {
	list, err := h.medSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// GetMedicine godoc
// @ID          getMedicine
// @Summary     Fetch a medicine
// @Tags        Medicines
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"  example(user123)
// @Param       id         path    string  true  "Medicine ID (UUID)"        format(uuid)
//
// @Success     200  {object}  domain.Medicine
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Medicine not found"
// @Router      /medicines/{id} [get]
func (h *Handlers) GetMedicine(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "medicine id must be a UUID")
		return
	}
	m, err := h.medSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

// UpdateMedicine godoc
// @ID          updateMedicine
// @Summary     Update a medicine
// @Description Rewrites the medicine's name, dosage, and instructions.
// @Tags        Medicines
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"  example(user123)
// @Param       id         path    string  true  "Medicine ID (UUID)"        format(uuid)
// @Param       body       body    handlers.MedicineRequest  true  "Medicine payload"
//
// @Success     200  {object}  domain.Medicine
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Medicine not found"
// @Router      /medicines/{id} [put]
func (h *Handlers) UpdateMedicine(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "medicine id must be a UUID")
		return
	}
	var req MedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	m, err := h.medSvc.Update(c.Request.Context(), userID(c), id, services.MedicineInput{
		Name:         req.Name,
		Dosage:       req.Dosage,
		Instructions: req.Instructions,
	})
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

// DeleteMedicine godoc
// @ID          deleteMedicine
// @Summary     Delete a medicine
// @Description Removes the medicine and its alarms. Past checklist and
// @Description history entries are retained.
// @Tags        Medicines
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (gateway header)"  example(user123)
// @Param       id         path    string  true  "Medicine ID (UUID)"        format(uuid)
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Medicine not found"
// @Router      /medicines/{id} [delete]
func (h *Handlers) DeleteMedicine(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "medicine id must be a UUID")
		return
	}
	if err := h.medSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}
