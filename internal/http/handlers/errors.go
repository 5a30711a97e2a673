// Package handlers defines HTTP-layer error codes used across all API
// endpoints, plus the translation from service-layer errors to HTTP
// responses.
//
// Codes are lowercase snake_case and stable; clients branch on them for
// programmatic error handling. Generic codes mirror HTTP status semantics;
// domain-specific ones (scheduling_failed, permission_denied) convey
// business failures a status alone cannot.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-medtrack-backend/internal/schedule"
	"github.com/tbourn/go-medtrack-backend/internal/scheduler"
	"github.com/tbourn/go-medtrack-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeSchedulingFailed = "scheduling_failed"
	ErrCodePermission       = "permission_denied"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// failFromService maps a service-layer error onto the HTTP envelope.
//
// Validation errors become 400s, missing resources 404s, a refused
// notification permission 403, and a trigger registration failure 502 since
// the upstream notification service is the failing dependency. Everything
// else is a 500.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMedicineNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "medicine not found")
	case errors.Is(err, services.ErrAlarmNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "alarm not found")
	case errors.Is(err, services.ErrNameRequired):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "medicine name is required")
	case errors.Is(err, schedule.ErrInvalidTime):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "time must be HH:MM in 24h format")
	case errors.Is(err, schedule.ErrNoRepeatDays):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "at least one weekday is required")
	case errors.Is(err, services.ErrPermissionDenied):
		fail(c, http.StatusForbidden, ErrCodePermission, "notification permission denied")
	case errors.Is(err, scheduler.ErrSchedulingFailed):
		fail(c, http.StatusBadGateway, ErrCodeSchedulingFailed, "could not schedule alarm triggers")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
