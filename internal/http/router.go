// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → identity → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-medtrack-backend/internal/config"
	"github.com/tbourn/go-medtrack-backend/internal/domain"
	"github.com/tbourn/go-medtrack-backend/internal/http/handlers"
	"github.com/tbourn/go-medtrack-backend/internal/http/middleware"
	"github.com/tbourn/go-medtrack-backend/internal/notify"
	"github.com/tbourn/go-medtrack-backend/internal/repo"
	"github.com/tbourn/go-medtrack-backend/internal/services"
	"github.com/tbourn/go-medtrack-backend/internal/session"
)

// medicineRepoShim adapts the repository free functions to the
// services.MedicineRepo interface. This keeps services decoupled from the
// concrete repo package while reusing existing functions.
type medicineRepoShim struct{}

func (medicineRepoShim) CreateMedicine(ctx context.Context, db *gorm.DB, userID, name, dosage, instructions string) (*domain.Medicine, error) {
	return repo.CreateMedicine(ctx, db, userID, name, dosage, instructions)
}

func (medicineRepoShim) ListMedicines(ctx context.Context, db *gorm.DB, userID string) ([]domain.Medicine, error) {
	return repo.ListMedicines(ctx, db, userID)
}

func (medicineRepoShim) GetMedicine(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Medicine, error) {
	return repo.GetMedicine(ctx, db, id, userID)
}

func (medicineRepoShim) UpdateMedicine(ctx context.Context, db *gorm.DB, id, userID, name, dosage, instructions string) error {
	return repo.UpdateMedicine(ctx, db, id, userID, name, dosage, instructions)
}

func (medicineRepoShim) DeleteMedicine(ctx context.Context, db *gorm.DB, id, userID string) error {
	return repo.DeleteMedicine(ctx, db, id, userID)
}

// alarmRepoShim adapts the alarm repository free functions to the
// services.AlarmRepo and services.AlarmCascadeRepo interfaces.
type alarmRepoShim struct{}

func (alarmRepoShim) CreateAlarm(ctx context.Context, db *gorm.DB, id, userID, medicineID, medicineName string, hour, minute int, weekdays []time.Weekday, handles []string) (*repo.AlarmRecord, error) {
	return repo.CreateAlarm(ctx, db, id, userID, medicineID, medicineName, hour, minute, weekdays, handles)
}

func (alarmRepoShim) GetAlarm(ctx context.Context, db *gorm.DB, id, userID string) (*repo.AlarmRecord, error) {
	return repo.GetAlarm(ctx, db, id, userID)
}

func (alarmRepoShim) ListAlarms(ctx context.Context, db *gorm.DB, userID string) ([]repo.AlarmRecord, error) {
	return repo.ListAlarms(ctx, db, userID)
}

func (alarmRepoShim) UpdateAlarm(ctx context.Context, db *gorm.DB, id, userID, medicineID, medicineName string, hour, minute int, weekdays []time.Weekday, handles []string) error {
	return repo.UpdateAlarm(ctx, db, id, userID, medicineID, medicineName, hour, minute, weekdays, handles)
}

func (alarmRepoShim) DeleteAlarm(ctx context.Context, db *gorm.DB, id, userID string) error {
	return repo.DeleteAlarm(ctx, db, id, userID)
}

func (alarmRepoShim) ListAlarmsByMedicine(ctx context.Context, db *gorm.DB, medicineID, userID string) ([]repo.AlarmRecord, error) {
	return repo.ListAlarmsByMedicine(ctx, db, medicineID, userID)
}

func (alarmRepoShim) DeleteAlarmsByMedicine(ctx context.Context, db *gorm.DB, medicineID, userID string) (int64, error) {
	return repo.DeleteAlarmsByMedicine(ctx, db, medicineID, userID)
}

// Deps carries the injected dependencies for route registration.
type Deps struct {
	DB       *gorm.DB
	Notifier notify.Notifier
	Triggers services.TriggerLifecycle
	Provider session.Provider
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), identity
// resolution, rate limiting, CORS and security headers, health and metrics
// endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: resolve the caller so logs and rate limits can key on it
//  4. Logger: structured access logs
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Metrics
//  8. Rate limiter (per user/IP)
//  9. Gzip, CORS, and security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Resolve the caller identity
	provider := deps.Provider
	if provider == nil {
		provider = session.HeaderProvider{DefaultUser: cfg.DefaultUser}
	}
	r.Use(middleware.Identity(provider))

	// 4) Structured access logging
	r.Use(middleware.Logger())

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (256 KiB; payloads here are tiny)
	r.Use(limitBody(256 << 10))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) Compression, CORS posture, security headers
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(corsMiddlewares(cfg)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/notifier
	medSvc := &services.MedicineService{
		DB:       deps.DB,
		Repo:     medicineRepoShim{},
		Alarms:   alarmRepoShim{},
		Triggers: deps.Triggers,
	}
	alarmSvc := &services.AlarmService{
		DB:          deps.DB,
		Repo:        alarmRepoShim{},
		Medicines:   medicineRepoShim{},
		Triggers:    deps.Triggers,
		Permissions: deps.Notifier,
	}
	adhSvc := &services.AdherenceService{DB: deps.DB}

	h := handlers.New(medSvc, alarmSvc, adhSvc)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Medicines
		api.POST("/medicines", h.CreateMedicine)
		api.GET("/medicines", h.ListMedicines)
		api.GET("/medicines/:id", h.GetMedicine)
		api.PUT("/medicines/:id", h.UpdateMedicine)
		api.DELETE("/medicines/:id", h.DeleteMedicine)

		// Alarms
		api.POST("/alarms", h.CreateAlarm)
		api.GET("/alarms", h.ListAlarms)
		api.GET("/alarms/:id", h.GetAlarm)
		api.PUT("/alarms/:id", h.UpdateAlarm)
		api.DELETE("/alarms/:id", h.DeleteAlarm)

		// Adherence
		api.GET("/checklist", h.GetChecklist)
		api.POST("/checklist/toggle", h.ToggleChecklist)
		api.GET("/history", h.GetHistory)
		api.GET("/stats/week", h.GetWeekSummary)

		// Caretaker views
		care := api.Group("", requireRole(session.RoleCaretaker))
		care.GET("/stats/day", h.GetDayStats)
	}
}

// requireRole rejects requests whose identity lacks the given role.
func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !middleware.IdentityFrom(c).HasRole(role) {
			handlers.Fail(c, http.StatusForbidden, handlers.ErrCodeForbidden, "missing role: "+role)
			return
		}
		c.Next()
	}
}

// corsMiddlewares builds the CORS chain: allow-all when no origins are
// configured, otherwise an allowlist that echoes the matching Origin.
func corsMiddlewares(cfg config.Config) []gin.HandlerFunc {
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		session.HeaderUserID, session.HeaderRoles,
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps
		// tests and simple health checks).
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowHeaders:     allowHeaders,
				ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
	for _, o := range cfg.CORS.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints using http.MaxBytesReader. Requests exceeding the cap cause
// downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
