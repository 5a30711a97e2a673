package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-medtrack-backend/internal/domain"
	"github.com/tbourn/go-medtrack-backend/internal/repo"
	"github.com/tbourn/go-medtrack-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

//
// Fakes
//

type fakeMedSvc struct {
	created   *domain.Medicine
	createErr error
	list      []domain.Medicine
	listErr   error
	got       *domain.Medicine
	getErr    error
	updateErr error
	deleteErr error

	lastUserID string
	lastInput  services.MedicineInput
}

func (f *fakeMedSvc) Create(ctx context.Context, userID string, in services.MedicineInput) (*domain.Medicine, error) {
	f.lastUserID, f.lastInput = userID, in
	return f.created, f.createErr
}

func (f *fakeMedSvc) List(ctx context.Context, userID string) ([]domain.Medicine, error) {
	f.lastUserID = userID
	return f.list, f.listErr
}

func (f *fakeMedSvc) Get(ctx context.Context, userID, id string) (*domain.Medicine, error) {
	f.lastUserID = userID
	return f.got, f.getErr
}

func (f *fakeMedSvc) Update(ctx context.Context, userID, id string, in services.MedicineInput) (*domain.Medicine, error) {
	f.lastUserID, f.lastInput = userID, in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.got, nil
}

func (f *fakeMedSvc) Delete(ctx context.Context, userID, id string) error {
	f.lastUserID = userID
	return f.deleteErr
}

type fakeAlarmSvc struct {
	rec       *repo.AlarmRecord
	err       error
	list      []repo.AlarmRecord
	lastInput services.AlarmInput
}

func (f *fakeAlarmSvc) Create(ctx context.Context, userID string, in services.AlarmInput) (*repo.AlarmRecord, error) {
	f.lastInput = in
	return f.rec, f.err
}

func (f *fakeAlarmSvc) Get(ctx context.Context, userID, alarmID string) (*repo.AlarmRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

func (f *fakeAlarmSvc) Update(ctx context.Context, userID, alarmID string, in services.AlarmInput) (*repo.AlarmRecord, error) {
	f.lastInput = in
	return f.rec, f.err
}

func (f *fakeAlarmSvc) Delete(ctx context.Context, userID, alarmID string) error {
	return f.err
}

func (f *fakeAlarmSvc) List(ctx context.Context, userID string) ([]repo.AlarmRecord, error) {
	return f.list, f.err
}

type fakeAdhSvc struct {
	toggleErr   error
	toggleState bool
	checklist   []services.ChecklistItem
	history     []services.HistoryItem
	week        services.WeekSummary
	day         services.DayStats
	err         error
	lastUserID  string
	lastDate    string
	lastAnchor  time.Time
}

func (f *fakeAdhSvc) Toggle(ctx context.Context, medicineID, date string) (bool, error) {
	f.lastDate = date
	return f.toggleState, f.toggleErr
}

func (f *fakeAdhSvc) ChecklistFor(ctx context.Context, userID, date string) ([]services.ChecklistItem, error) {
	f.lastDate = date
	return f.checklist, f.err
}

func (f *fakeAdhSvc) HistoryFor(ctx context.Context, userID, date string) ([]services.HistoryItem, error) {
	f.lastDate = date
	return f.history, f.err
}

func (f *fakeAdhSvc) WeekSummaryFor(ctx context.Context, userID string, anchor time.Time) (services.WeekSummary, error) {
	f.lastAnchor = anchor
	return f.week, f.err
}

func (f *fakeAdhSvc) DayStatsFor(ctx context.Context, userID, date string) (services.DayStats, error) {
	f.lastUserID = userID
	f.lastDate = date
	return f.day, f.err
}

//
// Harness
//

type harness struct {
	r     *gin.Engine
	med   *fakeMedSvc
	alarm *fakeAlarmSvc
	adh   *fakeAdhSvc
	h     *Handlers
}

func newHarness() *harness {
	med := &fakeMedSvc{}
	alarm := &fakeAlarmSvc{}
	adh := &fakeAdhSvc{}
	h := New(med, alarm, adh)

	r := gin.New()
	r.POST("/medicines", h.CreateMedicine)
	r.GET("/medicines", h.ListMedicines)
	r.GET("/medicines/:id", h.GetMedicine)
	r.PUT("/medicines/:id", h.UpdateMedicine)
	r.DELETE("/medicines/:id", h.DeleteMedicine)
	r.POST("/alarms", h.CreateAlarm)
	r.GET("/alarms", h.ListAlarms)
	r.GET("/alarms/:id", h.GetAlarm)
	r.PUT("/alarms/:id", h.UpdateAlarm)
	r.DELETE("/alarms/:id", h.DeleteAlarm)
	r.GET("/checklist", h.GetChecklist)
	r.POST("/checklist/toggle", h.ToggleChecklist)
	r.GET("/history", h.GetHistory)
	r.GET("/stats/week", h.GetWeekSummary)
	r.GET("/stats/day", h.GetDayStats)

	return &harness{r: r, med: med, alarm: alarm, adh: adh, h: h}
}

func (ha *harness) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", "u1")
	ha.r.ServeHTTP(w, req)
	return w
}

//
// Medicine endpoints
//

func TestCreateMedicine(t *testing.T) {
	ha := newHarness()
	ha.med.created = &domain.Medicine{ID: uuid.NewString(), Name: "Aspirin"}

	w := ha.do("POST", "/medicines", `{"name":"Aspirin","dosage":"500mg"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201; body %s", w.Code, w.Body.String())
	}
	if ha.med.lastUserID != "u1" || ha.med.lastInput.Name != "Aspirin" || ha.med.lastInput.Dosage != "500mg" {
		t.Fatalf("service called with %q %+v", ha.med.lastUserID, ha.med.lastInput)
	}
}

func TestCreateMedicine_BadJSON(t *testing.T) {
	ha := newHarness()

	w := ha.do("POST", "/medicines", `{"name":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Code != ErrCodeBadRequest {
		t.Fatalf("envelope = %+v (%v)", resp, err)
	}
}

func TestCreateMedicine_MissingName(t *testing.T) {
	ha := newHarness()

	// binding:"required" rejects the payload before the service is reached
	w := ha.do("POST", "/medicines", `{"dosage":"500mg"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestGetMedicine_InvalidID(t *testing.T) {
	ha := newHarness()

	w := ha.do("GET", "/medicines/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestGetMedicine_NotFound(t *testing.T) {
	ha := newHarness()
	ha.med.getErr = services.ErrMedicineNotFound

	w := ha.do("GET", "/medicines/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
	var resp ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != ErrCodeNotFound {
		t.Fatalf("code = %q; want not_found", resp.Code)
	}
}

func TestDeleteMedicine_NoContent(t *testing.T) {
	ha := newHarness()

	w := ha.do("DELETE", "/medicines/"+uuid.NewString(), "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204", w.Code)
	}
}
