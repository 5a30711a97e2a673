package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-medtrack-backend/internal/repo"
	"github.com/tbourn/go-medtrack-backend/internal/schedule"
	"github.com/tbourn/go-medtrack-backend/internal/scheduler"
	"github.com/tbourn/go-medtrack-backend/internal/services"
)

func sampleAlarmRecord() *repo.AlarmRecord {
	rec := &repo.AlarmRecord{
		WeekdaySet: []time.Weekday{time.Monday, time.Thursday},
		Handles:    []string{"h1", "h2"},
	}
	rec.ID = uuid.NewString()
	rec.MedicineID = uuid.NewString()
	rec.MedicineName = "Aspirin"
	rec.Hour = 8
	rec.Minute = 5
	return rec
}

func TestCreateAlarm(t *testing.T) {
	ha := newHarness()
	ha.alarm.rec = sampleAlarmRecord()

	w := ha.do("POST", "/alarms", `{"medicine_id":"`+ha.alarm.rec.MedicineID+`","time":"08:05","weekdays":[1,4]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201; body %s", w.Code, w.Body.String())
	}

	var resp AlarmResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Time != "08:05" {
		t.Fatalf("time = %q; want zero-padded 08:05", resp.Time)
	}
	if len(resp.Weekdays) != 2 || resp.Weekdays[0] != 1 || resp.Weekdays[1] != 4 {
		t.Fatalf("weekdays = %v; want [1 4]", resp.Weekdays)
	}

	in := ha.alarm.lastInput
	if in.Time != "08:05" || len(in.Weekdays) != 2 || in.Weekdays[0] != time.Monday {
		t.Fatalf("service input = %+v", in)
	}
}

func TestCreateAlarm_ValidationErrors(t *testing.T) {
	cases := map[string]struct {
		svcErr error
		body   string
		status int
		code   string
	}{
		"invalid time": {
			svcErr: schedule.ErrInvalidTime,
			body:   `{"medicine_id":"m","time":"8:05","weekdays":[1]}`,
			status: http.StatusBadRequest,
			code:   ErrCodeBadRequest,
		},
		"no repeat days": {
			svcErr: schedule.ErrNoRepeatDays,
			body:   `{"medicine_id":"m","time":"08:05","weekdays":[]}`,
			status: http.StatusBadRequest,
			code:   ErrCodeBadRequest,
		},
		"missing medicine": {
			svcErr: services.ErrMedicineNotFound,
			body:   `{"medicine_id":"m","time":"08:05","weekdays":[1]}`,
			status: http.StatusNotFound,
			code:   ErrCodeNotFound,
		},
		"permission denied": {
			svcErr: services.ErrPermissionDenied,
			body:   `{"medicine_id":"m","time":"08:05","weekdays":[1]}`,
			status: http.StatusForbidden,
			code:   ErrCodePermission,
		},
		"scheduling failed": {
			svcErr: scheduler.ErrSchedulingFailed,
			body:   `{"medicine_id":"m","time":"08:05","weekdays":[1]}`,
			status: http.StatusBadGateway,
			code:   ErrCodeSchedulingFailed,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ha := newHarness()
			ha.alarm.err = tc.svcErr

			w := ha.do("POST", "/alarms", tc.body)
			if w.Code != tc.status {
				t.Fatalf("status = %d; want %d; body %s", w.Code, tc.status, w.Body.String())
			}
			var resp ErrorResponse
			_ = json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Code != tc.code {
				t.Fatalf("code = %q; want %q", resp.Code, tc.code)
			}
		})
	}
}

func TestGetAlarm(t *testing.T) {
	ha := newHarness()
	ha.alarm.rec = sampleAlarmRecord()

	w := ha.do("GET", "/alarms/"+ha.alarm.rec.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200; body %s", w.Code, w.Body.String())
	}
	var resp AlarmResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != ha.alarm.rec.ID || resp.Time != "08:05" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestGetAlarm_InvalidID(t *testing.T) {
	ha := newHarness()

	w := ha.do("GET", "/alarms/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestGetAlarm_NotFound(t *testing.T) {
	ha := newHarness()
	ha.alarm.err = services.ErrAlarmNotFound

	w := ha.do("GET", "/alarms/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
}

func TestUpdateAlarm_InvalidID(t *testing.T) {
	ha := newHarness()

	w := ha.do("PUT", "/alarms/not-a-uuid", `{"medicine_id":"m","time":"08:05","weekdays":[1]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestUpdateAlarm_NotFound(t *testing.T) {
	ha := newHarness()
	ha.alarm.err = services.ErrAlarmNotFound

	w := ha.do("PUT", "/alarms/"+uuid.NewString(), `{"medicine_id":"m","time":"08:05","weekdays":[1]}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
}

func TestDeleteAlarm(t *testing.T) {
	ha := newHarness()

	if w := ha.do("DELETE", "/alarms/"+uuid.NewString(), ""); w.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204", w.Code)
	}

	ha.alarm.err = services.ErrAlarmNotFound
	if w := ha.do("DELETE", "/alarms/"+uuid.NewString(), ""); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
}

func TestListAlarms(t *testing.T) {
	ha := newHarness()
	ha.alarm.list = []repo.AlarmRecord{*sampleAlarmRecord()}

	w := ha.do("GET", "/alarms", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	var out []AlarmResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || len(out) != 1 {
		t.Fatalf("body = %s (%v)", w.Body.String(), err)
	}
}
