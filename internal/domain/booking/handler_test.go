package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinident/clinident/internal/platform/auth"
)

func newContext(e *echo.Echo, method, path, body string, userID uuid.UUID, roles ...string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Availability(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()

	c, rec := newContext(e, http.MethodGet, "/api/v1/booking/availability", "", uuid.New(), auth.RoleCaregiver)
	if err := h.Availability(c); err != nil {
		t.Fatalf("availability: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var d Decision
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !d.Allowed {
		t.Errorf("expected allowed during clinic hours, got %+v", d)
	}
}

func TestHandler_BookAndCancel(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()
	caregiver := uuid.New()

	body := fmt.Sprintf(`{"patient_id":%q,"date":"2025-06-20T00:00:00Z","window_id":%q,"slot":"14:30","treatment":"composite restoration, tooth 36"}`,
		uuid.New(), env.window(t).ID)
	c, rec := newContext(e, http.MethodPost, "/api/v1/appointments", body, caregiver, auth.RoleCaregiver)
	if err := h.Book(c); err != nil {
		t.Fatalf("book: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.CaregiverID != caregiver {
		t.Error("expected caregiver identity to come from the token")
	}

	c, rec = newContext(e, http.MethodDelete, "/api/v1/appointments/"+a.ID.String(), "", caregiver, auth.RoleCaregiver)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	if err := h.CancelAppointment(c); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c, _ = newContext(e, http.MethodDelete, "/api/v1/appointments/"+a.ID.String(), "", caregiver, auth.RoleCaregiver)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	err := h.CancelAppointment(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409 on second cancel, got %v", err)
	}
}

func TestHandler_BookDeniedOutsideHours(t *testing.T) {
	env := newTestEnv(t)
	env.svc.now = func() time.Time { return clinicTime(2025, 6, 11, 15, 0) } // Wednesday
	h := NewHandler(env.svc)
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q,"date":"2025-06-20T00:00:00Z","window_id":%q,"slot":"14:30","treatment":"scaling"}`,
		uuid.New(), env.window(t).ID)
	c, _ := newContext(e, http.MethodPost, "/api/v1/appointments", body, uuid.New(), auth.RoleCaregiver)
	err := h.Book(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 outside clinic hours, got %v", err)
	}
	if !strings.Contains(fmt.Sprint(he.Message), "viernes") {
		t.Errorf("expected reason to list clinic hours, got %v", he.Message)
	}
}

func TestHandler_CreateWindowInvalid(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()

	c, _ := newContext(e, http.MethodPost, "/api/v1/booking/windows",
		`{"weekday":"viernes","start":"19:00","end":"13:00"}`, uuid.New(), auth.RoleReviewer)
	err := h.CreateWindow(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for inverted window, got %v", err)
	}
}
