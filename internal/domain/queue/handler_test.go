package queue

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
)

func newTestServer(t *testing.T) (*echo.Echo, *auth.Issuer, *Service, *Doctor) {
	t.Helper()
	svc, _, _, doctor := newTestService()
	issuer := auth.NewIssuer("test-secret", time.Hour)

	e := echo.New()
	api := e.Group("/api/v1", auth.JWTMiddleware(issuer))
	NewHandler(svc).RegisterRoutes(api)
	return e, issuer, svc, doctor
}

func doJSON(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBookTokenEndpoint(t *testing.T) {
	e, issuer, _, _ := newTestServer(t)
	patientToken, _ := issuer.Issue(uuid.NewString(), "Asha", auth.RolePatient)

	rec := doJSON(e, http.MethodPost, "/api/v1/patient/book-token", patientToken,
		`{"doctorName":"Dr. Rao","reason":"checkup"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var appt Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if appt.TokenNumber != 1 {
		t.Errorf("expected token 1, got %d", appt.TokenNumber)
	}
	if appt.PatientName != "Asha" {
		t.Errorf("expected patient name from token claims, got %q", appt.PatientName)
	}
}

func TestBookTokenEndpoint_RoleEnforced(t *testing.T) {
	e, issuer, _, _ := newTestServer(t)
	doctorToken, _ := issuer.Issue(uuid.NewString(), "Dr. Rao", auth.RoleDoctor)

	rec := doJSON(e, http.MethodPost, "/api/v1/patient/book-token", doctorToken,
		`{"doctorName":"Dr. Rao"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for doctor on patient route, got %d", rec.Code)
	}
}

func TestBookTokenEndpoint_UnknownDoctor(t *testing.T) {
	e, issuer, _, _ := newTestServer(t)
	patientToken, _ := issuer.Issue(uuid.NewString(), "Asha", auth.RolePatient)

	rec := doJSON(e, http.MethodPost, "/api/v1/patient/book-token", patientToken,
		`{"doctorName":"Dr. Nobody"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	e, issuer, _, _ := newTestServer(t)
	patientID := uuid.NewString()
	patientToken, _ := issuer.Issue(patientID, "Asha", auth.RolePatient)

	// No booking yet.
	rec := doJSON(e, http.MethodGet, "/api/v1/patient/status", patientToken, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before booking, got %d", rec.Code)
	}

	doJSON(e, http.MethodPost, "/api/v1/patient/book-token", patientToken, `{"doctorName":"Dr. Rao"}`)

	rec = doJSON(e, http.MethodGet, "/api/v1/patient/status", patientToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var status QueueStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.Position != "1" {
		t.Errorf("expected position 1, got %s", status.Position)
	}
	if status.CurrentServing != "N/A" {
		t.Errorf("expected N/A, got %s", status.CurrentServing)
	}
}

func TestDoctorFlowEndpoints(t *testing.T) {
	e, issuer, _, doctor := newTestServer(t)
	patientToken, _ := issuer.Issue(uuid.NewString(), "Asha", auth.RolePatient)
	doctorToken, _ := issuer.Issue(doctor.ID.String(), doctor.Name, auth.RoleDoctor)

	rec := doJSON(e, http.MethodPost, "/api/v1/patient/book-token", patientToken, `{"doctorName":"Dr. Rao"}`)
	var appt Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appt); err != nil {
		t.Fatalf("unmarshal booking: %v", err)
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/doctor/queue", doctorToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("queue: expected 200, got %d", rec.Code)
	}
	var view QueueView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal queue: %v", err)
	}
	if len(view.Queue) != 1 {
		t.Fatalf("expected 1 queued appointment, got %d", len(view.Queue))
	}

	body := fmt.Sprintf(`{"appointmentId":%q}`, appt.ID)
	rec = doJSON(e, http.MethodPost, "/api/v1/doctor/call-next", doctorToken, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("call-next: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/doctor/current-session", doctorToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("current-session: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), appt.ID.String()) {
		t.Error("current session should contain the called appointment")
	}

	rec = doJSON(e, http.MethodPut, "/api/v1/doctor/cancel-serving", doctorToken, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel-serving: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/doctor/current-session", doctorToken, "")
	if !strings.Contains(rec.Body.String(), "null") {
		t.Errorf("expected empty session after cancel, got %s", rec.Body.String())
	}
}

func TestCallNextEndpoint_BadID(t *testing.T) {
	e, issuer, _, doctor := newTestServer(t)
	doctorToken, _ := issuer.Issue(doctor.ID.String(), doctor.Name, auth.RoleDoctor)

	rec := doJSON(e, http.MethodPost, "/api/v1/doctor/call-next", doctorToken, `{"appointmentId":"not-a-uuid"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/v1/doctor/call-next", doctorToken,
		fmt.Sprintf(`{"appointmentId":%q}`, uuid.New()))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
