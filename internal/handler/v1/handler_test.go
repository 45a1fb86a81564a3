package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eyualpha/HealthLink/internal/config"
	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/domain/appointment"
	"github.com/eyualpha/HealthLink/internal/domain/patient"
	"github.com/eyualpha/HealthLink/internal/repository/memory"
	"github.com/eyualpha/HealthLink/internal/safety"
	"github.com/eyualpha/HealthLink/internal/service"
	"github.com/eyualpha/HealthLink/pkg/auth"
	"github.com/eyualpha/HealthLink/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	jwt    *auth.JWTManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()
	m := metrics.NewCollector("test", prometheus.NewRegistry())

	auditSvc := service.NewAuditService(memory.NewAuditRepository(100), 16, m, log)
	t.Cleanup(func() { auditSvc.Shutdown(context.Background()) })

	appointments := memory.NewAppointmentRepository()
	_, err := appointments.Seed(ctx, []*appointment.Appointment{
		{ID: "APT001", PatientName: "Alemayehu Girma", DoctorName: "Dr. Abebe Kebede", Date: "2024-01-15", Time: "09:00", Status: appointment.StatusCompleted},
		{ID: "APT002", PatientName: "Sara Mohammed", DoctorName: "Dr. Abebe Kebede", Date: "2024-01-15", Time: "10:00", Status: appointment.StatusScheduled},
	})
	require.NoError(t, err)

	patients := memory.NewPatientRepository()
	p1 := patient.NewDraft()
	p1.ID, p1.Name, p1.Age, p1.Gender, p1.BloodType, p1.Phone = "P001", "Alemayehu Girma", 45, "Male", "O+", "+251-911-234567"
	p1.Allergies = []string{"Penicillin"}
	_, err = patients.Seed(ctx, []*patient.Record{p1})
	require.NoError(t, err)

	checker := safety.NewChecker(log, safety.NewAllergyConflictRule(patients))

	r := gin.New()
	jwt := auth.NewJWTManager(config.JWTConfig{
		Secret:         "test-secret-test-secret-test-secret",
		AccessTokenTTL: time.Hour,
		Issuer:         "healthlink-test",
	})
	Register(r.Group("/api/v1"), &Handlers{
		Appointments:  NewAppointmentHandler(service.NewAppointmentService(appointments, auditSvc, m, log), log),
		Patients:      NewPatientHandler(service.NewPatientService(patients, auditSvc, m, log), log),
		Prescriptions: NewPrescriptionHandler(service.NewPrescriptionService(memory.NewPrescriptionRepository(), checker, auditSvc, m, log), log),
		Vitals:        NewVitalsHandler(service.NewVitalsService(memory.NewVitalsRepository(), auditSvc, m, log), log),
	}, jwt)

	return &testAPI{router: r, jwt: jwt}
}

func (a *testAPI) token(t *testing.T, role domain.Role, name string) string {
	t.Helper()
	pair, err := a.jwt.IssueAccessToken(&domain.Claims{Subject: string(role) + "-1", Name: name, Role: role})
	require.NoError(t, err)
	return pair.AccessToken
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAPI_RequiresToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/appointments", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_PatientTokenOnStaffRoute(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, domain.RolePatient, "Sara Mohammed")

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, "/api/v1/patients", tok, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPost, "/api/v1/appointments", tok, map[string]string{}).Code)

	rec := api.do(t, http.MethodGet, "/api/v1/appointments", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[APIResponse[[]appointment.Appointment]](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "APT002", body.Data[0].ID)
}

func TestAPI_Appointments(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, domain.RoleNurse, "Nurse Almaz")

	rec := api.do(t, http.MethodGet, "/api/v1/appointments/APT999", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/appointments", tok, map[string]string{
		"patientName": "Meron Tadesse",
		"doctorName":  "Dr. Abebe Kebede",
		"date":        "2024-02-01",
		"time":        "14:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[APIResponse[appointment.Appointment]](t, rec)
	assert.Equal(t, "APT003", created.Data.ID)
	assert.Equal(t, appointment.StatusScheduled, created.Data.Status)

	rec = api.do(t, http.MethodPost, "/api/v1/appointments", tok, map[string]string{"patientName": "Meron Tadesse"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	failed := decode[ErrorResponse](t, rec)
	assert.Equal(t, "VALIDATION_FAILED", failed.Code)
	assert.Contains(t, failed.Details, "date")

	rec = api.do(t, http.MethodPatch, "/api/v1/appointments/APT003/status", tok, map[string]string{"status": "In Progress"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, appointment.StatusInProgress, decode[APIResponse[appointment.Appointment]](t, rec).Data.Status)

	rec = api.do(t, http.MethodPost, "/api/v1/appointments/APT001/cancel", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "completed visits cannot be cancelled")

	rec = api.do(t, http.MethodPatch, "/api/v1/appointments/APT002", tok, map[string]string{"date": "2024-03-01", "time": "08:30"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-03-01", decode[APIResponse[appointment.Appointment]](t, rec).Data.Date)
}

func TestAPI_Patients(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, domain.RoleDoctor, "Dr. Abebe Kebede")

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/v1/patients/P404", tok, nil).Code)

	rec := api.do(t, http.MethodPost, "/api/v1/patients/validate", tok, map[string]any{"name": "Hanna"})
	require.Equal(t, http.StatusOK, rec.Code)
	check := decode[APIResponse[validateDraftResponse]](t, rec)
	assert.False(t, check.Data.Valid)
	assert.Contains(t, check.Data.Errors, "id")

	rec = api.do(t, http.MethodPost, "/api/v1/patients", tok, map[string]any{"name": "Hanna"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	failed := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Age must be greater than 0", failed.Details["age"])

	rec = api.do(t, http.MethodPost, "/api/v1/patients", tok, map[string]any{
		"id": "P001", "name": "Dup", "age": 30, "gender": "Female", "bloodType": "B+", "phone": "1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/patients/P001/lists/allergies", tok, map[string]string{"value": "Latex"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Penicillin", "Latex"}, decode[APIResponse[patient.Record]](t, rec).Data.Allergies)

	rec = api.do(t, http.MethodDelete, "/api/v1/patients/P001/lists/allergies/0", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Latex"}, decode[APIResponse[patient.Record]](t, rec).Data.Allergies)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodDelete, "/api/v1/patients/P001/lists/allergies/x", tok, nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/v1/patients/P001/lists/hobbies", tok, map[string]string{"value": "x"}).Code)
}

func TestAPI_PrescriptionSafety(t *testing.T) {
	api := newTestAPI(t)
	doc := api.token(t, domain.RoleDoctor, "Dr. Abebe Kebede")

	req := map[string]string{
		"patientId":   "P001",
		"patientName": "Alemayehu Girma",
		"medication":  "Penicillin V 500mg",
		"dosage":      "500mg",
		"frequency":   "Twice daily",
		"duration":    "7 days",
	}

	rec := api.do(t, http.MethodPost, "/api/v1/prescriptions/check", doc, req)
	require.Equal(t, http.StatusOK, rec.Code)
	check := decode[APIResponse[safetyCheckResponse]](t, rec)
	assert.False(t, check.Data.Safe)
	require.Len(t, check.Data.Alerts, 1)

	rec = api.do(t, http.MethodPost, "/api/v1/prescriptions", doc, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	blocked := decode[SafetyAlertResponse](t, rec)
	assert.Equal(t, "SAFETY_ALERT", blocked.Code)
	assert.Equal(t, safety.SeverityCritical, blocked.Alerts[0].Severity)

	req["medication"] = "Amoxicillin"
	rec = api.do(t, http.MethodPost, "/api/v1/prescriptions", doc, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	nurse := api.token(t, domain.RoleNurse, "Nurse Almaz")
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPost, "/api/v1/prescriptions", nurse, req).Code)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/prescriptions?search=amox", nurse, nil).Code)
}

func TestAPI_Vitals(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, domain.RoleNurse, "Nurse Almaz")

	rec := api.do(t, http.MethodPost, "/api/v1/vitals", tok, map[string]any{
		"patientId": "P001", "patientName": "Alemayehu Girma", "bp": "120/80", "hr": 72,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/vitals", tok, map[string]any{
		"patientId": "P001", "patientName": "Alemayehu Girma", "bp": "high",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "bp")

	admin := api.token(t, domain.RoleAdmin, "Admin")
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, "/api/v1/vitals", admin, nil).Code)
}
