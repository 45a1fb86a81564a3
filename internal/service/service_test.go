package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/domain/appointment"
	"github.com/eyualpha/HealthLink/internal/domain/patient"
	"github.com/eyualpha/HealthLink/internal/domain/prescription"
	"github.com/eyualpha/HealthLink/internal/domain/vitals"
	"github.com/eyualpha/HealthLink/internal/repository/memory"
	"github.com/eyualpha/HealthLink/internal/safety"
	"github.com/eyualpha/HealthLink/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	doctor  = Caller{Subject: "doc-1", Name: "Dr. Abebe Kebede", Role: domain.RoleDoctor}
	nurse   = Caller{Subject: "nurse-1", Name: "Nurse Almaz", Role: domain.RoleNurse}
	admin   = Caller{Subject: "admin-1", Name: "Admin", Role: domain.RoleAdmin}
	sara    = Caller{Subject: "pat-2", Name: "Sara Mohammed", Role: domain.RolePatient}
	fixedAt = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
)

type fixture struct {
	audit         *memory.AuditRepository
	auditSvc      *AuditService
	appointments  *AppointmentService
	patients      *PatientService
	prescriptions *PrescriptionService
	vitals        *VitalsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()
	m := metrics.NewCollector("test", prometheus.NewRegistry())

	auditRepo := memory.NewAuditRepository(100)
	auditSvc := NewAuditService(auditRepo, 16, m, log)
	t.Cleanup(func() { auditSvc.Shutdown(context.Background()) })

	apptRepo := memory.NewAppointmentRepository()
	_, err := apptRepo.Seed(ctx, []*appointment.Appointment{
		{ID: "APT001", PatientName: "Alemayehu Girma", Date: "2024-01-15", Time: "09:00", Status: appointment.StatusCompleted},
		{ID: "APT002", PatientName: "Sara Mohammed", Date: "2024-01-15", Time: "10:00", Status: appointment.StatusInProgress},
		{ID: "APT003", PatientName: "Daniel Bekele", Date: "2024-01-15", Time: "11:30", Status: appointment.StatusScheduled},
	})
	require.NoError(t, err)

	patientRepo := memory.NewPatientRepository()
	p1 := patient.NewDraft()
	p1.ID, p1.Name, p1.Age, p1.Gender, p1.BloodType, p1.Phone = "P001", "Alemayehu Girma", 45, "Male", "O+", "+251-911-234567"
	p1.Allergies = []string{"Penicillin", "Peanuts"}
	p2 := patient.NewDraft()
	p2.ID, p2.Name, p2.Age, p2.Gender, p2.BloodType, p2.Phone = "P002", "Sara Mohammed", 28, "Female", "A+", "+251-912-345678"
	_, err = patientRepo.Seed(ctx, []*patient.Record{p1, p2})
	require.NoError(t, err)

	rxRepo := memory.NewPrescriptionRepository()
	_, err = rxRepo.Seed(ctx, []*prescription.Prescription{
		{ID: "RX001", PatientID: "P001", PatientName: "Alemayehu Girma", Medication: "Metformin 500mg", Status: prescription.StatusActive},
	})
	require.NoError(t, err)

	checker := safety.NewChecker(log, safety.NewAllergyConflictRule(patientRepo))
	rx := NewPrescriptionService(rxRepo, checker, auditSvc, m, log)
	rx.now = func() time.Time { return fixedAt }
	vs := NewVitalsService(memory.NewVitalsRepository(), auditSvc, m, log)
	vs.now = func() time.Time { return fixedAt }

	return &fixture{
		audit:         auditRepo,
		auditSvc:      auditSvc,
		appointments:  NewAppointmentService(apptRepo, auditSvc, m, log),
		patients:      NewPatientService(patientRepo, auditSvc, m, log),
		prescriptions: rx,
		vitals:        vs,
	}
}

func TestBookAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.appointments.BookAppointment(ctx, &appointment.CreateAppointmentCommand{
		PatientName: "  Tigist Alemu ",
		Date:        "2024-01-20",
		Time:        "14:30",
		Notes:       "   ",
	}, nurse)
	require.NoError(t, err)
	assert.Equal(t, "APT004", a.ID)
	assert.Equal(t, "Tigist Alemu", a.PatientName)
	assert.Equal(t, appointment.DefaultDoctor, a.DoctorName)
	assert.Equal(t, appointment.DefaultType, a.Type)
	assert.Equal(t, appointment.StatusScheduled, a.Status)
	assert.Empty(t, a.Notes)

	list, err := f.appointments.ListAppointments(ctx, nil, nurse)
	require.NoError(t, err)
	assert.Equal(t, "APT004", list[0].ID)
}

func TestBookAppointment_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.appointments.BookAppointment(context.Background(), &appointment.CreateAppointmentCommand{PatientName: " ", Time: "9am"}, doctor)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "patientName")
	assert.Contains(t, verr.Fields, "date")
	assert.Contains(t, verr.Fields, "time")
}

func TestBookAppointment_PatientForbidden(t *testing.T) {
	f := newFixture(t)
	_, err := f.appointments.BookAppointment(context.Background(), &appointment.CreateAppointmentCommand{}, sara)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAppointmentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.appointments.CancelAppointment(ctx, "APT003", doctor)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCancelled, a.Status)

	a, err = f.appointments.CancelAppointment(ctx, "APT003", doctor)
	require.NoError(t, err, "second cancel is a no-op")
	assert.Equal(t, appointment.StatusCancelled, a.Status)

	a, err = f.appointments.RescheduleAppointment(ctx, "APT003", &appointment.RescheduleAppointmentCommand{Date: "2024-01-22", Time: "08:15"}, nurse)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusScheduled, a.Status)
	assert.Equal(t, "2024-01-22", a.Date)

	a, err = f.appointments.RescheduleAppointment(ctx, "APT002", &appointment.RescheduleAppointmentCommand{Date: "2024-01-16", Time: "10:00"}, nurse)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusInProgress, a.Status, "non-cancelled status is preserved")

	a, err = f.appointments.TransitionAppointment(ctx, "APT003", appointment.StatusInProgress, doctor)
	require.NoError(t, err)
	a, err = f.appointments.TransitionAppointment(ctx, "APT003", appointment.StatusCompleted, doctor)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCompleted, a.Status)

	_, err = f.appointments.CancelAppointment(ctx, "APT003", doctor)
	assert.ErrorIs(t, err, appointment.ErrInvalidStatusTransition)

	_, err = f.appointments.TransitionAppointment(ctx, "APT002", appointment.StatusScheduled, doctor)
	assert.ErrorIs(t, err, appointment.ErrInvalidStatusTransition)

	_, err = f.appointments.TransitionAppointment(ctx, "APT002", "Paused", doctor)
	assert.ErrorIs(t, err, appointment.ErrInvalidStatus)
}

func TestAppointment_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.appointments.CancelAppointment(ctx, "APT999", doctor)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	_, err = f.appointments.RescheduleAppointment(ctx, "APT999", &appointment.RescheduleAppointmentCommand{Date: "2024-01-22", Time: "08:15"}, doctor)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	_, err = f.appointments.GetAppointment(ctx, "APT999", doctor)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
}

func TestAppointments_PatientSeesOwn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, err := f.appointments.ListAppointments(ctx, &appointment.ListAppointmentsQuery{}, sara)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "APT002", list[0].ID)

	_, err = f.appointments.GetAppointment(ctx, "APT001", sara)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPatientSave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.patients.CreatePatient(ctx, patient.NewDraft(), doctor)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 6)

	draft := patient.NewDraft()
	draft.ID, draft.Name, draft.Age, draft.Gender, draft.BloodType, draft.Phone = "P003", "Daniel Bekele", 62, "Male", "B+", "+251-913-456789"
	rec, err := f.patients.CreatePatient(ctx, draft, nurse)
	require.NoError(t, err)
	assert.Equal(t, "P003", rec.ID)

	_, err = f.patients.CreatePatient(ctx, draft, nurse)
	assert.ErrorIs(t, err, patient.ErrPatientAlreadyExists)

	draft.Age = 63
	rec, err = f.patients.UpdatePatient(ctx, "P003", draft, doctor)
	require.NoError(t, err)
	assert.Equal(t, 63, rec.Age)

	_, err = f.patients.UpdatePatient(ctx, "P002", draft, doctor)
	assert.ErrorIs(t, err, patient.ErrPatientIDMismatch)

	draft.ID = "P404"
	_, err = f.patients.UpdatePatient(ctx, "P404", draft, doctor)
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)

	_, err = f.patients.CreatePatient(ctx, draft, admin)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPatientListItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.patients.AddListItem(ctx, "P002", patient.ListMedicalHistory, " Asthma (2015) ", nurse)
	require.NoError(t, err)
	assert.Equal(t, []string{"Asthma (2015)"}, rec.MedicalHistory)

	rec, err = f.patients.AddListItem(ctx, "P002", patient.ListMedicalHistory, "  ", nurse)
	require.NoError(t, err)
	assert.Len(t, rec.MedicalHistory, 1)

	rec, err = f.patients.RemoveListItem(ctx, "P002", patient.ListMedicalHistory, 0, nurse)
	require.NoError(t, err)
	assert.Empty(t, rec.MedicalHistory)

	_, err = f.patients.RemoveListItem(ctx, "P002", patient.ListMedicalHistory, 0, nurse)
	assert.ErrorIs(t, err, patient.ErrListIndexOutOfRange)

	_, err = f.patients.AddListItem(ctx, "P002", "diagnoses", "x", nurse)
	assert.ErrorIs(t, err, patient.ErrInvalidListField)

	_, err = f.patients.AddListItem(ctx, "P404", patient.ListAllergies, "x", nurse)
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)
}

func TestIssuePrescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.prescriptions.IssuePrescription(ctx, &prescription.CreatePrescriptionCommand{
		PatientID:   "P002",
		PatientName: "Sara Mohammed",
		Medication:  "Penicillin VK",
		Dosage:      "250mg",
		Frequency:   "Four times daily",
		Duration:    "10 days",
	}, doctor)
	require.NoError(t, err)
	assert.Equal(t, "RX002", p.ID)
	assert.Equal(t, prescription.StatusActive, p.Status)
	assert.Equal(t, "2024-02-01", p.Date)

	_, err = f.prescriptions.IssuePrescription(ctx, &prescription.CreatePrescriptionCommand{
		PatientID:   "P001",
		PatientName: "Alemayehu Girma",
		Medication:  "penicillin",
		Dosage:      "250mg",
		Frequency:   "Four times daily",
		Duration:    "10 days",
	}, doctor)
	require.ErrorIs(t, err, prescription.ErrSafetyAlert)
	var alertErr *SafetyAlertError
	require.True(t, errors.As(err, &alertErr))
	assert.Len(t, alertErr.Alerts, 1)

	list, err := f.prescriptions.ListPrescriptions(ctx, &prescription.ListPrescriptionsQuery{Search: "penicillin"}, nurse)
	require.NoError(t, err)
	assert.Len(t, list, 1, "blocked prescription is not stored")

	_, err = f.prescriptions.IssuePrescription(ctx, &prescription.CreatePrescriptionCommand{}, nurse)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCheckSafety(t *testing.T) {
	f := newFixture(t)

	alerts, err := f.prescriptions.CheckSafety(context.Background(), safety.Subject{PatientID: "P001", Medication: "Penicillin"}, doctor)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	alerts, err = f.prescriptions.CheckSafety(context.Background(), safety.Subject{PatientID: "P002", Medication: "Penicillin"}, doctor)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestPrescriptionStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.prescriptions.UpdateStatus(ctx, "RX001", prescription.StatusCompleted, doctor)
	require.NoError(t, err)
	assert.Equal(t, prescription.StatusCompleted, p.Status)

	_, err = f.prescriptions.UpdateStatus(ctx, "RX001", prescription.StatusActive, doctor)
	assert.ErrorIs(t, err, prescription.ErrInvalidStatusTransition)

	_, err = f.prescriptions.UpdateStatus(ctx, "RX404", prescription.StatusCancelled, doctor)
	assert.ErrorIs(t, err, prescription.ErrPrescriptionNotFound)
}

func TestRecordVitals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hr, spo2, temp := 88, 96, 37.9
	v, err := f.vitals.RecordVitals(ctx, &vitals.RecordVitalsCommand{
		PatientID:     "P001",
		PatientName:   "Alemayehu Girma",
		BloodPressure: "135/88",
		HeartRate:     &hr,
		SpO2:          &spo2,
		Temperature:   &temp,
	}, nurse)
	require.NoError(t, err)
	assert.Equal(t, "VS001", v.ID)
	assert.Equal(t, fixedAt, v.RecordedAt)
	assert.Equal(t, "Nurse Almaz", v.RecordedBy)

	_, err = f.vitals.RecordVitals(ctx, &vitals.RecordVitalsCommand{PatientID: "P001", PatientName: "x", BloodPressure: "high"}, nurse)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "bp")

	_, err = f.vitals.ListVitals(ctx, nil, admin)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuditEntriesAreWritten(t *testing.T) {
	f := newFixture(t)
	_, err := f.appointments.CancelAppointment(context.Background(), "APT003", doctor)
	require.NoError(t, err)

	f.auditSvc.Shutdown(context.Background())

	entries := f.audit.Recent()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "APT003", last.ResourceID)
	assert.Equal(t, domain.ActionUpdate, last.Action)
	assert.Equal(t, "doc-1", last.Subject)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"phone": "Phone is required", "age": "Age must be greater than 0"}}
	assert.Equal(t, "validation failed: age: Age must be greater than 0; phone: Phone is required", err.Error())
}
