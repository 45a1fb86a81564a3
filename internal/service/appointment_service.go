package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/domain/appointment"
	"github.com/eyualpha/HealthLink/pkg/metrics"
	"go.uber.org/zap"
)

var appointmentStaff = []domain.Role{domain.RoleDoctor, domain.RoleNurse, domain.RoleAdmin}

type AppointmentService struct {
	repo     appointment.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{repo: repo, auditSvc: auditSvc, metrics: m, log: log}
}

func (s *AppointmentService) BookAppointment(ctx context.Context, cmd *appointment.CreateAppointmentCommand, caller Caller) (*appointment.Appointment, error) {
	if err := caller.allow(appointmentStaff...); err != nil {
		return nil, err
	}

	cmd.Normalize()
	if err := validationError(cmd.Validate()); err != nil {
		return nil, err
	}

	a := &appointment.Appointment{
		PatientName: cmd.PatientName,
		DoctorName:  cmd.DoctorName,
		Date:        cmd.Date,
		Time:        cmd.Time,
		Type:        cmd.Type,
		Notes:       cmd.Notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.recordStatus(a.Status)
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "appointment",
		ResourceID:   a.ID,
	})
	s.log.Info("appointment booked",
		zap.String("appointment_id", a.ID),
		zap.String("date", a.Date),
		zap.String("time", a.Time),
		zap.String("booked_by", caller.Subject),
	)

	return a, nil
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id string, caller Caller) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Patients can only read their own appointments.
	if caller.Role == domain.RolePatient && !ownsAppointment(caller, a) {
		return nil, ErrForbidden
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller: caller, Action: domain.ActionRead, ResourceType: "appointment", ResourceID: id,
	})

	return a, nil
}

func (s *AppointmentService) ListAppointments(ctx context.Context, q *appointment.ListAppointmentsQuery, caller Caller) ([]*appointment.Appointment, error) {
	if q == nil {
		q = &appointment.ListAppointmentsQuery{}
	}
	list, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	if caller.Role == domain.RolePatient {
		own := list[:0]
		for _, a := range list {
			if ownsAppointment(caller, a) {
				own = append(own, a)
			}
		}
		list = own
	}
	return list, nil
}

func (s *AppointmentService) RescheduleAppointment(ctx context.Context, id string, cmd *appointment.RescheduleAppointmentCommand, caller Caller) (*appointment.Appointment, error) {
	if err := caller.allow(appointmentStaff...); err != nil {
		return nil, err
	}
	if err := validationError(cmd.Validate()); err != nil {
		return nil, err
	}

	var previous appointment.AppointmentStatus
	a, err := s.repo.Update(ctx, id, func(a *appointment.Appointment) error {
		previous = a.Status
		a.Reschedule(cmd.Date, cmd.Time)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != a.Status {
		s.recordStatus(a.Status)
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller: caller, Action: domain.ActionUpdate, ResourceType: "appointment", ResourceID: id,
		Changes: fmt.Sprintf(`{"date":%q,"time":%q,"status":%q}`, a.Date, a.Time, a.Status),
	})

	return a, nil
}

// CancelAppointment is idempotent: cancelling a cancelled appointment
// returns it unchanged.
func (s *AppointmentService) CancelAppointment(ctx context.Context, id string, caller Caller) (*appointment.Appointment, error) {
	if err := caller.allow(appointmentStaff...); err != nil {
		return nil, err
	}

	changed := false
	a, err := s.repo.Update(ctx, id, func(a *appointment.Appointment) error {
		changed = a.Status != appointment.StatusCancelled
		return a.Cancel()
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.recordStatus(a.Status)
		s.auditSvc.LogAsync(ctx, AuditEntry{
			Caller: caller, Action: domain.ActionUpdate, ResourceType: "appointment", ResourceID: id,
			Changes: `{"status":"Cancelled"}`,
		})
	}

	return a, nil
}

// TransitionAppointment moves an appointment forward through the visit:
// Scheduled to In Progress, and In Progress to Completed.
func (s *AppointmentService) TransitionAppointment(ctx context.Context, id string, status appointment.AppointmentStatus, caller Caller) (*appointment.Appointment, error) {
	if err := caller.allow(appointmentStaff...); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, appointment.ErrInvalidStatus
	}
	if status != appointment.StatusInProgress && status != appointment.StatusCompleted {
		return nil, appointment.ErrInvalidStatusTransition
	}

	a, err := s.repo.Update(ctx, id, func(a *appointment.Appointment) error {
		return a.TransitionTo(status)
	})
	if err != nil {
		return nil, err
	}

	s.recordStatus(a.Status)
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller: caller, Action: domain.ActionUpdate, ResourceType: "appointment", ResourceID: id,
		Changes: fmt.Sprintf(`{"status":%q}`, a.Status),
	})

	return a, nil
}

func (s *AppointmentService) recordStatus(status appointment.AppointmentStatus) {
	if s.metrics != nil {
		s.metrics.AppointmentsTotal.WithLabelValues(string(status)).Inc()
	}
}

func ownsAppointment(caller Caller, a *appointment.Appointment) bool {
	return caller.Name != "" && strings.EqualFold(strings.TrimSpace(caller.Name), a.PatientName)
}
