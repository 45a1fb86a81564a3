package service

import (
	"context"
	"fmt"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/domain/prescription"
	"github.com/eyualpha/HealthLink/internal/safety"
	"github.com/eyualpha/HealthLink/pkg/metrics"
	"go.uber.org/zap"
)

var prescriptionReaders = []domain.Role{domain.RoleDoctor, domain.RoleNurse, domain.RoleAdmin}

type PrescriptionService struct {
	repo     prescription.Repository
	checker  *safety.Checker
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time
}

func NewPrescriptionService(
	repo prescription.Repository,
	checker *safety.Checker,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *PrescriptionService {
	return &PrescriptionService{
		repo:     repo,
		checker:  checker,
		auditSvc: auditSvc,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

func (s *PrescriptionService) ListPrescriptions(ctx context.Context, q *prescription.ListPrescriptionsQuery, caller Caller) ([]*prescription.Prescription, error) {
	if err := caller.allow(prescriptionReaders...); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, q)
}

// CheckSafety evaluates the safety rules without issuing anything.
func (s *PrescriptionService) CheckSafety(ctx context.Context, subject safety.Subject, caller Caller) ([]safety.Alert, error) {
	if err := caller.allow(domain.RoleDoctor); err != nil {
		return nil, err
	}
	return s.evaluate(ctx, subject)
}

// IssuePrescription creates an Active prescription unless a safety rule
// raises an alert, in which case a *SafetyAlertError is returned.
func (s *PrescriptionService) IssuePrescription(ctx context.Context, cmd *prescription.CreatePrescriptionCommand, caller Caller) (*prescription.Prescription, error) {
	if err := caller.allow(domain.RoleDoctor); err != nil {
		return nil, err
	}

	cmd.Normalize()
	if err := validationError(cmd.Validate()); err != nil {
		return nil, err
	}

	alerts, err := s.evaluate(ctx, safety.Subject{PatientID: cmd.PatientID, Medication: cmd.Medication})
	if err != nil {
		return nil, err
	}
	if len(alerts) > 0 {
		s.log.Warn("prescription blocked by safety alert",
			zap.String("patient_id", cmd.PatientID),
			zap.String("medication", cmd.Medication),
			zap.String("prescriber", caller.Subject),
		)
		return nil, &SafetyAlertError{Alerts: alerts}
	}

	date := cmd.Date
	if date == "" {
		date = s.now().Format("2006-01-02")
	}

	p := &prescription.Prescription{
		PatientID:    cmd.PatientID,
		PatientName:  cmd.PatientName,
		Medication:   cmd.Medication,
		Dosage:       cmd.Dosage,
		Frequency:    cmd.Frequency,
		Duration:     cmd.Duration,
		Date:         date,
		Instructions: cmd.Instructions,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create prescription", zap.Error(err))
		return nil, fmt.Errorf("creating prescription: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PrescriptionsIssued.Inc()
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "prescription",
		ResourceID:   p.ID,
	})
	s.log.Info("prescription issued",
		zap.String("prescription_id", p.ID),
		zap.String("patient_id", p.PatientID),
		zap.String("prescriber", caller.Subject),
	)

	return p, nil
}

func (s *PrescriptionService) UpdateStatus(ctx context.Context, id string, status prescription.PrescriptionStatus, caller Caller) (*prescription.Prescription, error) {
	if err := caller.allow(domain.RoleDoctor); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, func(p *prescription.Prescription) error {
		return p.TransitionTo(status)
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller: caller, Action: domain.ActionUpdate, ResourceType: "prescription", ResourceID: id,
		Changes: fmt.Sprintf(`{"status":%q}`, p.Status),
	})

	return p, nil
}

func (s *PrescriptionService) evaluate(ctx context.Context, subject safety.Subject) ([]safety.Alert, error) {
	alerts, err := s.checker.Check(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("checking medication safety: %w", err)
	}
	if s.metrics != nil {
		for _, a := range alerts {
			s.metrics.SafetyAlertsTotal.WithLabelValues(a.Rule).Inc()
		}
	}
	return alerts, nil
}
