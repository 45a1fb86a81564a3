package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/domain/patient"
	"github.com/eyualpha/HealthLink/pkg/metrics"
	"go.uber.org/zap"
)

var (
	patientReaders = []domain.Role{domain.RoleDoctor, domain.RoleNurse, domain.RoleAdmin}
	patientEditors = []domain.Role{domain.RoleDoctor, domain.RoleNurse}
)

type PatientService struct {
	repo     patient.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewPatientService(repo patient.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *PatientService {
	return &PatientService{
		repo:     repo,
		auditSvc: auditSvc,
		metrics:  m,
		log:      log,
	}
}

// NewDraft returns the blank record a create form starts from.
func (s *PatientService) NewDraft(caller Caller) (*patient.Record, error) {
	if err := caller.allow(patientEditors...); err != nil {
		return nil, err
	}
	return patient.NewDraft(), nil
}

// ValidateDraft reports field problems without saving. An empty result
// means the draft can be saved.
func (s *PatientService) ValidateDraft(draft *patient.Record, caller Caller) (patient.FieldErrors, error) {
	if err := caller.allow(patientEditors...); err != nil {
		return nil, err
	}
	return patient.Validate(draft), nil
}

func (s *PatientService) CreatePatient(ctx context.Context, draft *patient.Record, caller Caller) (*patient.Record, error) {
	if err := caller.allow(patientEditors...); err != nil {
		return nil, err
	}
	if err := validationError(patient.Validate(draft)); err != nil {
		return nil, err
	}

	rec := prepareForSave(draft)
	if err := s.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, patient.ErrPatientAlreadyExists) {
			return nil, err
		}
		s.log.Error("failed to create patient record", zap.Error(err))
		return nil, fmt.Errorf("creating patient record: %w", err)
	}

	s.recordSave("create")
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "patient",
		ResourceID:   rec.ID,
	})
	s.log.Info("patient record created",
		zap.String("patient_id", rec.ID),
		zap.String("created_by", caller.Subject),
	)

	return rec, nil
}

// UpdatePatient replaces the stored record. The id in the path is
// authoritative; a body carrying a different id is rejected.
func (s *PatientService) UpdatePatient(ctx context.Context, id string, draft *patient.Record, caller Caller) (*patient.Record, error) {
	if err := caller.allow(patientEditors...); err != nil {
		return nil, err
	}
	if strings.TrimSpace(draft.ID) == "" {
		draft.ID = id
	}
	if strings.TrimSpace(draft.ID) != id {
		return nil, patient.ErrPatientIDMismatch
	}
	if err := validationError(patient.Validate(draft)); err != nil {
		return nil, err
	}

	rec := prepareForSave(draft)
	if err := s.repo.Replace(ctx, rec); err != nil {
		return nil, err
	}

	s.recordSave("edit")
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller: caller, Action: domain.ActionUpdate, ResourceType: "patient", ResourceID: id,
	})

	return rec, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id string, caller Caller) (*patient.Record, error) {
	if err := caller.allow(patientReaders...); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller: caller, Action: domain.ActionRead, ResourceType: "patient", ResourceID: id,
	})

	return rec, nil
}

func (s *PatientService) ListPatients(ctx context.Context, q *patient.ListPatientsQuery, caller Caller) ([]*patient.Record, error) {
	if err := caller.allow(patientReaders...); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, q)
}

// AddListItem appends to one of the record's string lists. A blank value
// leaves the record untouched.
func (s *PatientService) AddListItem(ctx context.Context, id string, key patient.ListKey, value string, caller Caller) (*patient.Record, error) {
	if err := caller.allow(patientEditors...); err != nil {
		return nil, err
	}
	if !key.IsValid() {
		return nil, patient.ErrInvalidListField
	}

	changed := false
	rec, err := s.repo.Update(ctx, id, func(r *patient.Record) error {
		var err error
		changed, err = r.AddListItem(key, value)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.auditSvc.LogAsync(ctx, AuditEntry{
			Caller: caller, Action: domain.ActionUpdate, ResourceType: "patient", ResourceID: id,
			Changes: fmt.Sprintf(`{"add":{%q:%q}}`, key, strings.TrimSpace(value)),
		})
	}

	return rec, nil
}

func (s *PatientService) RemoveListItem(ctx context.Context, id string, key patient.ListKey, index int, caller Caller) (*patient.Record, error) {
	if err := caller.allow(patientEditors...); err != nil {
		return nil, err
	}
	if !key.IsValid() {
		return nil, patient.ErrInvalidListField
	}

	rec, err := s.repo.Update(ctx, id, func(r *patient.Record) error {
		return r.RemoveListItem(key, index)
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller: caller, Action: domain.ActionUpdate, ResourceType: "patient", ResourceID: id,
		Changes: fmt.Sprintf(`{"remove":{%q:%d}}`, key, index),
	})

	return rec, nil
}

func (s *PatientService) recordSave(mode string) {
	if s.metrics != nil {
		s.metrics.PatientsSavedTotal.WithLabelValues(mode).Inc()
	}
}

// prepareForSave copies the draft so the caller's value is never stored,
// and fills nil lists so records always serialize with arrays.
func prepareForSave(draft *patient.Record) *patient.Record {
	rec := draft.Clone()
	rec.Normalize()
	return rec
}
