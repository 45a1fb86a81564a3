package service

import (
	"context"
	"fmt"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/domain/vitals"
	"github.com/eyualpha/HealthLink/pkg/metrics"
	"go.uber.org/zap"
)

var vitalsStaff = []domain.Role{domain.RoleDoctor, domain.RoleNurse}

type VitalsService struct {
	repo     vitals.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time
}

func NewVitalsService(repo vitals.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *VitalsService {
	return &VitalsService{repo: repo, auditSvc: auditSvc, metrics: m, log: log, now: time.Now}
}

func (s *VitalsService) RecordVitals(ctx context.Context, cmd *vitals.RecordVitalsCommand, caller Caller) (*vitals.Reading, error) {
	if err := caller.allow(vitalsStaff...); err != nil {
		return nil, err
	}

	cmd.Normalize()
	if err := validationError(cmd.Validate()); err != nil {
		return nil, err
	}

	recordedAt := s.now().UTC()
	if cmd.RecordedAt != nil {
		recordedAt = cmd.RecordedAt.UTC()
	}
	recordedBy := cmd.RecordedBy
	if recordedBy == "" {
		recordedBy = caller.Name
	}

	v := &vitals.Reading{
		PatientID:     cmd.PatientID,
		PatientName:   cmd.PatientName,
		RecordedAt:    recordedAt,
		BloodPressure: cmd.BloodPressure,
		HeartRate:     cmd.HeartRate,
		Temperature:   cmd.Temperature,
		SpO2:          cmd.SpO2,
		RecordedBy:    recordedBy,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		s.log.Error("failed to record vitals", zap.Error(err))
		return nil, fmt.Errorf("recording vitals: %w", err)
	}

	if s.metrics != nil {
		s.metrics.VitalsRecordedTotal.Inc()
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "vitals",
		ResourceID:   v.ID,
	})

	return v, nil
}

func (s *VitalsService) ListVitals(ctx context.Context, q *vitals.ListVitalsQuery, caller Caller) ([]*vitals.Reading, error) {
	if err := caller.allow(vitalsStaff...); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, q)
}
