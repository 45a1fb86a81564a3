package safety

import (
	"context"
	"errors"
	"testing"

	"github.com/eyualpha/HealthLink/internal/domain/patient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPatients map[string]*patient.Record

func (s stubPatients) GetByID(_ context.Context, id string) (*patient.Record, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, patient.ErrPatientNotFound
}

var chart = stubPatients{
	"P001": {ID: "P001", Name: "Alemayehu Girma", Allergies: []string{"Penicillin", "Peanuts"}},
	"P002": {ID: "P002", Name: "Sara Mohammed", Allergies: []string{}},
}

func TestAllergyConflictRule(t *testing.T) {
	checker := NewChecker(zap.NewNop(), NewAllergyConflictRule(chart))
	ctx := context.Background()

	alerts, err := checker.Check(ctx, Subject{PatientID: "P001", Medication: "Penicillin VK 500mg"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "allergy_conflict", alerts[0].Rule)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)

	alerts, err = checker.Check(ctx, Subject{PatientID: "P001", Medication: "penicillin"})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	alerts, err = checker.Check(ctx, Subject{PatientID: "P002", Medication: "Penicillin"})
	require.NoError(t, err)
	assert.Empty(t, alerts)

	alerts, err = checker.Check(ctx, Subject{PatientID: "P001", Medication: "Metformin 500mg"})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAllergyConflictRule_UnknownPatient(t *testing.T) {
	alerts, err := NewAllergyConflictRule(chart).Evaluate(context.Background(), Subject{PatientID: "P404", Medication: "Penicillin"})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

type failingRule struct{}

func (failingRule) Name() string { return "failing" }
func (failingRule) Evaluate(context.Context, Subject) ([]Alert, error) {
	return nil, errors.New("lookup unavailable")
}

func TestChecker_RuleErrorAborts(t *testing.T) {
	checker := NewChecker(zap.NewNop(), NewAllergyConflictRule(chart), failingRule{})
	_, err := checker.Check(context.Background(), Subject{PatientID: "P001", Medication: "Penicillin"})
	assert.ErrorContains(t, err, "rule failing")
}
