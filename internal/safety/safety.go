package safety

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eyualpha/HealthLink/internal/domain/patient"
	"go.uber.org/zap"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Subject is the prescription being considered.
type Subject struct {
	PatientID  string
	Medication string
}

type Alert struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Rule inspects a subject and reports any alerts it raises.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, s Subject) ([]Alert, error)
}

// Checker runs every registered rule against a subject.
type Checker struct {
	rules  []Rule
	logger *zap.Logger
}

func NewChecker(logger *zap.Logger, rules ...Rule) *Checker {
	return &Checker{rules: rules, logger: logger}
}

// Check returns the alerts raised by all rules. A failing rule aborts the
// check so a prescription is never approved on partial evidence.
func (c *Checker) Check(ctx context.Context, s Subject) ([]Alert, error) {
	alerts := []Alert{}
	for _, r := range c.rules {
		found, err := r.Evaluate(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name(), err)
		}
		alerts = append(alerts, found...)
	}
	if len(alerts) > 0 {
		c.logger.Info("medication safety alerts raised",
			zap.String("patient_id", s.PatientID),
			zap.String("medication", s.Medication),
			zap.Int("alerts", len(alerts)),
		)
	}
	return alerts, nil
}

type PatientLookup interface {
	GetByID(ctx context.Context, id string) (*patient.Record, error)
}

// AllergyConflictRule flags a medication whose text names one of the
// patient's recorded allergies.
type AllergyConflictRule struct {
	patients PatientLookup
}

func NewAllergyConflictRule(patients PatientLookup) *AllergyConflictRule {
	return &AllergyConflictRule{patients: patients}
}

func (r *AllergyConflictRule) Name() string { return "allergy_conflict" }

func (r *AllergyConflictRule) Evaluate(ctx context.Context, s Subject) ([]Alert, error) {
	medication := strings.ToLower(strings.TrimSpace(s.Medication))
	if medication == "" || s.PatientID == "" {
		return nil, nil
	}

	p, err := r.patients.GetByID(ctx, s.PatientID)
	if err != nil {
		// Prescriptions reference patients loosely; no chart means no allergies on file.
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var alerts []Alert
	for _, allergy := range p.Allergies {
		a := strings.ToLower(strings.TrimSpace(allergy))
		if a == "" || !strings.Contains(medication, a) {
			continue
		}
		alerts = append(alerts, Alert{
			Rule:     r.Name(),
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("Patient %s is allergic to %s", p.Name, allergy),
		})
	}
	return alerts, nil
}
