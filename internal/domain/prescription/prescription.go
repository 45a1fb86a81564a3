package prescription

import (
	"slices"
	"strings"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain"
)

const IDPrefix = "RX"

type PrescriptionStatus string

const (
	StatusActive    PrescriptionStatus = "Active"
	StatusCompleted PrescriptionStatus = "Completed"
	StatusCancelled PrescriptionStatus = "Cancelled"
)

func (s PrescriptionStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

var transitions = map[PrescriptionStatus][]PrescriptionStatus{
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

type Prescription struct {
	ID           string             `gorm:"column:id;type:varchar(20);primaryKey" json:"id"`
	PatientName  string             `gorm:"column:patient_name;type:varchar(200);not null;index" json:"patientName"`
	PatientID    string             `gorm:"column:patient_id;type:varchar(20);not null;index" json:"patientId"`
	Medication   string             `gorm:"column:medication;type:varchar(255);not null;index" json:"medication"`
	Dosage       string             `gorm:"column:dosage;type:varchar(50);not null" json:"dosage"`       // e.g. "500mg"
	Frequency    string             `gorm:"column:frequency;type:varchar(100);not null" json:"frequency"` // e.g. "Twice daily"
	Duration     string             `gorm:"column:duration;type:varchar(50);not null" json:"duration"`   // e.g. "90 days"
	Date         string             `gorm:"column:date;type:varchar(10);not null" json:"date"`
	Status       PrescriptionStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Instructions string             `gorm:"column:instructions;type:text" json:"instructions,omitempty"`

	Position  int64     `gorm:"column:position;not null;index" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

func (p *Prescription) CanTransitionTo(s PrescriptionStatus) bool {
	return slices.Contains(transitions[p.Status], s)
}

func (p *Prescription) TransitionTo(s PrescriptionStatus) error {
	if !p.CanTransitionTo(s) {
		return ErrInvalidStatusTransition
	}
	p.Status = s
	return nil
}

// Matches searches patient name, medication and prescription id.
func (p *Prescription) Matches(search string) bool {
	return domain.ContainsFold(p.PatientName, search) ||
		domain.ContainsFold(p.Medication, search) ||
		domain.ContainsFold(p.ID, search)
}

type CreatePrescriptionCommand struct {
	PatientID    string
	PatientName  string
	Medication   string
	Dosage       string
	Frequency    string
	Duration     string
	Date         string
	Instructions string
}

func (c *CreatePrescriptionCommand) Normalize() {
	c.PatientID = strings.TrimSpace(c.PatientID)
	c.PatientName = strings.TrimSpace(c.PatientName)
	c.Medication = strings.TrimSpace(c.Medication)
	c.Dosage = strings.TrimSpace(c.Dosage)
	c.Frequency = strings.TrimSpace(c.Frequency)
	c.Duration = strings.TrimSpace(c.Duration)
	c.Date = strings.TrimSpace(c.Date)
	c.Instructions = strings.TrimSpace(c.Instructions)
}

func (c *CreatePrescriptionCommand) Validate() map[string]string {
	errs := map[string]string{}
	required := []struct{ field, value, msg string }{
		{"patientId", c.PatientID, "Patient is required"},
		{"patientName", c.PatientName, "Patient name is required"},
		{"medication", c.Medication, "Medication is required"},
		{"dosage", c.Dosage, "Dosage is required"},
		{"frequency", c.Frequency, "Frequency is required"},
		{"duration", c.Duration, "Duration is required"},
	}
	for _, r := range required {
		if r.value == "" {
			errs[r.field] = r.msg
		}
	}
	if c.Date != "" {
		if _, err := time.Parse("2006-01-02", c.Date); err != nil {
			errs["date"] = "Date must be formatted YYYY-MM-DD"
		}
	}
	return errs
}

type ListPrescriptionsQuery struct {
	Search string
}
