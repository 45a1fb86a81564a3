package vitals

import (
	"regexp"
	"strings"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain"
)

const IDPrefix = "VS"

var bloodPressurePattern = regexp.MustCompile(`^\d{2,3}/\d{2,3}$`)

// Reading is one set of vital signs taken at the bedside.
type Reading struct {
	ID          string    `gorm:"column:id;type:varchar(20);primaryKey" json:"id"`
	PatientID   string    `gorm:"column:patient_id;type:varchar(20);not null;index" json:"patientId"`
	PatientName string    `gorm:"column:patient_name;type:varchar(200);not null;index" json:"patientName"`
	RecordedAt  time.Time `gorm:"column:recorded_at;not null;index" json:"recordedAt"`

	BloodPressure string   `gorm:"column:blood_pressure;type:varchar(10)" json:"bp,omitempty"` // "120/80"
	HeartRate     *int     `gorm:"column:heart_rate" json:"hr,omitempty"`
	Temperature   *float64 `gorm:"column:temperature" json:"temp,omitempty"` // °C
	SpO2          *int     `gorm:"column:spo2" json:"spo2,omitempty"`

	RecordedBy string `gorm:"column:recorded_by;type:varchar(200)" json:"recordedBy,omitempty"`

	Position  int64     `gorm:"column:position;not null;index" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Reading) TableName() string {
	return "vital_signs"
}

func (r *Reading) Matches(search string) bool {
	return domain.ContainsFold(r.PatientName, search) || domain.ContainsFold(r.PatientID, search)
}

type RecordVitalsCommand struct {
	PatientID     string
	PatientName   string
	RecordedAt    *time.Time
	BloodPressure string
	HeartRate     *int
	Temperature   *float64
	SpO2          *int
	RecordedBy    string
}

func (c *RecordVitalsCommand) Normalize() {
	c.PatientID = strings.TrimSpace(c.PatientID)
	c.PatientName = strings.TrimSpace(c.PatientName)
	c.BloodPressure = strings.ReplaceAll(c.BloodPressure, " ", "")
	c.RecordedBy = strings.TrimSpace(c.RecordedBy)
}

func (c *RecordVitalsCommand) Validate() map[string]string {
	errs := map[string]string{}
	if c.PatientID == "" {
		errs["patientId"] = "Patient is required"
	}
	if c.PatientName == "" {
		errs["patientName"] = "Patient name is required"
	}
	if c.BloodPressure != "" && !bloodPressurePattern.MatchString(c.BloodPressure) {
		errs["bp"] = "Blood pressure must be formatted systolic/diastolic"
	}
	if c.HeartRate != nil && *c.HeartRate <= 0 {
		errs["hr"] = "Heart rate must be greater than 0"
	}
	if c.Temperature != nil && *c.Temperature <= 0 {
		errs["temp"] = "Temperature must be greater than 0"
	}
	if c.SpO2 != nil && (*c.SpO2 <= 0 || *c.SpO2 > 100) {
		errs["spo2"] = "SpO2 must be between 1 and 100"
	}
	return errs
}

type ListVitalsQuery struct {
	Search string
}
