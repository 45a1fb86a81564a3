package vitals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestRecordVitalsCommand_Validate(t *testing.T) {
	tests := []struct {
		name  string
		cmd   RecordVitalsCommand
		field string
	}{
		{"missing patient", RecordVitalsCommand{PatientName: "Sara Mohammed"}, "patientId"},
		{"bad blood pressure", RecordVitalsCommand{PatientID: "P002", PatientName: "Sara", BloodPressure: "120-80"}, "bp"},
		{"zero heart rate", RecordVitalsCommand{PatientID: "P002", PatientName: "Sara", HeartRate: ptr(0)}, "hr"},
		{"negative temperature", RecordVitalsCommand{PatientID: "P002", PatientName: "Sara", Temperature: ptr(-1.0)}, "temp"},
		{"spo2 above 100", RecordVitalsCommand{PatientID: "P002", PatientName: "Sara", SpO2: ptr(101)}, "spo2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cmd.Normalize()
			assert.Contains(t, tt.cmd.Validate(), tt.field)
		})
	}
}

func TestRecordVitalsCommand_ValidReading(t *testing.T) {
	cmd := RecordVitalsCommand{
		PatientID:     "P001",
		PatientName:   "Alemayehu Girma",
		BloodPressure: "130 / 85",
		HeartRate:     ptr(78),
		Temperature:   ptr(36.8),
		SpO2:          ptr(97),
	}
	cmd.Normalize()
	assert.Empty(t, cmd.Validate())
	assert.Equal(t, "130/85", cmd.BloodPressure)
}

func TestReading_Matches(t *testing.T) {
	r := &Reading{PatientID: "P003", PatientName: "Daniel Bekele"}
	assert.True(t, r.Matches("bekele"))
	assert.True(t, r.Matches("p003"))
	assert.False(t, r.Matches("sara"))
}
