package prescription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	p := &Prescription{ID: "RX002", PatientName: "Sara Mohammed", Medication: "Albuterol Inhaler"}

	assert.True(t, p.Matches("albuterol"))
	assert.True(t, p.Matches("sara"))
	assert.True(t, p.Matches("rx002"))
	assert.True(t, p.Matches(""))
	assert.False(t, p.Matches("metformin"))
}

func TestTransitionTo(t *testing.T) {
	p := &Prescription{Status: StatusActive}
	require.NoError(t, p.TransitionTo(StatusCompleted))
	assert.ErrorIs(t, p.TransitionTo(StatusActive), ErrInvalidStatusTransition)
	assert.ErrorIs(t, p.TransitionTo(StatusCancelled), ErrInvalidStatusTransition)
}

func TestCreateCommand_Validate(t *testing.T) {
	cmd := &CreatePrescriptionCommand{PatientID: " P001 ", Medication: " Metformin ", Date: "15-01-2024"}
	cmd.Normalize()
	errs := cmd.Validate()

	assert.Equal(t, "P001", cmd.PatientID)
	assert.NotContains(t, errs, "patientId")
	assert.NotContains(t, errs, "medication")
	for _, field := range []string{"patientName", "dosage", "frequency", "duration", "date"} {
		assert.Contains(t, errs, field)
	}
}
