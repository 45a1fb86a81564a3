package postgres

import (
	"errors"
	"testing"

	"github.com/eyualpha/HealthLink/internal/domain/patient"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%sara%", containsPattern("sara"))
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
	assert.Equal(t, `%c:\\x%`, containsPattern(`c:\x`))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(gorm.ErrRecordNotFound, patient.ErrPatientNotFound), patient.ErrPatientNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, notFound(other, patient.ErrPatientNotFound))
}
