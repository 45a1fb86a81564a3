package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector_PrivateRegistry(t *testing.T) {
	c := NewCollector("healthlink", prometheus.NewRegistry())

	c.SafetyAlertsTotal.WithLabelValues("allergy_conflict").Inc()
	c.PrescriptionsIssued.Add(2)

	body := scrape(t, c)
	assert.Contains(t, body, `healthlink_clinical_safety_alerts_total{rule="allergy_conflict"} 1`)
	assert.Contains(t, body, "healthlink_clinical_prescriptions_issued_total 2")
}

func TestCollector_TwoRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("healthlink", prometheus.NewRegistry())
		NewCollector("healthlink", prometheus.NewRegistry())
	})
}
