package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollectorDefaultNamespace(t *testing.T) {
	c := NewCollector("")
	c.ObserveOccurrence("Stateless", "processed")

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	assert.Equal(t, "descres_processor_occurrences_total", families[0].GetName())
}

func TestObserveOccurrence(t *testing.T) {
	c := NewCollector("test")
	c.ObserveOccurrence("Stateless", "processed")
	c.ObserveOccurrence("Stateless", "processed")
	c.ObserveOccurrence("Lock", "skipped")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.occurrences.WithLabelValues("Stateless", "processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.occurrences.WithLabelValues("Lock", "skipped")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.occurrences))
}

func TestObserveFinding(t *testing.T) {
	c := NewCollector("test")
	c.ObserveFinding("KIND_MISMATCH", "error")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.findings.WithLabelValues("KIND_MISMATCH", "error")))
}

func TestObservePass(t *testing.T) {
	c := NewCollector("test")
	c.ObservePass("shop", 0.01, 3, false)
	c.ObservePass("shop", 0.02, 4, true)

	assert.Equal(t, 4.0, testutil.ToFloat64(c.components.WithLabelValues("shop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.passes.WithLabelValues("shop", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.passes.WithLabelValues("shop", "false")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.passDuration))
}

func TestHandler(t *testing.T) {
	c := NewCollector("test")
	c.ObserveFinding("CLASS_MISMATCH", "error")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_processor_findings_total{code="CLASS_MISMATCH",severity="error"} 1`)
}
