package observability

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveCompilation(2, nil)
	m.ObserveCompilation(0, errors.New("cycle"))
	m.ObserveEvaluation(10*time.Millisecond, nil)
	m.ObserveBinding(3, 1)
	m.ObserveRequest("/schema", "GET", "200", time.Millisecond)
	m.ObserveStoreOperation("load", time.Millisecond, fmt.Errorf("redis: %w", domain.ErrStrategyNotFound))
	m.ObserveStoreOperation("save", time.Millisecond, nil)

	assert.Equal(t, 1.0, counterValue(t, reg, "magnetrade_compilations_total", map[string]string{"outcome": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "magnetrade_compilations_total", map[string]string{"outcome": "error"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "magnetrade_workflows_extracted_total", nil))
	assert.Equal(t, 3.0, counterValue(t, reg, "magnetrade_result_bindings_total", map[string]string{"outcome": "bound"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "magnetrade_result_bindings_total", map[string]string{"outcome": "missed"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "magnetrade_http_requests_total", map[string]string{"route": "/schema", "code": "200"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "magnetrade_store_operations_total", map[string]string{"op": "load", "outcome": "not_found"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "magnetrade_store_operations_total", map[string]string{"op": "save", "outcome": "ok"}))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCompilation(1, nil)
		m.ObserveEvaluation(time.Second, nil)
		m.ObserveBinding(1, 1)
		m.ObserveRequest("/", "GET", "200", time.Second)
		m.ObserveStoreOperation("save", time.Second, nil)
	})
}
