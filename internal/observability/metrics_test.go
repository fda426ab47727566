package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.Queries.WithLabelValues("success").Inc()
	m.IncidentsCurrent.Set(12)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "incident_map_queries_total")
	assert.Contains(t, names, "incident_map_incidents_current")
	assert.Equal(t, 12.0, testutil.ToFloat64(m.IncidentsCurrent))

	// A second set on its own registry does not collide.
	assert.NotPanics(t, func() { NewMetricsWithRegistry(prometheus.NewRegistry()) })
}
