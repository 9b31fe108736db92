package prometheus

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/quillpost/quillpost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snapshot quillpost.MetricsSnapshot
}

func (f fakeSource) MetricsSnapshot() quillpost.MetricsSnapshot { return f.snapshot }

func TestCollectorExposesCounters(t *testing.T) {
	c, err := NewCollectorFromSource(fakeSource{snapshot: quillpost.MetricsSnapshot{
		Counters: map[quillpost.MetricID]uint64{
			quillpost.MetricLoginSuccess: 3,
			quillpost.MetricAuthRejected: 7,
		},
		Histograms: map[quillpost.MetricID][]uint64{},
	}})
	require.NoError(t, err)

	expected := `
# HELP quillpost_login_success_total Logins that produced a session token.
# TYPE quillpost_login_success_total counter
quillpost_login_success_total 3
# HELP quillpost_auth_rejected_total Requests rejected as unauthenticated.
# TYPE quillpost_auth_rejected_total counter
quillpost_auth_rejected_total 7
`
	err = testutil.CollectAndCompare(c, strings.NewReader(expected),
		"quillpost_login_success_total", "quillpost_auth_rejected_total")
	assert.NoError(t, err)
}

func TestCollectorExposesHistogram(t *testing.T) {
	c, err := NewCollectorFromSource(fakeSource{snapshot: quillpost.MetricsSnapshot{
		Counters: map[quillpost.MetricID]uint64{},
		Histograms: map[quillpost.MetricID][]uint64{
			quillpost.MetricAuthenticateLatency: {1, 1, 1, 1, 1, 1, 1, 1},
		},
	}})
	require.NoError(t, err)

	expected := `
# HELP quillpost_authenticate_latency_seconds Token check latency.
# TYPE quillpost_authenticate_latency_seconds histogram
quillpost_authenticate_latency_seconds_bucket{le="0.005"} 1
quillpost_authenticate_latency_seconds_bucket{le="0.01"} 2
quillpost_authenticate_latency_seconds_bucket{le="0.025"} 3
quillpost_authenticate_latency_seconds_bucket{le="0.05"} 4
quillpost_authenticate_latency_seconds_bucket{le="0.1"} 5
quillpost_authenticate_latency_seconds_bucket{le="0.25"} 6
quillpost_authenticate_latency_seconds_bucket{le="0.5"} 7
quillpost_authenticate_latency_seconds_bucket{le="+Inf"} 8
quillpost_authenticate_latency_seconds_sum 0
quillpost_authenticate_latency_seconds_count 8
`
	err = testutil.CollectAndCompare(c, strings.NewReader(expected), "quillpost_authenticate_latency_seconds")
	assert.NoError(t, err)
}

func TestCollectorDisabledEngineEmitsNothing(t *testing.T) {
	c, err := NewCollectorFromSource(fakeSource{snapshot: quillpost.MetricsSnapshot{}})
	require.NoError(t, err)
	assert.Equal(t, 0, testutil.CollectAndCount(c))
}

func TestCollectorRegistersWithEngine(t *testing.T) {
	engine, err := quillpost.New().
		WithConfig(memoryConfig()).
		WithUserProvider(nopUsers{}).
		Build()
	require.NoError(t, err)
	defer engine.Close()

	c, err := NewCollector(engine)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewCollectorRejectsNil(t *testing.T) {
	_, err := NewCollector(nil)
	assert.ErrorIs(t, err, ErrNilSource)
	_, err = NewCollectorFromSource(nil)
	assert.ErrorIs(t, err, ErrNilSource)
}
