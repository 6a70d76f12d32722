package monitor_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
	"github.com/tantalor93/resolverbench/pkg/monitor"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func float(v float64) *float64 { return &v }

func results() []dnsbench.QueryResult {
	return []dnsbench.QueryResult{
		{ResolverName: "Cloudflare", ResolverIP: "1.1.1.1", Domain: "example.com", RecordType: "A", Status: dnsbench.StatusSuccess, LatencyMs: 200, Answers: []string{"93.184.216.34"}},
		{ResolverName: "Google", ResolverIP: "8.8.8.8", Domain: "example.com", RecordType: "A", Status: dnsbench.StatusNXDomain, LatencyMs: 300, ErrorMessage: "NXDOMAIN"},
	}
}

func fixed(res []dnsbench.QueryResult) monitor.RunnerFunc {
	return func(context.Context) ([]dnsbench.QueryResult, error) {
		return res, nil
	}
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestMonitor_RunAlerts(t *testing.T) {
	tests := []struct {
		name                 string
		latencyThreshold     *float64
		failureRateThreshold *float64
		want                 []monitor.Alert
	}{
		{
			name:             "high latency",
			latencyThreshold: float(100),
			want: []monitor.Alert{
				{Resolver: "Cloudflare", Kind: monitor.HighLatency, Value: 200, Threshold: 100},
			},
		},
		{
			name:                 "high failure rate",
			failureRateThreshold: float(5),
			want: []monitor.Alert{
				{Resolver: "Google", Kind: monitor.HighFailureRate, Value: 100, Threshold: 5},
			},
		},
		{
			name:                 "both thresholds",
			latencyThreshold:     float(100),
			failureRateThreshold: float(5),
			want: []monitor.Alert{
				{Resolver: "Cloudflare", Kind: monitor.HighLatency, Value: 200, Threshold: 100},
				{Resolver: "Google", Kind: monitor.HighFailureRate, Value: 100, Threshold: 5},
			},
		},
		{
			name:                 "thresholds not breached",
			latencyThreshold:     float(200),
			failureRateThreshold: float(100),
		},
		{
			name: "no thresholds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := monitor.Monitor{
				Benchmark:            fixed(results()),
				Interval:             time.Second,
				Duration:             time.Second,
				LatencyThreshold:     tt.latencyThreshold,
				FailureRateThreshold: tt.failureRateThreshold,
				Clock:                newFakeClock(),
			}

			var cycles []monitor.Cycle
			err := m.Run(context.Background(), func(c monitor.Cycle) { cycles = append(cycles, c) })

			require.NoError(t, err)
			require.Len(t, cycles, 1)
			assert.Equal(t, tt.want, cycles[0].Alerts)
			require.Len(t, cycles[0].Resolvers, 2)
			assert.Equal(t, "Cloudflare", cycles[0].Resolvers[0].ResolverName)
			assert.Equal(t, "Google", cycles[0].Resolvers[1].ResolverName)
		})
	}
}

func TestMonitor_RunCycles(t *testing.T) {
	clock := newFakeClock()
	runs := 0
	m := monitor.Monitor{
		Benchmark: monitor.RunnerFunc(func(context.Context) ([]dnsbench.QueryResult, error) {
			runs++
			return results(), nil
		}),
		Interval: 10 * time.Second,
		Duration: 35 * time.Second,
		Clock:    clock,
	}

	var timestamps []time.Time
	err := m.Run(context.Background(), func(c monitor.Cycle) { timestamps = append(timestamps, c.Timestamp) })

	require.NoError(t, err)
	// cycles start at 0s, 10s, 20s, 30s, the elapsed time after the fourth cycle exceeds the duration
	assert.Equal(t, 4, runs)
	assert.Equal(t, int64(4), m.Cycles())
	assert.Len(t, timestamps, 4)
	assert.Equal(t, 30*time.Second, timestamps[3].Sub(timestamps[0]))
	assert.Equal(t, monitor.Stopped, m.State())
}

func TestMonitor_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cycleCtxErr error
	m := monitor.Monitor{
		Benchmark: monitor.RunnerFunc(func(ctx context.Context) ([]dnsbench.QueryResult, error) {
			// cancellation during a cycle does not interrupt the cycle
			cancel()
			cycleCtxErr = ctx.Err()
			return results(), nil
		}),
		Interval: time.Hour,
	}

	cycles := 0
	done := make(chan error)
	go func() {
		done <- m.Run(ctx, func(monitor.Cycle) { cycles++ })
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitoring was not stopped by cancellation")
	}
	assert.Equal(t, 1, cycles)
	assert.NoError(t, cycleCtxErr)
	assert.Equal(t, monitor.Stopped, m.State())
}

func TestMonitor_RunLog(t *testing.T) {
	buf := bytes.Buffer{}
	m := monitor.Monitor{
		Benchmark:        fixed(results()),
		Duration:         time.Second,
		LatencyThreshold: float(100),
		Sink:             &buf,
		Clock:            newFakeClock(),
	}

	require.NoError(t, m.Run(context.Background(), nil))

	lines := logLines(t, &buf)
	require.Len(t, lines, 5)
	assert.Equal(t, "Monitoring started", lines[0]["message"])
	assert.Equal(t, "Cloudflare", lines[1]["resolver"])
	assert.InDelta(t, 200, lines[1]["avg_latency_ms"], 0.001)
	assert.InDelta(t, 100, lines[1]["success_rate"], 0.001)
	assert.Equal(t, "Google", lines[2]["resolver"])
	assert.NotContains(t, lines[2], "avg_latency_ms")
	assert.Equal(t, "warn", lines[3]["level"])
	assert.Equal(t, "Cloudflare: High latency 200.00ms (threshold 100.00ms)", lines[3]["message"])
	assert.Equal(t, "Monitoring ended", lines[4]["message"])
}

func TestMonitor_RunBenchmarkError(t *testing.T) {
	buf := bytes.Buffer{}
	m := monitor.Monitor{
		Benchmark: dnsbench.Benchmark{Domains: []string{"example.com"}},
		Sink:      &buf,
		Clock:     newFakeClock(),
	}

	cycles := 0
	err := m.Run(context.Background(), func(monitor.Cycle) { cycles++ })

	require.ErrorIs(t, err, dnsbench.ErrConfiguration)
	assert.Zero(t, cycles)
	lines := logLines(t, &buf)
	require.NotEmpty(t, lines)
	assert.Equal(t, "Monitoring started", lines[0]["message"])
	assert.Equal(t, "Monitoring ended", lines[len(lines)-1]["message"])
}

func TestAlerts(t *testing.T) {
	resolvers := []analysis.ResolverStats{
		{ResolverName: "dead", GroupStats: analysis.GroupStats{TotalQueries: 4}},
		{ResolverName: "empty"},
		{ResolverName: "ok", GroupStats: analysis.GroupStats{TotalQueries: 4, SuccessfulQueries: 4, SuccessRate: 100, AvgLatency: analysis.Ms(100)}},
	}

	alerts := monitor.Alerts(resolvers, float(100), float(50))

	assert.Equal(t, []monitor.Alert{
		{Resolver: "dead", Kind: monitor.HighFailureRate, Value: 100, Threshold: 50},
	}, alerts)
}
