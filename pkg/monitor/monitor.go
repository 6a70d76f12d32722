// Package monitor repeatedly benchmarks resolvers and raises alerts when they degrade.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
)

// DefaultInterval is the default pause between monitoring cycles.
const DefaultInterval = 60 * time.Second

// Runner executes a single benchmark, it is implemented by dnsbench.Benchmark.
type Runner interface {
	Run(ctx context.Context) ([]dnsbench.QueryResult, error)
}

// RunnerFunc is an adapter to allow the use of ordinary functions as Runner.
type RunnerFunc func(ctx context.Context) ([]dnsbench.QueryResult, error)

// Run calls f(ctx).
func (f RunnerFunc) Run(ctx context.Context) ([]dnsbench.QueryResult, error) {
	return f(ctx)
}

// Clock abstracts the passing of time.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// State is a state of the monitoring loop.
type State int32

const (
	// Idle the monitoring was not started yet.
	Idle State = iota
	// RunningCycle the benchmark of a cycle is running.
	RunningCycle
	// Sleeping waiting for the next cycle.
	Sleeping
	// Stopped the monitoring ended.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case RunningCycle:
		return "RUNNING_CYCLE"
	case Sleeping:
		return "SLEEPING"
	case Stopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// AlertKind is a kind of breached threshold.
type AlertKind string

const (
	// HighLatency the average latency of successful queries exceeded the latency threshold.
	HighLatency AlertKind = "HighLatency"
	// HighFailureRate the percentage of failed queries exceeded the failure rate threshold.
	HighFailureRate AlertKind = "HighFailureRate"
)

// Alert reports a single resolver breaching a single threshold.
type Alert struct {
	Resolver  string    `json:"resolver"`
	Kind      AlertKind `json:"kind"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
}

func (a Alert) String() string {
	switch a.Kind {
	case HighLatency:
		return fmt.Sprintf("%s: High latency %.2fms (threshold %.2fms)", a.Resolver, a.Value, a.Threshold)
	case HighFailureRate:
		return fmt.Sprintf("%s: High failure rate %.2f%% (threshold %.2f%%)", a.Resolver, a.Value, a.Threshold)
	default:
		return fmt.Sprintf("%s: %s %.2f (threshold %.2f)", a.Resolver, a.Kind, a.Value, a.Threshold)
	}
}

// Cycle is the outcome of a single monitoring cycle.
type Cycle struct {
	Timestamp time.Time                `json:"timestamp"`
	Resolvers []analysis.ResolverStats `json:"resolvers"`
	Alerts    []Alert                  `json:"alerts"`
}

// Monitor runs the benchmark repeatedly with a pause of Interval between the cycles, until the next cycle would
// start after Duration elapsed or the context is cancelled.
type Monitor struct {
	// Benchmark is executed in each cycle.
	Benchmark Runner
	// Interval is the pause between cycles, DefaultInterval when 0.
	Interval time.Duration
	// Duration is the total monitoring time, the monitor runs until cancelled when 0.
	Duration time.Duration
	// LatencyThreshold in milliseconds, no latency alerts are raised when nil.
	LatencyThreshold *float64
	// FailureRateThreshold in percent, no failure rate alerts are raised when nil.
	FailureRateThreshold *float64
	// Sink receives structured log of the monitoring, discarded when nil.
	Sink io.Writer
	// Clock is the source of time, the wall clock when nil.
	Clock Clock

	state  atomic.Int32
	cycles atomic.Int64
}

// State returns the current state of the monitoring loop.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// Cycles returns the number of completed cycles.
func (m *Monitor) Cycles() int64 {
	return m.cycles.Load()
}

// Run executes the monitoring loop, emit is called after each completed cycle. Cancellation of ctx is observed
// only between cycles and while sleeping, a running cycle is always completed. An error is returned only
// when the benchmark cannot be executed.
func (m *Monitor) Run(ctx context.Context, emit func(Cycle)) error {
	if m.Benchmark == nil {
		return errors.New("no benchmark to monitor")
	}
	if m.Interval < 0 || m.Duration < 0 {
		return errors.New("monitoring interval and duration must not be negative")
	}
	interval := m.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	clock := m.Clock
	if clock == nil {
		clock = realClock{}
	}
	sink := m.Sink
	if sink == nil {
		sink = io.Discard
	}
	logger := zerolog.New(sink).With().Timestamp().Logger()

	logger.Info().Dur("interval", interval).Dur("duration", m.Duration).Msg("Monitoring started")
	start := clock.Now()

	var err error
loop:
	for {
		m.state.Store(int32(RunningCycle))
		var cycle Cycle
		cycle, err = m.cycle(ctx, clock)
		if err != nil {
			logger.Error().Err(err).Msg("Monitoring cycle failed")
			break
		}
		m.cycles.Add(1)
		logCycle(&logger, cycle)
		if emit != nil {
			emit(cycle)
		}

		// no cycle is started after the duration elapses
		if m.Duration > 0 && clock.Now().Sub(start)+interval >= m.Duration {
			break
		}
		if ctx.Err() != nil {
			break
		}

		m.state.Store(int32(Sleeping))
		select {
		case <-ctx.Done():
			break loop
		case <-clock.After(interval):
		}
	}

	m.state.Store(int32(Stopped))
	logger.Info().Int64("cycles", m.Cycles()).Msg("Monitoring ended")
	return err
}

func (m *Monitor) cycle(ctx context.Context, clock Clock) (Cycle, error) {
	// queries in flight are finished even if the monitoring is being stopped
	results, err := m.Benchmark.Run(context.WithoutCancel(ctx))
	if err != nil {
		return Cycle{}, err
	}

	resolvers := analysis.New(results).Resolvers()
	return Cycle{
		Timestamp: clock.Now(),
		Resolvers: resolvers,
		Alerts:    Alerts(resolvers, m.LatencyThreshold, m.FailureRateThreshold),
	}, nil
}

// Alerts evaluates the thresholds against the resolver statistics. Latency threshold is only evaluated
// for resolvers with at least one successful query.
func Alerts(resolvers []analysis.ResolverStats, latencyThreshold, failureRateThreshold *float64) []Alert {
	var alerts []Alert
	for _, r := range resolvers {
		if latencyThreshold != nil && r.AvgLatency.Valid && r.AvgLatency.Value > *latencyThreshold {
			alerts = append(alerts, Alert{Resolver: r.ResolverName, Kind: HighLatency, Value: r.AvgLatency.Value, Threshold: *latencyThreshold})
		}
		if failureRateThreshold != nil && r.TotalQueries > 0 && r.FailureRate() > *failureRateThreshold {
			alerts = append(alerts, Alert{Resolver: r.ResolverName, Kind: HighFailureRate, Value: r.FailureRate(), Threshold: *failureRateThreshold})
		}
	}
	return alerts
}

func logCycle(logger *zerolog.Logger, c Cycle) {
	for _, r := range c.Resolvers {
		ev := logger.Info().Str("resolver", r.ResolverName).Float64("success_rate", r.SuccessRate)
		if r.AvgLatency.Valid {
			ev = ev.Float64("avg_latency_ms", r.AvgLatency.Value)
		}
		ev.Msg("Resolver statistics")
	}
	for _, a := range c.Alerts {
		logger.Warn().
			Str("resolver", a.Resolver).
			Str("kind", string(a.Kind)).
			Float64("value", a.Value).
			Float64("threshold", a.Threshold).
			Msg(a.String())
	}
}
