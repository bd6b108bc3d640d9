package services

import (
	"context"
	"fmt"
	"time"

	"srtmon/internal/core/domain"
	"srtmon/internal/core/ports"
	"srtmon/pkg/observable"
	"srtmon/pkg/tracing"
)

// StatsMonitor polls an SRT stats endpoint for one publisher stream and keeps
// rolling windows of its receive drop and loss deltas.
//
// Every derived value (averages, current publisher) is computed from the
// current state on read. State changes are published synchronously to
// subscribers.
type StatsMonitor struct {
	source ports.StatsSource
	now    func() time.Time
	state  *observable.Value[domain.MonitorState]
}

func NewStatsMonitor(source ports.StatsSource, settings domain.MonitorSettings) *StatsMonitor {
	return &StatsMonitor{
		source: source,
		now:    time.Now,
		state:  observable.New(domain.MonitorState{Target: settings}),
	}
}

// SetClock replaces the clock used to stamp polls
func (m *StatsMonitor) SetClock(now func() time.Time) {
	m.now = now
}

// Poll fetches the stats document once and folds it into the windows.
// Without a configured stats URL it does nothing. Fetch and decode failures
// are returned as is and leave the state untouched. A result that arrives
// after the monitor was retargeted is discarded.
func (m *StatsMonitor) Poll(ctx context.Context) error {
	target := m.Settings()
	if !target.Configured() {
		return nil
	}

	ctx, span := tracing.TracePoll(ctx, string(target.StreamID), target.StatsURL)
	defer span.End()

	next, err := m.source.Fetch(ctx, target.StatsURL)
	if err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("poll %s: %w", target.StatsURL, err)
	}

	at := m.now()
	return m.state.UpdateIf(ctx, func(s *domain.MonitorState) bool {
		if s.Target != target {
			return false
		}
		s.Advance(next, at)
		return true
	})
}

// Clear drops the current snapshot, its timestamp and both windows.
func (m *StatsMonitor) Clear(ctx context.Context) error {
	return m.state.Update(ctx, func(s *domain.MonitorState) {
		*s = s.Cleared()
	})
}

// Retarget switches to a new (statsUrl, streamId) pair and clears.
func (m *StatsMonitor) Retarget(ctx context.Context, settings domain.MonitorSettings) error {
	return m.state.Set(ctx, domain.MonitorState{Target: settings})
}

func (m *StatsMonitor) Settings() domain.MonitorSettings {
	return m.state.Get().Target
}

func (m *StatsMonitor) State() domain.MonitorState {
	return m.state.Get()
}

func (m *StatsMonitor) Report() domain.MonitorReport {
	return domain.NewMonitorReport(m.state.Get())
}

func (m *StatsMonitor) Subscribe(l observable.Listener[domain.MonitorState]) func() {
	return m.state.Subscribe(l)
}

func (m *StatsMonitor) AverageDrop() (int64, bool) {
	return m.state.Get().Drops.Average()
}

func (m *StatsMonitor) AverageLoss() (int64, bool) {
	return m.state.Get().Losses.Average()
}

func (m *StatsMonitor) DropHistory() []int64 {
	return m.state.Get().Drops.Values()
}

func (m *StatsMonitor) LossHistory() []int64 {
	return m.state.Get().Losses.Values()
}

// CurrentPublisher returns the target stream's entry in the latest snapshot.
func (m *StatsMonitor) CurrentPublisher() (domain.PublisherStats, bool) {
	return m.state.Get().Publisher()
}

// CurrentStatsTime returns when the latest snapshot was taken.
func (m *StatsMonitor) CurrentStatsTime() (time.Time, bool) {
	at := m.state.Get().PolledAt
	return at, !at.IsZero()
}
