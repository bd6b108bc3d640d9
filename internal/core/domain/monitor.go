package domain

import "time"

// MonitorSettings is the (statsUrl, streamId) pair a monitor polls.
// An empty StatsURL means the monitor is not configured.
type MonitorSettings struct {
	StatsURL string   `json:"statsUrl"`
	StreamID StreamID `json:"streamId"`
}

func (s MonitorSettings) Configured() bool {
	return s.StatsURL != ""
}

// MonitorState is everything a monitor knows after its latest poll.
type MonitorState struct {
	Target   MonitorSettings
	Current  *StatsSnapshot
	PolledAt time.Time
	Drops    DeltaWindow
	Losses   DeltaWindow
}

// Advance folds a freshly fetched snapshot into the state. Deltas are taken
// only when the target publisher is present in both the previous and the
// next snapshot; otherwise both windows start over. Counter resets produce
// negative deltas, which are kept as is.
func (s *MonitorState) Advance(next *StatsSnapshot, at time.Time) {
	prev, hadPrev := s.Current.Publisher(s.Target.StreamID)
	cur, hasCur := next.Publisher(s.Target.StreamID)

	if hadPrev && hasCur {
		s.Drops.Push(cur.PktRcvDrop - prev.PktRcvDrop)
		s.Losses.Push(cur.PktRcvLoss - prev.PktRcvLoss)
	} else {
		s.Drops.Reset()
		s.Losses.Reset()
	}

	s.Current = next
	s.PolledAt = at
}

// Cleared returns an empty state that keeps the target.
func (s MonitorState) Cleared() MonitorState {
	return MonitorState{Target: s.Target}
}

func (s MonitorState) Publisher() (PublisherStats, bool) {
	return s.Current.Publisher(s.Target.StreamID)
}

// MonitorReport is the wire form of a MonitorState with all derived values
// computed.
type MonitorReport struct {
	StatsURL    string          `json:"statsUrl"`
	StreamID    StreamID        `json:"streamId"`
	Status      string          `json:"status,omitempty"`
	PolledAt    *time.Time      `json:"polledAt,omitempty"`
	Publisher   *PublisherStats `json:"publisher,omitempty"`
	DropHistory []int64         `json:"dropHistory"`
	LossHistory []int64         `json:"lossHistory"`
	AverageDrop *int64          `json:"averageDrop,omitempty"`
	AverageLoss *int64          `json:"averageLoss,omitempty"`
}

func NewMonitorReport(s MonitorState) MonitorReport {
	report := MonitorReport{
		StatsURL:    s.Target.StatsURL,
		StreamID:    s.Target.StreamID,
		DropHistory: s.Drops.Values(),
		LossHistory: s.Losses.Values(),
	}

	if s.Current != nil {
		report.Status = s.Current.Status
	}
	if !s.PolledAt.IsZero() {
		at := s.PolledAt
		report.PolledAt = &at
	}
	if p, ok := s.Publisher(); ok {
		report.Publisher = &p
	}
	if avg, ok := s.Drops.Average(); ok {
		report.AverageDrop = &avg
	}
	if avg, ok := s.Losses.Average(); ok {
		report.AverageLoss = &avg
	}
	return report
}
