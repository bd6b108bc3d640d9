package services

import (
	"context"
	"time"

	"srtmon/internal/core/domain"
	"srtmon/internal/core/ports"

	"go.uber.org/zap"
)

// SettingsSync keeps a monitor and its poller in line with the persisted
// viewer settings.
type SettingsSync struct {
	monitor         ports.StatsMonitor
	poller          *Poller
	defaultInterval time.Duration
	logger          *zap.SugaredLogger
}

func NewSettingsSync(monitor ports.StatsMonitor, poller *Poller, defaultInterval time.Duration, logger *zap.SugaredLogger) *SettingsSync {
	return &SettingsSync{
		monitor:         monitor,
		poller:          poller,
		defaultInterval: defaultInterval,
		logger:          logger,
	}
}

// Apply retargets the monitor only when the stats URL or stream changed, so
// rewriting the same pair keeps the windows. A record without an interval
// falls back to the default.
func (s *SettingsSync) Apply(v domain.ViewerSettings) {
	target := v.MonitorSettings()
	if s.monitor.Settings() != target {
		if err := s.monitor.Retarget(context.Background(), target); err != nil {
			s.logger.Warnw("retarget listeners failed", "stream_id", target.StreamID, "error", err)
		}
		s.logger.Infow("monitor retargeted", "stats_url", target.StatsURL, "stream_id", target.StreamID)
	}

	interval := v.PollInterval()
	if interval == 0 {
		interval = s.defaultInterval
	}
	s.poller.SetInterval(interval)
}
