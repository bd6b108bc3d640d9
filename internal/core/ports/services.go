package ports

import (
	"context"
	"time"

	"srtmon/internal/core/domain"
	"srtmon/pkg/observable"
)

type StatsMonitor interface {
	Poll(ctx context.Context) error
	Clear(ctx context.Context) error
	Retarget(ctx context.Context, settings domain.MonitorSettings) error
	Settings() domain.MonitorSettings
	State() domain.MonitorState
	Report() domain.MonitorReport
	Subscribe(l observable.Listener[domain.MonitorState]) (unsubscribe func())
}

type SettingsService interface {
	Get() domain.ViewerSettings
	Set(ctx context.Context, settings domain.ViewerSettings) error
}

type PollObserver interface {
	ObservePoll(duration time.Duration, err error)
}
