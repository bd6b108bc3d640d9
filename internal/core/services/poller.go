package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"srtmon/internal/core/domain"
	"srtmon/internal/core/ports"

	"go.uber.org/zap"
)

type pollable interface {
	Poll(ctx context.Context) error
}

// Poller drives a monitor on a fixed interval from a single goroutine, so its
// own polls never overlap. A failed poll is logged and the schedule goes on.
type Poller struct {
	monitor  pollable
	logger   *zap.SugaredLogger
	observer ports.PollObserver

	mu       sync.Mutex
	interval time.Duration
	resetCh  chan time.Duration
}

func NewPoller(monitor pollable, interval time.Duration, logger *zap.SugaredLogger) *Poller {
	return &Poller{
		monitor:  monitor,
		logger:   logger,
		interval: interval,
		resetCh:  make(chan time.Duration, 1),
	}
}

// SetObserver registers a sink for poll durations and outcomes
func (p *Poller) SetObserver(observer ports.PollObserver) {
	p.observer = observer
}

func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// SetInterval changes the schedule of a running poller. Non-positive
// intervals are ignored.
func (p *Poller) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if interval == p.interval {
		return
	}
	p.interval = interval

	select {
	case <-p.resetCh:
	default:
	}
	p.resetCh <- interval
}

// Run polls once immediately, then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval())
	defer ticker.Stop()

	p.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case interval := <-p.resetCh:
			ticker.Reset(interval)
			p.logger.Infow("poll interval changed", "interval", interval)
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	start := time.Now()
	err := p.monitor.Poll(ctx)
	duration := time.Since(start)

	if p.observer != nil {
		p.observer.ObservePoll(duration, err)
	}

	switch {
	case err == nil:
		p.logger.Debugw("poll completed", "duration_ms", duration.Milliseconds())
	case ctx.Err() != nil:
		// shutting down
	case errors.Is(err, domain.ErrMalformedStats):
		p.logger.Warnw("stats endpoint returned a malformed document", "error", err)
	default:
		p.logger.Warnw("poll failed", "error", err)
	}
}
