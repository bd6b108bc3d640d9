package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"srtmon/internal/core/domain"
)

type HealthChecker struct {
	checks []HealthCheck
	mu     sync.RWMutex
}

type HealthCheck struct {
	Name    string
	Check   func(ctx context.Context) error
	Timeout time.Duration
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func (s HealthStatus) Healthy() bool {
	return s.Status == "healthy"
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make([]HealthCheck, 0),
	}
}

func (h *HealthChecker) AddCheck(name string, check func(ctx context.Context) error, timeout time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.checks = append(h.checks, HealthCheck{
		Name:    name,
		Check:   check,
		Timeout: timeout,
	})
}

// CheckAll runs every check with its own timeout.
func (h *HealthChecker) CheckAll(ctx context.Context) HealthStatus {
	h.mu.RLock()
	checks := make([]HealthCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]string, len(checks)),
	}

	for _, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
		err := check.Check(checkCtx)
		cancel()

		if err != nil {
			status.Status = "unhealthy"
			status.Checks[check.Name] = err.Error()
		} else {
			status.Checks[check.Name] = "healthy"
		}
	}

	return status
}

// StatsFreshnessCheck fails when a configured monitor has not completed a
// poll within maxAge. An unconfigured monitor is healthy.
func StatsFreshnessCheck(state func() domain.MonitorState, maxAge time.Duration, now func() time.Time) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		s := state()
		if !s.Target.Configured() {
			return nil
		}
		if s.PolledAt.IsZero() {
			return fmt.Errorf("no stats received yet")
		}
		if age := now().Sub(s.PolledAt); age > maxAge {
			return fmt.Errorf("stats are %s old", age.Truncate(time.Millisecond))
		}
		return nil
	}
}
