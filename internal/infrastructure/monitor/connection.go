package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pinger is any dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type check struct {
	name   string
	pinger Pinger
}

// Monitor pings the registered dependencies on a cron schedule and caches the result
// for the health endpoint.
type Monitor struct {
	checks   []check
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := 3 * time.Second
	if interval < timeout {
		timeout = interval
	}
	return &Monitor{
		interval: interval,
		timeout:  timeout,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}
}

// Add registers a named dependency. Call before Start.
func (m *Monitor) Add(name string, p Pinger) {
	if p == nil {
		return
	}
	m.checks = append(m.checks, check{name: name, pinger: p})
}

// Start runs a first check synchronously and schedules the rest.
func (m *Monitor) Start() error {
	m.Refresh(context.Background())

	schedule := fmt.Sprintf("@every %ds", int(m.interval.Seconds()))
	if _, err := m.cron.AddFunc(schedule, func() { m.Refresh(context.Background()) }); err != nil {
		return fmt.Errorf("schedule health checks: %w", err)
	}
	m.cron.Start()
	m.logger.Info("health monitor started", zap.Duration("interval", m.interval))
	return nil
}

// Stop halts the scheduler and waits for a running check, bounded by ctx.
func (m *Monitor) Stop(ctx context.Context) error {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refresh pings every dependency once and stores the outcome.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Healthy:   true,
		Checks:    make(map[string]bool, len(m.checks)),
		LastCheck: time.Now().UTC(),
	}
	for _, p := range m.checks {
		pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := p.pinger.Ping(pingCtx)
		cancel()

		status.Checks[p.name] = err == nil
		if err != nil {
			status.Healthy = false
			m.logger.Warn("dependency unhealthy", zap.String("dependency", p.name), zap.Error(err))
		}
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

// GetStatus returns a copy of the last check result.
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	checks := make(map[string]bool, len(m.status.Checks))
	for name, ok := range m.status.Checks {
		checks[name] = ok
	}
	status := m.status
	status.Checks = checks
	return status
}
