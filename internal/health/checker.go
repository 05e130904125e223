// Package health provides periodic health checks with optional recovery.
// The daemon runs the sqlite, catalog and data-dir checks every 60 seconds.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nutrio/nutrio/internal/infra/metrics"
)

// Pinger is satisfied by the SQLite store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Validator is satisfied by the reward catalog.
type Validator interface {
	Validate() error
}

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	timeout  time.Duration
}

// NewChecker creates a checker with the standard checks: database
// connectivity, catalog consistency and data directory presence.
func NewChecker(db Pinger, cat Validator, dataDir string) *Checker {
	return NewCustomChecker(60*time.Second,
		Check{
			Name:    "sqlite",
			CheckFn: db.PingContext,
			RecoverFn: func(ctx context.Context) error {
				return nil // SQLite auto-recovers via WAL
			},
		},
		Check{
			Name: "catalog",
			CheckFn: func(ctx context.Context) error {
				return cat.Validate()
			},
		},
		Check{
			Name: "data_dir",
			CheckFn: func(ctx context.Context) error {
				return checkDir(dataDir)
			},
		},
	)
}

// NewCustomChecker creates a checker with explicit checks.
func NewCustomChecker(interval time.Duration, checks ...Check) *Checker {
	return &Checker{
		interval: interval,
		timeout:  5 * time.Second,
		checks:   checks,
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	// Run immediately on start
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce runs every check once and stores the results.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		err := check.CheckFn(cctx)
		if err != nil {
			s.Error = err.Error()
			if check.RecoverFn != nil {
				metrics.HealthRecoveries.WithLabelValues(check.Name).Inc()
				_ = check.RecoverFn(cctx)
			}
		} else {
			s.Healthy = true
		}
		cancel()

		if s.Healthy {
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		} else {
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
