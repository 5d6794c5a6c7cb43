package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusHealthy
	StatusUnhealthy
	StatusDegraded
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	case StatusDegraded:
		return "degraded"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult is the outcome of one component check.
type CheckResult struct {
	Status  Status        `json:"status"`
	Message string        `json:"message,omitempty"`
	Latency time.Duration `json:"latency_ns"`
}

// Checker pings one dependency.
type Checker func(ctx context.Context) error

type registration struct {
	check    Checker
	critical bool
}

// Monitor runs every registered check concurrently. A failing critical check
// makes the whole service unhealthy; a failing optional one only degrades it.
type Monitor struct {
	mu       sync.RWMutex
	checkers map[string]registration
	disabled map[string]string
	timeout  time.Duration
	logger   *zap.Logger
}

func NewMonitor(timeout time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checkers: make(map[string]registration),
		disabled: make(map[string]string),
		timeout:  timeout,
		logger:   logger,
	}
}

// Register adds a named check. A nil check is reported as unhealthy.
func (m *Monitor) Register(name string, check Checker, critical bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.disabled, name)
	m.checkers[name] = registration{check: check, critical: critical}
}

// Disable reports name as switched off instead of checking it.
func (m *Monitor) Disable(name, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checkers, name)
	m.disabled[name] = reason
}

// CheckAll runs the checks and returns the overall status with per-component results.
func (m *Monitor) CheckAll(ctx context.Context) (Status, map[string]CheckResult) {
	m.mu.RLock()
	checkers := make(map[string]registration, len(m.checkers))
	for name, r := range m.checkers {
		checkers[name] = r
	}
	results := make(map[string]CheckResult, len(m.checkers)+len(m.disabled))
	for name, reason := range m.disabled {
		results[name] = CheckResult{Status: StatusDisabled, Message: reason}
	}
	m.mu.RUnlock()

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	var (
		wg  sync.WaitGroup
		rmu sync.Mutex
	)
	for name, r := range checkers {
		wg.Add(1)
		go func(name string, r registration) {
			defer wg.Done()
			result := m.run(ctx, name, r.check)
			rmu.Lock()
			results[name] = result
			rmu.Unlock()
		}(name, r)
	}
	wg.Wait()

	overall := StatusHealthy
	for name, r := range checkers {
		if results[name].Status == StatusHealthy {
			continue
		}
		if r.critical {
			overall = StatusUnhealthy
		} else if overall == StatusHealthy {
			overall = StatusDegraded
		}
	}
	return overall, results
}

func (m *Monitor) run(ctx context.Context, name string, check Checker) CheckResult {
	if check == nil {
		return CheckResult{Status: StatusUnhealthy, Message: name + " connection not initialized"}
	}

	start := time.Now()
	err := check(ctx)
	latency := time.Since(start)

	if err != nil {
		m.logger.Warn("Health check failed",
			zap.String("component", name),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		return CheckResult{Status: StatusUnhealthy, Message: name + " ping failed", Latency: latency}
	}
	return CheckResult{Status: StatusHealthy, Latency: latency}
}
