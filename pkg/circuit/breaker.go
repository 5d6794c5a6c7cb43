package circuit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State of a breaker guarding one dataset's table.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Rejected reports whether err came from the breaker itself rather than the guarded call.
func Rejected(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests)
}

type Config struct {
	Threshold        int           // consecutive failures before opening
	Timeout          time.Duration // open duration before a half-open probe
	SuccessThreshold int           // half-open successes needed to close
	MaxHalfOpen      int           // concurrent probes while half-open

	// Excluded marks errors that say nothing about the backend's health. They
	// are returned to the caller but counted neither as failure nor success.
	Excluded func(err error) bool
}

func DefaultConfig() Config {
	return Config{
		Threshold:        5,
		Timeout:          30 * time.Second,
		SuccessThreshold: 2,
		MaxHalfOpen:      2,
	}
}

// StateChangeFunc is called with the lock held; it must not call back into the breaker.
type StateChangeFunc func(name string, from, to State)

type Breaker struct {
	mu               sync.Mutex
	state            State
	failures         int
	successes        int
	halfOpenRequests int
	openedAt         time.Time
	config           Config
	logger           *zap.Logger
	name             string
	onChange         StateChangeFunc
	now              func() time.Time
}

func NewBreaker(name string, config Config, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxHalfOpen <= 0 {
		config.MaxHalfOpen = 1
	}

	return &Breaker{
		state:  StateClosed,
		config: config,
		logger: logger,
		name:   name,
		now:    time.Now,
	}
}

// OnStateChange registers fn to observe transitions.
func (b *Breaker) OnStateChange(fn StateChangeFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

// Execute runs fn unless the breaker is open. A cancelled caller context and
// Config.Excluded errors are not held against the backend; a deadline overrun is.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.Allow(); err != nil {
		return err
	}

	err := fn(ctx)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		b.release()
		return err
	}
	if err != nil && b.config.Excluded != nil && b.config.Excluded(err) {
		b.release()
		return err
	}
	b.Record(err)
	return err
}

// Allow reserves a slot for one call or returns why it cannot run.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.config.Timeout {
			return ErrCircuitOpen
		}
		b.transitionTo(StateHalfOpen)
		b.halfOpenRequests = 1
		return nil

	case StateHalfOpen:
		if b.halfOpenRequests >= b.config.MaxHalfOpen {
			return ErrTooManyRequests
		}
		b.halfOpenRequests++
		return nil

	default:
		return nil
	}
}

// Record reports the outcome of a call admitted by Allow.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.recordFailure()
	} else {
		b.recordSuccess()
	}
}

// release frees a half-open slot without counting the outcome.
func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateHalfOpen && b.halfOpenRequests > 0 {
		b.halfOpenRequests--
	}
}

// must hold lock
func (b *Breaker) recordFailure() {
	b.failures++
	b.successes = 0

	switch b.state {
	case StateClosed:
		if b.failures >= b.config.Threshold {
			b.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		b.transitionTo(StateOpen)
	}
}

// must hold lock
func (b *Breaker) recordSuccess() {
	b.failures = 0

	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transitionTo(StateClosed)
		}
	}
}

// must hold lock
func (b *Breaker) transitionTo(newState State) {
	oldState := b.state
	b.state = newState
	b.halfOpenRequests = 0

	switch newState {
	case StateOpen:
		b.openedAt = b.now()
	case StateClosed:
		b.failures = 0
		b.successes = 0
	}

	b.logger.Warn("Circuit breaker state changed",
		zap.String("name", b.name),
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failures", b.failures),
	)

	if b.onChange != nil {
		b.onChange(b.name, oldState, newState)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Name() string {
	return b.name
}

// Snapshot is the JSON-friendly view used by the health endpoint.
type Snapshot struct {
	State    string `json:"state"`
	Failures int    `json:"failures"`
}

func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{State: b.state.String(), Failures: b.failures}
}

// Reset forces the breaker closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateClosed {
		b.transitionTo(StateClosed)
	}
	b.failures = 0
	b.successes = 0
}

// Registry hands out one breaker per name, all sharing a config.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
	config   Config
	logger   *zap.Logger
	onChange StateChangeFunc
}

func NewRegistry(config Config, logger *zap.Logger, onChange StateChangeFunc) *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
		config:   config,
		logger:   logger,
		onChange: onChange,
	}
}

func (r *Registry) GetOrCreate(name string) *Breaker {
	r.mu.RLock()
	breaker, exists := r.breakers[name]
	r.mu.RUnlock()
	if exists {
		return breaker
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if breaker, exists = r.breakers[name]; exists {
		return breaker
	}

	breaker = NewBreaker(name, r.config, r.logger)
	breaker.onChange = r.onChange
	r.breakers[name] = breaker
	return breaker
}

// Snapshots returns the state of every breaker created so far.
func (r *Registry) Snapshots() map[string]Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Snapshot, len(r.breakers))
	for name, breaker := range r.breakers {
		out[name] = breaker.Snapshot()
	}
	return out
}
