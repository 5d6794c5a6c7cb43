package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(config Config) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := NewBreaker("research_payments", config, zap.NewNop())
	b.now = clock.now
	return b, clock
}

var errDB = errors.New("connection refused")

func failing(context.Context) error { return errDB }
func passing(context.Context) error { return nil }

func TestNewBreaker(t *testing.T) {
	breaker := NewBreaker("test", DefaultConfig(), nil)

	if breaker.State() != StateClosed {
		t.Errorf("Expected initial state CLOSED, got %s", breaker.State())
	}
	if breaker.Name() != "test" {
		t.Errorf("Expected name test, got %s", breaker.Name())
	}
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 3, Timeout: time.Second, SuccessThreshold: 1})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := breaker.Execute(ctx, failing); err != errDB {
			t.Fatalf("call %d: expected backend error, got %v", i, err)
		}
	}

	if breaker.State() != StateOpen {
		t.Fatalf("Expected OPEN, got %s", breaker.State())
	}

	called := false
	err := breaker.Execute(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) || !Rejected(err) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("fn must not run while open")
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 2, Timeout: time.Second, SuccessThreshold: 1})
	ctx := context.Background()

	_ = breaker.Execute(ctx, failing)
	_ = breaker.Execute(ctx, passing)
	_ = breaker.Execute(ctx, failing)

	if breaker.State() != StateClosed {
		t.Errorf("Expected CLOSED, got %s", breaker.State())
	}
}

func TestBreaker_HalfOpenThenClosed(t *testing.T) {
	breaker, clock := newTestBreaker(Config{Threshold: 1, Timeout: time.Second, SuccessThreshold: 2, MaxHalfOpen: 5})
	ctx := context.Background()

	_ = breaker.Execute(ctx, failing)
	clock.advance(time.Second)

	if err := breaker.Execute(ctx, passing); err != nil {
		t.Fatalf("Expected probe to run, got %v", err)
	}
	if breaker.State() != StateHalfOpen {
		t.Fatalf("Expected HALF_OPEN, got %s", breaker.State())
	}

	_ = breaker.Execute(ctx, passing)
	if breaker.State() != StateClosed {
		t.Errorf("Expected CLOSED after successes, got %s", breaker.State())
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	breaker, clock := newTestBreaker(Config{Threshold: 1, Timeout: time.Second, SuccessThreshold: 2})
	ctx := context.Background()

	_ = breaker.Execute(ctx, failing)
	clock.advance(2 * time.Second)
	_ = breaker.Execute(ctx, failing)

	if breaker.State() != StateOpen {
		t.Errorf("Expected OPEN, got %s", breaker.State())
	}
	if err := breaker.Allow(); err != ErrCircuitOpen {
		t.Errorf("Expected ErrCircuitOpen right after reopening, got %v", err)
	}
}

func TestBreaker_HalfOpenLimitsProbes(t *testing.T) {
	breaker, clock := newTestBreaker(Config{Threshold: 1, Timeout: time.Second, SuccessThreshold: 5, MaxHalfOpen: 1})

	breaker.Record(errDB)
	clock.advance(time.Second)

	if err := breaker.Allow(); err != nil {
		t.Fatalf("Expected first probe admitted, got %v", err)
	}
	if err := breaker.Allow(); err != ErrTooManyRequests {
		t.Errorf("Expected ErrTooManyRequests, got %v", err)
	}
}

func TestBreaker_CallerCancellationNotCounted(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 1, Timeout: time.Second, SuccessThreshold: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := breaker.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if breaker.State() != StateClosed {
		t.Errorf("Expected CLOSED, got %s", breaker.State())
	}
}

func TestBreaker_ExcludedErrorsNotCounted(t *testing.T) {
	errBadInput := errors.New("invalid input syntax for type bigint")
	breaker, clock := newTestBreaker(Config{
		Threshold:        2,
		Timeout:          time.Second,
		SuccessThreshold: 1,
		MaxHalfOpen:      1,
		Excluded:         func(err error) bool { return errors.Is(err, errBadInput) },
	})
	badInput := func(context.Context) error { return errBadInput }

	for i := 0; i < 5; i++ {
		if err := breaker.Execute(context.Background(), badInput); !errors.Is(err, errBadInput) {
			t.Fatalf("Expected input error returned, got %v", err)
		}
	}
	if breaker.State() != StateClosed {
		t.Fatalf("Expected CLOSED after excluded errors, got %s", breaker.State())
	}
	if got := breaker.Snapshot().Failures; got != 0 {
		t.Errorf("Expected 0 failures, got %d", got)
	}

	// an excluded outcome frees the half-open slot without closing the breaker
	_ = breaker.Execute(context.Background(), failing)
	_ = breaker.Execute(context.Background(), failing)
	clock.advance(2 * time.Second)
	_ = breaker.Execute(context.Background(), badInput)
	if breaker.State() != StateHalfOpen {
		t.Fatalf("Expected HALF_OPEN, got %s", breaker.State())
	}
	if err := breaker.Execute(context.Background(), passing); err != nil {
		t.Fatalf("Expected probe admitted, got %v", err)
	}
	if breaker.State() != StateClosed {
		t.Errorf("Expected CLOSED, got %s", breaker.State())
	}
}

func TestBreaker_DeadlineCounted(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 1, Timeout: time.Second, SuccessThreshold: 1})

	err := breaker.Execute(context.Background(), func(context.Context) error { return context.DeadlineExceeded })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline error, got %v", err)
	}
	if breaker.State() != StateOpen {
		t.Errorf("Expected OPEN, got %s", breaker.State())
	}
}

func TestBreaker_Reset(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 1, Timeout: time.Hour})

	breaker.Record(errDB)
	if breaker.State() != StateOpen {
		t.Fatal("Expected state OPEN")
	}

	breaker.Reset()

	if breaker.State() != StateClosed {
		t.Errorf("Expected state CLOSED after reset, got %s", breaker.State())
	}
	if s := breaker.Snapshot(); s.Failures != 0 || s.State != "CLOSED" {
		t.Errorf("Unexpected snapshot %+v", s)
	}
}

func TestRegistry(t *testing.T) {
	var transitions []string
	registry := NewRegistry(Config{Threshold: 1, Timeout: time.Hour, SuccessThreshold: 1}, nil,
		func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		})

	research := registry.GetOrCreate("research_payments")
	general := registry.GetOrCreate("general_payments")

	if research != registry.GetOrCreate("research_payments") {
		t.Error("Expected same breaker instance for same name")
	}
	if research == general {
		t.Error("Expected different breakers for different names")
	}

	research.Record(errDB)

	snaps := registry.Snapshots()
	if len(snaps) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(snaps))
	}
	if snaps["research_payments"].State != "OPEN" || snaps["general_payments"].State != "CLOSED" {
		t.Errorf("Unexpected snapshots %+v", snaps)
	}
	if len(transitions) != 1 || transitions[0] != "research_payments:CLOSED->OPEN" {
		t.Errorf("Unexpected transitions %v", transitions)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "CLOSED"},
		{StateOpen, "OPEN"},
		{StateHalfOpen, "HALF_OPEN"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.expected)
		}
	}
}
