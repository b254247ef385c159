package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/lingua/internal/client/metrics"
)

// State is a circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Event drives breaker transitions.
type Event int

const (
	EventSuccess Event = iota
	EventFailure
	EventCooldownElapsed
)

func (e Event) String() string {
	switch e {
	case EventSuccess:
		return "success"
	case EventFailure:
		return "failure"
	case EventCooldownElapsed:
		return "cooldown_elapsed"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without running the operation while the breaker
// is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

const (
	DefaultFailureThreshold = 3
	DefaultCooldown         = 30 * time.Second
)

// Transition is the breaker's state machine. It returns the state and the
// consecutive failure count after ev.
//
//	closed    --failure (count reaches threshold)--> open
//	open      --cooldown elapsed-------------------> half_open
//	half_open --success----------------------------> closed
//	half_open --failure----------------------------> open
//
// Success in closed resets the count. Any other pair leaves the state as is.
func Transition(s State, ev Event, failures, threshold int) (State, int) {
	switch s {
	case StateClosed:
		switch ev {
		case EventSuccess:
			return StateClosed, 0
		case EventFailure:
			failures++
			if failures >= threshold {
				return StateOpen, failures
			}
			return StateClosed, failures
		}
	case StateOpen:
		if ev == EventCooldownElapsed {
			return StateHalfOpen, failures
		}
	case StateHalfOpen:
		switch ev {
		case EventSuccess:
			return StateClosed, 0
		case EventFailure:
			return StateOpen, failures + 1
		}
	}
	return s, failures
}

type BreakerConfig struct {
	Name             string
	FailureThreshold int
	Cooldown         time.Duration
	// OnStateChange runs synchronously after each transition, outside the
	// breaker's lock.
	OnStateChange func(from, to State)
	Now           func() time.Time
	Metrics       *metrics.Collector
}

// Breaker guards an operation with the Transition state machine. In half-open
// only one trial call is admitted; concurrent calls fail fast.
type Breaker struct {
	cfg BreakerConfig

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	return &Breaker{cfg: cfg, state: StateClosed}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Execute runs op unless the breaker is open. Cancellation of ctx is not
// counted as a failure. A panic in op counts as a failure and is re-raised.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			b.record(EventFailure)
			panic(p)
		}
	}()
	err := op(ctx)

	switch {
	case err == nil:
		b.record(EventSuccess)
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		b.release()
	default:
		b.record(EventFailure)
	}
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	var changes []change

	if b.state == StateOpen && !b.cfg.Now().Before(b.openedAt.Add(b.cfg.Cooldown)) {
		changes = append(changes, b.apply(EventCooldownElapsed))
	}

	var err error
	switch {
	case b.state == StateOpen:
		err = ErrCircuitOpen
	case b.state == StateHalfOpen && b.trial:
		err = ErrCircuitOpen
	case b.state == StateHalfOpen:
		b.trial = true
	}
	b.mu.Unlock()

	b.notify(changes)
	return err
}

func (b *Breaker) record(ev Event) {
	b.mu.Lock()
	b.trial = false
	c := b.apply(ev)
	b.mu.Unlock()

	b.notify([]change{c})
}

func (b *Breaker) release() {
	b.mu.Lock()
	b.trial = false
	b.mu.Unlock()
}

type change struct{ from, to State }

// apply must be called with mu held.
func (b *Breaker) apply(ev Event) change {
	from := b.state
	b.state, b.failures = Transition(b.state, ev, b.failures, b.cfg.FailureThreshold)
	if b.state == StateOpen && from != StateOpen {
		b.openedAt = b.cfg.Now()
	}
	return change{from: from, to: b.state}
}

func (b *Breaker) notify(changes []change) {
	for _, c := range changes {
		if c.from == c.to {
			continue
		}
		b.cfg.Metrics.RecordBreakerTransition(b.cfg.Name, c.from.String(), c.to.String(), int(c.to))
		if b.cfg.OnStateChange != nil {
			b.cfg.OnStateChange(c.from, c.to)
		}
	}
}
