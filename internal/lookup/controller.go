// Package lookup implements the student lookup cycle: validate the typed
// student ID, fetch at most one matching record from the store, and
// publish the outcome as a State that presenters render.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/aanand-mishra/student-lookup/internal/store"
	"github.com/aanand-mishra/student-lookup/internal/types"
)

// DefaultTimeout bounds a store call when Config.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// Config configures a Controller.
type Config struct {
	// Timeout bounds each store call. Expiry is reported as a store error.
	Timeout time.Duration

	// Logger receives operator diagnostics, including store error details.
	Logger *slog.Logger
}

// Controller owns the lookup state: the text last typed, the current
// status, and the last successful record. Only the controller mutates it;
// presenters read snapshots through State or observers.
//
// Controller is safe for concurrent use. When submits overlap, the state
// always reflects the most recently issued one.
type Controller struct {
	store   store.Store
	timeout time.Duration
	logger  *slog.Logger

	mu         sync.Mutex
	input      string
	state      State
	generation uint64
	cancel     context.CancelFunc
	observers  []func(State)

	// pending holds transitions not yet delivered to observers. While
	// notifying is set, one goroutine is draining it and every other
	// publisher only appends.
	pending   []State
	notifying bool
}

// New creates a Controller in the idle state.
func New(s store.Store, cfg Config) *Controller {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Controller{
		store:   s,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
		state:   State{Status: StatusIdle},
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Input returns the text last set with SetInput or Submit.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput records the text currently in the input field. It does not
// change the status.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
}

// Observe registers fn to be called with every new state, in transition
// order. Calls are made without holding the controller's lock, so fn may
// block or call back into the controller. A slow fn delays later
// notifications but never a Submit that is not itself delivering them.
func (c *Controller) Observe(fn func(State)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// SubmitInput submits the text last set with SetInput. It is what an
// Enter keypress in the input field does.
func (c *Controller) SubmitInput(ctx context.Context) State {
	return c.Submit(ctx, c.Input())
}

// Submit runs one lookup for rawInput and returns the resulting state.
//
// Empty or whitespace-only input fails fast without contacting the store.
// Otherwise the state becomes Loading before the store is called, then
// Success, NotFound or Failed. A submit issued while another is pending
// cancels the older one; the older result is discarded when it returns,
// and Submit then returns the state current at that moment.
func (c *Controller) Submit(ctx context.Context, rawInput string) State {
	sid := strings.TrimSpace(rawInput)
	requestID := xid.New().String()

	c.mu.Lock()
	c.input = rawInput
	c.generation++
	gen := c.generation
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if sid == "" {
		next := State{
			Status:     StatusFailed,
			Kind:       KindEmptyInput,
			Message:    MessageEmptyInput,
			Generation: gen,
			RequestID:  requestID,
		}
		c.publishLocked(next)
		return next
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	c.cancel = cancel
	c.publishLocked(State{
		Status:     StatusLoading,
		Query:      sid,
		Generation: gen,
		RequestID:  requestID,
	})

	c.logger.Debug("looking up student",
		slog.String("request_id", requestID),
		slog.String("sid", sid))

	start := time.Now()
	records, err := c.store.Find(callCtx, store.BySID(sid))
	elapsed := time.Since(start)
	cancel()

	c.mu.Lock()
	if gen != c.generation {
		current := c.state
		c.mu.Unlock()
		c.logger.Debug("discarding superseded lookup",
			slog.String("request_id", requestID),
			slog.String("sid", sid),
			slog.Uint64("generation", gen),
			slog.Uint64("current_generation", current.Generation))
		return current
	}
	c.cancel = nil

	next := c.outcome(sid, requestID, gen, records, err, elapsed)
	c.publishLocked(next)
	return next
}

// outcome maps a store response to the next state.
func (c *Controller) outcome(sid, requestID string, gen uint64, records []store.Record, err error, elapsed time.Duration) State {
	next := State{Query: sid, Generation: gen, RequestID: requestID}

	if err == nil && len(records) > 0 {
		var student types.Student
		student, err = toStudent(records[0])
		if err == nil {
			c.logger.Info("student found",
				slog.String("request_id", requestID),
				slog.String("sid", sid),
				slog.Duration("elapsed", elapsed))
			next.Status = StatusSuccess
			next.Student = &student
			return next
		}
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("lookup timed out after %s: %w", c.timeout, err)
		}
		c.logger.Error("student lookup failed",
			slog.String("request_id", requestID),
			slog.String("sid", sid),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()))
		next.Status = StatusFailed
		next.Kind = KindStore
		next.Message = MessageStoreError
		return next
	}

	c.logger.Info("student not found",
		slog.String("request_id", requestID),
		slog.String("sid", sid),
		slog.Duration("elapsed", elapsed))
	next.Status = StatusNotFound
	next.Kind = KindNotFound
	next.Message = MessageNotFound
	return next
}

// publishLocked stores next and queues it for observers. It must be
// called with c.mu held and releases it. If no other goroutine is
// delivering, the caller drains the queue itself.
func (c *Controller) publishLocked(next State) {
	c.state = next
	c.pending = append(c.pending, next)
	if c.notifying {
		c.mu.Unlock()
		return
	}
	c.notifying = true
	c.mu.Unlock()

	c.drain()
}

// drain delivers queued states in order until the queue is empty.
func (c *Controller) drain() {
	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.pending = nil
			c.notifying = false
			c.mu.Unlock()
			return
		}
		st := c.pending[0]
		c.pending = c.pending[1:]
		observers := make([]func(State), len(c.observers))
		copy(observers, c.observers)
		c.mu.Unlock()

		for _, fn := range observers {
			fn(st)
		}
	}
}

// toStudent maps a raw record into a Student. Every field must be present
// and hold a string.
func toStudent(r store.Record) (types.Student, error) {
	var s types.Student
	fields := []struct {
		key string
		dst *string
	}{
		{"id", &s.ID},
		{"sid", &s.SID},
		{"name", &s.Name},
		{"college", &s.College},
		{"major", &s.Major},
	}

	for _, f := range fields {
		v, ok := r.String(f.key)
		if !ok {
			return types.Student{}, fmt.Errorf("%w: field %q missing or not a string", store.ErrMalformedRecord, f.key)
		}
		*f.dst = v
	}

	return s, nil
}
