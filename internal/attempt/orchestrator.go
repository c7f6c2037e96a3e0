// Package attempt wraps one scenario execution and decides, at teardown,
// whether the externally-owned automation session survives for a retry or
// gets released. It owns no retry scheduling: the outer runner re-invokes
// the scenario and supplies the attempt counter.
package attempt

import (
	"context"
	"fmt"
	"time"

	"tradecheck/internal/logger"
)

// State of one orchestrator instance. There is no transition out of a
// terminal state; a retry gets a fresh instance with the next attempt
// number.
type State int

const (
	StateRunning State = iota
	StatePassed
	StateFailedRetryable
	StateFailedFinal
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePassed:
		return "passed"
	case StateFailedRetryable:
		return "failed-retryable"
	case StateFailedFinal:
		return "failed-final"
	default:
		return "unknown"
	}
}

// Context carries the attempt bookkeeping consulted at teardown.
type Context struct {
	AttemptNumber int
	MaxAttempts   int
	FailureReason string
}

// IsLastAttempt reports whether a failure now is final.
func (c Context) IsLastAttempt() bool { return c.AttemptNumber >= c.MaxAttempts }

// Releasable is the externally-owned session. Release must be safe to call
// with a fresh context after the scenario's own context died.
type Releasable interface {
	Release(ctx context.Context) error
}

// DiagnosticSink captures an opaque failure payload (screenshot, page dump)
// before a retry decision is made. Failures inside the sink are logged and
// swallowed; diagnostics must never change the verdict.
type DiagnosticSink interface {
	CaptureFailure(ctx context.Context, attempt Context, cause error)
}

const releaseTimeout = 10 * time.Second

// Orchestrator drives RUNNING → {PASSED, FAILED_RETRYABLE, FAILED_FINAL}
// for exactly one scenario invocation.
type Orchestrator struct {
	attempt Context
	session Releasable
	sink    DiagnosticSink

	state    State
	released bool
}

// New validates the attempt counters and builds a fresh orchestrator in
// StateRunning.
func New(attemptNumber, maxAttempts int, session Releasable, sink DiagnosticSink) (*Orchestrator, error) {
	if maxAttempts < 1 {
		return nil, fmt.Errorf("attempt: max attempts must be >= 1, got %d", maxAttempts)
	}
	if attemptNumber < 1 || attemptNumber > maxAttempts {
		return nil, fmt.Errorf("attempt: attempt number %d outside [1,%d]", attemptNumber, maxAttempts)
	}
	return &Orchestrator{
		attempt: Context{AttemptNumber: attemptNumber, MaxAttempts: maxAttempts},
		session: session,
		sink:    sink,
		state:   StateRunning,
	}, nil
}

func (o *Orchestrator) State() State     { return o.state }
func (o *Orchestrator) Attempt() Context { return o.attempt }

// SessionReleased reports whether the session was torn down by this
// instance.
func (o *Orchestrator) SessionReleased() bool { return o.released }

// Run executes the scenario body. Teardown runs on every exit path,
// including panics, and releases the session exactly when the scenario
// passed or this was the last attempt. The body's error is returned
// unchanged so the outer runner can re-raise or retry.
func (o *Orchestrator) Run(ctx context.Context, body func(context.Context) error) (err error) {
	if o.state != StateRunning {
		return fmt.Errorf("attempt: orchestrator already finished in state %s", o.state)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("attempt: scenario panicked: %v", r)
		}
		o.finish(ctx, err)
	}()
	err = body(ctx)
	return err
}

func (o *Orchestrator) finish(ctx context.Context, cause error) {
	if cause == nil {
		o.state = StatePassed
		o.release()
		return
	}
	o.attempt.FailureReason = cause.Error()
	if o.sink != nil {
		o.captureDiagnostics(ctx, cause)
	}
	if o.attempt.IsLastAttempt() {
		o.state = StateFailedFinal
		o.release()
		return
	}
	// session stays alive for the retry
	o.state = StateFailedRetryable
}

func (o *Orchestrator) captureDiagnostics(ctx context.Context, cause error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("attempt: diagnostic capture panicked: %v", r)
		}
	}()
	o.sink.CaptureFailure(ctx, o.attempt, cause)
}

// release tears the session down at most once. A fresh context is used so
// teardown still works after the scenario's context was cancelled.
func (o *Orchestrator) release() {
	if o.released || o.session == nil {
		o.released = true
		return
	}
	o.released = true
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := o.session.Release(ctx); err != nil {
		logger.Warnf("attempt: session release failed: %v", err)
	}
}
