// Package scenario executes verification scenarios under the attempt
// policy: one browser session per scenario, reused across retries, plus the
// shared stores a scenario needs (ledger, tolerances, surface mappings,
// verdict history).
package scenario

import (
	"context"
	"fmt"
	"time"

	"tradecheck/internal/attempt"
	"tradecheck/internal/ledger"
	"tradecheck/internal/logger"
	"tradecheck/internal/reconcile"
	"tradecheck/internal/runlog"
	"tradecheck/internal/surface"
	"tradecheck/internal/tolerance"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Session is what the runner needs from the automation driver: guaranteed
// release and opaque failure diagnostics. The concrete implementation lives
// in the session package.
type Session interface {
	attempt.Releasable
	attempt.DiagnosticSink
}

// Deps are the shared collaborators injected into every scenario.
type Deps struct {
	Ledger     ledger.Store
	Tolerances tolerance.Provider
	Surfaces   *surface.Registry
	Verdicts   *runlog.Store // optional
	NewSession func(ctx context.Context) (Session, error)
}

// Scenario is one named verification flow.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, env *Env) error
}

// Env is the per-invocation view a scenario body works against.
type Env struct {
	RunID    string
	Scenario string
	Attempt  attempt.Context

	Ledger     ledger.Store
	Tolerances tolerance.Provider
	Surfaces   *surface.Registry

	verdicts *runlog.Store
}

// RunLabel derives a ledger label unique to this suite run, which removes
// the shared-label concurrency hazard by construction.
func (e *Env) RunLabel(base string) string {
	return fmt.Sprintf("%s_%s.csv", base, e.RunID)
}

// Verify persists the verdict (when a store is configured), logs the
// mismatch table on failure, and converts a failing result into a
// *reconcile.VerificationError.
func (e *Env) Verify(ctx context.Context, res reconcile.Result) error {
	if e.verdicts != nil {
		if err := e.verdicts.Save(ctx, e.RunID, e.Scenario, e.Attempt.AttemptNumber, res); err != nil {
			logger.Warnf("scenario %s: persisting verdict failed: %v", e.Scenario, err)
		}
	}
	if err := reconcile.Verify(res); err != nil {
		logger.InfoBlock(reconcile.RenderMismatchTable(res))
		return err
	}
	return nil
}

// Runner drives scenarios under the configured attempt policy.
type Runner struct {
	deps        Deps
	maxAttempts int
	retryDelay  time.Duration
	parallel    int
}

func NewRunner(deps Deps, maxAttempts int, retryDelay time.Duration, parallel int) (*Runner, error) {
	if deps.NewSession == nil {
		return nil, fmt.Errorf("scenario: session factory is required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("scenario: ledger store is required")
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if parallel < 1 {
		parallel = 1
	}
	return &Runner{deps: deps, maxAttempts: maxAttempts, retryDelay: retryDelay, parallel: parallel}, nil
}

// RunScenario executes one scenario with retries. The session is created
// once and survives retry attempts; the attempt orchestrator releases it on
// success or on the final failure.
func (r *Runner) RunScenario(ctx context.Context, sc Scenario) error {
	runID := uuid.NewString()[:8]
	sess, err := r.deps.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("scenario %s: session: %w", sc.Name, err)
	}
	var lastErr error
	for attemptNumber := 1; attemptNumber <= r.maxAttempts; attemptNumber++ {
		orch, err := attempt.New(attemptNumber, r.maxAttempts, sess, sess)
		if err != nil {
			return err
		}
		env := &Env{
			RunID:      runID,
			Scenario:   sc.Name,
			Attempt:    orch.Attempt(),
			Ledger:     r.deps.Ledger,
			Tolerances: r.deps.Tolerances,
			Surfaces:   r.deps.Surfaces,
			verdicts:   r.deps.Verdicts,
		}
		lastErr = orch.Run(ctx, func(ctx context.Context) error {
			return sc.Run(ctx, env)
		})
		if lastErr == nil {
			logger.Infof("scenario %s passed (run=%s attempt=%d)", sc.Name, runID, attemptNumber)
			return nil
		}
		if orch.State() == attempt.StateFailedFinal {
			logger.Errorf("scenario %s failed after %d attempt(s): %v", sc.Name, attemptNumber, lastErr)
			return lastErr
		}
		logger.Warnf("scenario %s attempt %d failed, retrying: %v", sc.Name, attemptNumber, lastErr)
		if err := sleepCtx(ctx, r.retryDelay); err != nil {
			return err
		}
	}
	return lastErr
}

// RunSuite executes scenarios with bounded parallelism. Each scenario owns
// its session; the shared stores are safe by construction (per-run ledger
// labels, WAL sqlite).
func (r *Runner) RunSuite(ctx context.Context, scenarios []Scenario) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(r.parallel)
	for _, sc := range scenarios {
		sc := sc
		group.Go(func() error {
			return r.RunScenario(ctx, sc)
		})
	}
	return group.Wait()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
