// Package app wires the verification suite together: config in, runner and
// report server out.
package app

import (
	"context"
	"fmt"
	"time"

	"tradecheck/internal/config"
	"tradecheck/internal/ledger"
	"tradecheck/internal/logger"
	"tradecheck/internal/runlog"
	"tradecheck/internal/scenario"
	"tradecheck/internal/session"
	"tradecheck/internal/surface"
	reporthttp "tradecheck/internal/transport/http/report"

	"golang.org/x/sync/errgroup"
)

// App holds the assembled suite dependencies. Build with NewApp, then Run
// with the scenarios to verify.
type App struct {
	cfg      *config.Config
	runner   *scenario.Runner
	report   *reporthttp.Server
	verdicts *runlog.Store
	closers  []func() error
}

// NewApp builds the suite from configuration without starting anything.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	a := &App{cfg: cfg}

	store, err := a.buildLedger(cfg)
	if err != nil {
		return nil, err
	}
	provider, err := cfg.ToleranceProvider()
	if err != nil {
		return nil, err
	}
	surfaces, err := surface.NewRegistry(cfg.Surfaces.MappingPath)
	if err != nil {
		return nil, fmt.Errorf("surface mappings: %w", err)
	}
	verdicts, err := runlog.NewStore(cfg.Suite.VerdictDB)
	if err != nil {
		return nil, fmt.Errorf("verdict store: %w", err)
	}
	a.verdicts = verdicts
	a.closers = append(a.closers, verdicts.Close)

	artifactDir := cfg.App.ArtifactDir
	deps := scenario.Deps{
		Ledger:     store,
		Tolerances: provider,
		Surfaces:   surfaces,
		Verdicts:   verdicts,
		NewSession: func(ctx context.Context) (scenario.Session, error) {
			return session.New(ctx, artifactDir)
		},
	}
	runner, err := scenario.NewRunner(
		deps,
		cfg.Suite.MaxAttempts,
		time.Duration(cfg.Suite.RetryDelaySeconds)*time.Second,
		cfg.Suite.Parallel,
	)
	if err != nil {
		return nil, err
	}
	a.runner = runner

	if cfg.App.HTTPAddr != "" {
		report, err := reporthttp.NewServer(reporthttp.ServerConfig{
			Addr:     cfg.App.HTTPAddr,
			Verdicts: verdicts,
		})
		if err != nil {
			return nil, err
		}
		a.report = report
	}
	return a, nil
}

func (a *App) buildLedger(cfg *config.Config) (ledger.Store, error) {
	switch cfg.Suite.LedgerBackend {
	case "sqlite":
		store, err := ledger.NewGormStore(cfg.Suite.LedgerDB)
		if err != nil {
			return nil, fmt.Errorf("ledger db: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		store, err := ledger.NewFileStore(cfg.Suite.LedgerDir)
		if err != nil {
			return nil, fmt.Errorf("ledger dir: %w", err)
		}
		return store, nil
	}
}

// Runner exposes the scenario runner for embedding harnesses.
func (a *App) Runner() *scenario.Runner {
	if a == nil {
		return nil
	}
	return a.runner
}

// Run executes the scenarios, with the report server (when configured)
// alive for the duration of the suite.
func (a *App) Run(ctx context.Context, scenarios []scenario.Scenario) error {
	if a == nil || a.runner == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.Close()

	if a.report == nil {
		return a.runner.RunSuite(ctx, scenarios)
	}

	group, ctx := errgroup.WithContext(ctx)
	srvCtx, stopServer := context.WithCancel(ctx)
	group.Go(func() error {
		if err := a.report.Start(srvCtx); err != nil {
			return fmt.Errorf("report server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		defer stopServer()
		return a.runner.RunSuite(ctx, scenarios)
	})
	return group.Wait()
}

// Close releases the stores. Safe to call more than once.
func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			logger.Warnf("app: close failed: %v", err)
		}
	}
	a.closers = nil
}
