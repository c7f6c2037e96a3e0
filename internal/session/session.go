// Package session wraps the externally-owned browser automation session.
// The verification core never drives the UI itself; it only needs two
// things from the session: a guaranteed release at the right moment, and
// an opaque diagnostic capture on failure.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tradecheck/internal/attempt"
	"tradecheck/internal/logger"

	"github.com/chromedp/chromedp"
)

// Session owns one headless browser instance for the lifetime of a
// scenario (including its retries). Implements attempt.Releasable and
// attempt.DiagnosticSink.
type Session struct {
	browserCtx  context.Context
	cancels     []context.CancelFunc
	artifactDir string

	mu       sync.Mutex
	released bool
}

// New launches a headless browser and verifies it responds. artifactDir
// receives failure screenshots.
func New(ctx context.Context, artifactDir string) (*Session, error) {
	if err := os.MkdirAll(artifactDir, 0o755); err != nil {
		return nil, fmt.Errorf("session: artifact dir: %w", err)
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	s := &Session{
		browserCtx:  browserCtx,
		cancels:     []context.CancelFunc{cancelBrowser, cancelAlloc},
		artifactDir: artifactDir,
	}
	probeCtx, cancel := context.WithTimeout(browserCtx, 20*time.Second)
	defer cancel()
	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		s.teardown()
		return nil, fmt.Errorf("session: headless browser unavailable: %w", err)
	}
	return s, nil
}

// Context exposes the browser context to the page objects that drive it.
func (s *Session) Context() context.Context { return s.browserCtx }

// Release tears the browser down. Safe to call more than once; only the
// first call does work.
func (s *Session) Release(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true
	s.teardown()
	return nil
}

func (s *Session) teardown() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// CaptureFailure stores a full-page screenshot for the failed attempt.
// Best effort: a broken browser must not mask the scenario's own failure.
func (s *Session) CaptureFailure(_ context.Context, att attempt.Context, cause error) {
	s.mu.Lock()
	released := s.released
	s.mu.Unlock()
	if released {
		return
	}
	shotCtx, cancel := context.WithTimeout(s.browserCtx, 15*time.Second)
	defer cancel()
	var png []byte
	if err := chromedp.Run(shotCtx, chromedp.CaptureScreenshot(&png)); err != nil {
		logger.Warnf("session: screenshot for attempt %d failed: %v", att.AttemptNumber, err)
		return
	}
	name := fmt.Sprintf("attempt_%d_failure.png", att.AttemptNumber)
	path := filepath.Join(s.artifactDir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		logger.Warnf("session: writing %s failed: %v", path, err)
		return
	}
	logger.Infof("session: saved failure screenshot %s (cause: %v)", path, cause)
}
