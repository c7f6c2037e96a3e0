package scenario

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tradecheck/internal/attempt"
	"tradecheck/internal/ledger"
	"tradecheck/internal/reconcile"
	"tradecheck/internal/tolerance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	mu       sync.Mutex
	releases int
	captures int
}

func (s *stubSession) Release(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases++
	return nil
}

func (s *stubSession) CaptureFailure(context.Context, attempt.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captures++
}

func testDeps(t *testing.T, sess *stubSession) Deps {
	t.Helper()
	store, err := ledger.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return Deps{
		Ledger:     store,
		Tolerances: tolerance.NewStatic(tolerance.Set{}, nil),
		NewSession: func(context.Context) (Session, error) { return sess, nil },
	}
}

func TestRunScenarioRetriesThenPasses(t *testing.T) {
	sess := &stubSession{}
	r, err := NewRunner(testDeps(t, sess), 3, 0, 1)
	require.NoError(t, err)

	calls := 0
	err = r.RunScenario(context.Background(), Scenario{
		Name: "expiry-flow",
		Run: func(_ context.Context, env *Env) error {
			calls++
			if calls == 1 {
				return errors.New("table not rendered yet")
			}
			assert.Equal(t, calls, env.Attempt.AttemptNumber)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, sess.captures, "failed attempt captures diagnostics")
	assert.Equal(t, 1, sess.releases, "session released once, on the passing attempt")
}

func TestRunScenarioFinalFailureReleasesSession(t *testing.T) {
	sess := &stubSession{}
	r, err := NewRunner(testDeps(t, sess), 2, 0, 1)
	require.NoError(t, err)

	boom := errors.New("mismatch persists")
	err = r.RunScenario(context.Background(), Scenario{
		Name: "doomed",
		Run:  func(context.Context, *Env) error { return boom },
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, sess.captures)
	assert.Equal(t, 1, sess.releases)
}

func TestRunScenarioSessionSurvivesBetweenAttempts(t *testing.T) {
	sess := &stubSession{}
	r, err := NewRunner(testDeps(t, sess), 2, 0, 1)
	require.NoError(t, err)

	err = r.RunScenario(context.Background(), Scenario{
		Name: "retry-keeps-session",
		Run: func(_ context.Context, env *Env) error {
			if env.Attempt.AttemptNumber == 1 {
				sess.mu.Lock()
				released := sess.releases
				sess.mu.Unlock()
				assert.Zero(t, released)
				return errors.New("first try flaky")
			}
			return nil
		},
	})
	require.NoError(t, err)
}

func TestRunLabelIsPerRun(t *testing.T) {
	sess := &stubSession{}
	r, err := NewRunner(testDeps(t, sess), 1, 0, 1)
	require.NoError(t, err)

	var labels []string
	sc := Scenario{
		Name: "bulk",
		Run: func(_ context.Context, env *Env) error {
			label := env.RunLabel("bulk_orders")
			labels = append(labels, label)
			require.NoError(t, env.Ledger.Clear(label))
			require.NoError(t, env.Ledger.Append(label, "101"))
			ids, err := env.Ledger.Read(label)
			require.NoError(t, err)
			assert.Equal(t, []string{"101"}, ids)
			return nil
		},
	}
	require.NoError(t, r.RunScenario(context.Background(), sc))
	require.NoError(t, r.RunScenario(context.Background(), sc))
	require.Len(t, labels, 2)
	assert.NotEqual(t, labels[0], labels[1], "two runs must not share a ledger label")
}

func TestEnvVerifyRaisesVerificationError(t *testing.T) {
	env := &Env{RunID: "abc", Scenario: "s"}
	failing := reconcile.Result{
		Passed:      false,
		LeftSource:  "Trade Confirmation",
		RightSource: "Order History",
		Mismatches: []reconcile.MismatchDetail{{
			OrderID: "A1", FieldName: "entry_price",
			Expected: "1.1", Actual: "1.2", Kind: reconcile.MismatchValue,
		}},
	}
	err := env.Verify(context.Background(), failing)
	var verr *reconcile.VerificationError
	require.ErrorAs(t, err, &verr)

	assert.NoError(t, env.Verify(context.Background(), reconcile.Result{Passed: true}))
}

func TestRunSuitePropagatesFailures(t *testing.T) {
	sess := &stubSession{}
	r, err := NewRunner(testDeps(t, sess), 1, 0, 2)
	require.NoError(t, err)

	err = r.RunSuite(context.Background(), []Scenario{
		{Name: "ok", Run: func(context.Context, *Env) error { return nil }},
		{Name: "bad", Run: func(context.Context, *Env) error { return errors.New("nope") }},
	})
	assert.Error(t, err)
}
