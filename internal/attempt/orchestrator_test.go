package attempt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	releases int
}

func (s *fakeSession) Release(context.Context) error {
	s.releases++
	return nil
}

type fakeSink struct {
	captured []Context
	causes   []error
}

func (s *fakeSink) CaptureFailure(_ context.Context, attempt Context, cause error) {
	s.captured = append(s.captured, attempt)
	s.causes = append(s.causes, cause)
}

func TestSuccessReleasesSession(t *testing.T) {
	session := &fakeSession{}
	o, err := New(1, 2, session, nil)
	require.NoError(t, err)

	err = o.Run(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StatePassed, o.State())
	assert.Equal(t, 1, session.releases)
	assert.True(t, o.SessionReleased())
}

func TestFailureOnNonFinalAttemptKeepsSession(t *testing.T) {
	session := &fakeSession{}
	sink := &fakeSink{}
	o, err := New(1, 2, session, sink)
	require.NoError(t, err)

	boom := errors.New("element not found")
	err = o.Run(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)

	assert.Equal(t, StateFailedRetryable, o.State())
	assert.Equal(t, 0, session.releases, "session must survive for the retry")
	assert.False(t, o.Attempt().IsLastAttempt())
	assert.Equal(t, "element not found", o.Attempt().FailureReason)
	require.Len(t, sink.captured, 1)
	assert.Equal(t, 1, sink.captured[0].AttemptNumber)
}

func TestFailureOnFinalAttemptReleasesSession(t *testing.T) {
	session := &fakeSession{}
	o, err := New(2, 2, session, nil)
	require.NoError(t, err)

	err = o.Run(context.Background(), func(context.Context) error {
		return errors.New("still broken")
	})
	require.Error(t, err)
	assert.Equal(t, StateFailedFinal, o.State())
	assert.True(t, o.Attempt().IsLastAttempt())
	assert.Equal(t, 1, session.releases)
}

func TestSuccessOnRetryAttemptReleasesSession(t *testing.T) {
	session := &fakeSession{}
	o, err := New(2, 3, session, nil)
	require.NoError(t, err)

	require.NoError(t, o.Run(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, StatePassed, o.State())
	assert.Equal(t, 1, session.releases)
}

func TestPanicIsExceptionSafe(t *testing.T) {
	session := &fakeSession{}
	sink := &fakeSink{}
	o, err := New(2, 2, session, sink)
	require.NoError(t, err)

	err = o.Run(context.Background(), func(context.Context) error {
		panic("assertion blew up")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertion blew up")
	assert.Equal(t, StateFailedFinal, o.State())
	assert.Equal(t, 1, session.releases, "teardown must run on the panic path")
	require.Len(t, sink.causes, 1)
}

func TestTerminalStateRefusesRerun(t *testing.T) {
	o, err := New(1, 1, &fakeSession{}, nil)
	require.NoError(t, err)
	require.NoError(t, o.Run(context.Background(), func(context.Context) error { return nil }))

	err = o.Run(context.Background(), func(context.Context) error { return nil })
	assert.Error(t, err, "no transition back from a terminal state")
}

func TestDiagnosticSinkPanicDoesNotMaskVerdict(t *testing.T) {
	o, err := New(1, 2, &fakeSession{}, panickySink{})
	require.NoError(t, err)

	boom := errors.New("real failure")
	err = o.Run(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailedRetryable, o.State())
}

type panickySink struct{}

func (panickySink) CaptureFailure(context.Context, Context, error) { panic("sink broken") }

func TestNewValidatesCounters(t *testing.T) {
	_, err := New(0, 2, nil, nil)
	assert.Error(t, err)
	_, err = New(3, 2, nil, nil)
	assert.Error(t, err)
	_, err = New(1, 0, nil, nil)
	assert.Error(t, err)
}
