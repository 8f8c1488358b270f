package provider

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// scriptedMusicProvider replays a fixed sequence of task states
type scriptedMusicProvider struct {
	states []TaskState
	errs   []error
	calls  int
}

func (p *scriptedMusicProvider) Compose(ctx context.Context, prompt string) (string, error) {
	return "task-1", nil
}

func (p *scriptedMusicProvider) TaskState(ctx context.Context, taskID string) (TaskState, error) {
	i := p.calls
	p.calls++
	if i >= len(p.states) {
		i = len(p.states) - 1
	}
	var err error
	if p.errs != nil {
		err = p.errs[i]
	}
	return p.states[i], err
}

func newTestPoller() *Poller {
	p := NewPoller(logger.New(logger.ERROR))
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		return ctx.Err()
	}
	return p
}

func TestPollerAwaitReturnsURLAfterPending(t *testing.T) {
	prov := &scriptedMusicProvider{
		states: []TaskState{
			{Status: "composing"},
			{Status: "composing"},
			{Status: "running"},
			{Status: TaskStatusComposed, ResultURL: "https://cdn.example.com/track.mp3"},
		},
	}

	url, err := newTestPoller().Await(context.Background(), prov, "task-1")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/track.mp3", url)
	assert.Equal(t, 4, prov.calls, "should stop checking once the task is composed")
}

func TestPollerAwaitTimesOutAfterMaxAttempts(t *testing.T) {
	prov := &scriptedMusicProvider{
		states: []TaskState{{Status: "composing"}},
	}

	poller := newTestPoller()
	_, err := poller.Await(context.Background(), prov, "task-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTimeoutExceeded)
	assert.Equal(t, DefaultMaxPollAttempts, prov.calls)
}

func TestPollerAwaitFailedTaskStopsImmediately(t *testing.T) {
	prov := &scriptedMusicProvider{
		states: []TaskState{
			{Status: "composing"},
			{Status: TaskStatusFailed},
		},
	}

	_, err := newTestPoller().Await(context.Background(), prov, "task-1")

	require.Error(t, err)
	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "composition_failed", provErr.Code)
	assert.Equal(t, 2, prov.calls)
}

func TestPollerAwaitComposedWithoutURLIsAnError(t *testing.T) {
	prov := &scriptedMusicProvider{
		states: []TaskState{{Status: TaskStatusComposed}},
	}

	_, err := newTestPoller().Await(context.Background(), prov, "task-1")

	require.Error(t, err)
	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "missing_result_url", provErr.Code)
}

func TestPollerAwaitStopsOnCancelledContext(t *testing.T) {
	prov := &scriptedMusicProvider{
		states: []TaskState{{Status: "composing"}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPoller().Await(ctx, prov, "task-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, prov.calls, "a cancelled context must not reach the provider")
}

func TestPollerAwaitPropagatesFetchErrors(t *testing.T) {
	fetchErr := fmt.Errorf("connection reset")
	prov := &scriptedMusicProvider{
		states: []TaskState{{}},
		errs:   []error{fetchErr},
	}

	_, err := newTestPoller().Await(context.Background(), prov, "task-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)
	assert.Equal(t, 1, prov.calls)
}

func TestPollerObserveReportsAttempts(t *testing.T) {
	prov := &scriptedMusicProvider{
		states: []TaskState{
			{Status: "composing"},
			{Status: TaskStatusComposed, ResultURL: "https://cdn.example.com/track.mp3"},
		},
	}

	poller := newTestPoller()
	var observed int
	poller.Observe = func(attempts int) { observed = attempts }

	_, err := poller.Await(context.Background(), prov, "task-1")

	require.NoError(t, err)
	assert.Equal(t, 2, observed)
}
