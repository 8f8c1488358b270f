package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

const (
	// DefaultPollInterval is the fixed delay between status checks
	DefaultPollInterval = 5 * time.Second

	// DefaultMaxPollAttempts caps the poll loop at roughly five minutes
	DefaultMaxPollAttempts = 60
)

// SleepFunc waits for the given duration or until the context is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// sleepWithContext is the default SleepFunc
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poller drives a submitted remote task to a terminal state:
// composed, failed, or timed out. The sleep dependency is injectable
// so tests run without wall-clock delays.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
	Sleep       SleepFunc

	// Observe, when set, receives the number of attempts a successful
	// poll took before the result came back
	Observe func(attempts int)

	log *logger.Logger
}

// NewPoller creates a poller with the default interval and budget
func NewPoller(log *logger.Logger) *Poller {
	return &Poller{
		Interval:    DefaultPollInterval,
		MaxAttempts: DefaultMaxPollAttempts,
		Sleep:       sleepWithContext,
		log:         log,
	}
}

// Await polls the task until a terminal state. Returns the result URL
// on success, ErrTimeoutExceeded when the attempt budget runs out, and
// a ProviderError on a failed or malformed terminal state. Each attempt
// waits one interval and then performs exactly one status fetch; a
// cancelled context stops the loop without touching the remote task.
func (p *Poller) Await(ctx context.Context, prov MusicProvider, taskID string) (string, error) {
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := p.Sleep(ctx, p.Interval); err != nil {
			return "", fmt.Errorf("polling cancelled: %w", err)
		}

		state, err := prov.TaskState(ctx, taskID)
		if err != nil {
			return "", err
		}

		p.log.Debugw("Polled composition task", "taskID", taskID, "attempt", attempt, "status", state.Status)

		switch state.Status {
		case TaskStatusComposed:
			if state.ResultURL == "" {
				return "", domain.NewProviderError("music", "missing_result_url",
					"task reported composed without a result URL", 0, nil)
			}
			if p.Observe != nil {
				p.Observe(attempt)
			}
			return state.ResultURL, nil
		case TaskStatusFailed:
			return "", domain.NewProviderError("music", "composition_failed",
				fmt.Sprintf("task %s failed", taskID), 0, nil)
		}
		// Anything else (pending, composing, running) keeps polling
	}

	return "", fmt.Errorf("task %s did not finish within %d attempts: %w",
		taskID, p.MaxAttempts, domain.ErrTimeoutExceeded)
}
