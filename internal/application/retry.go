package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/major-rewards-cli/internal/ports"
	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultGatewayBackoff = 5 * time.Second
	DefaultCooldownMargin = 5 * time.Minute
)

var ErrRetriesExhausted = errors.New("gateway timeout retries exhausted")

// RetryPolicy governs retries of calls answered with 504 Gateway Timeout.
// MaxAttempts counts every call including the first; zero means retry until
// the upstream answers with something else.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultGatewayPolicy() RetryPolicy {
	return RetryPolicy{Backoff: DefaultGatewayBackoff}
}

func (p RetryPolicy) Unbounded() bool {
	return p.MaxAttempts <= 0
}

func (p RetryPolicy) newBackOff() backoff.BackOff {
	interval := p.Backoff
	if interval < 0 {
		interval = 0
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(interval)
	if !p.Unbounded() {
		b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	}

	return b
}

type retryNotify func(attempt int, wait time.Duration)

// Retry repeats call while it answers 504. Transport errors and every other
// status are returned to the caller untouched.
func (p RetryPolicy) Retry(ctx context.Context, clock ports.Clock, call func(context.Context) (ports.Response, error), notify retryNotify) (ports.Response, error) {
	b := p.newBackOff()

	for attempt := 1; ; attempt++ {
		resp, err := call(ctx)
		if err != nil || resp.StatusCode != http.StatusGatewayTimeout {
			return resp, err
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return resp, fmt.Errorf("%w after %d attempts", ErrRetriesExhausted, attempt)
		}
		if notify != nil {
			notify(attempt, wait)
		}
		if err := clock.Sleep(ctx, wait); err != nil {
			return resp, err
		}
	}
}
