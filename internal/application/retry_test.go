package application

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bnema/major-rewards-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyRetriesGatewayTimeoutUntilOtherStatus(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	statuses := []int{http.StatusGatewayTimeout, http.StatusGatewayTimeout, http.StatusGatewayTimeout, http.StatusOK}
	calls := 0
	notified := 0

	resp, err := DefaultGatewayPolicy().Retry(context.Background(), clock, func(context.Context) (ports.Response, error) {
		status := statuses[calls]
		calls++
		return ports.Response{StatusCode: status}, nil
	}, func(int, time.Duration) { notified++ })

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 3, notified)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second}, clock.Sleeps())
}

func TestRetryPolicyStopsAtCeiling(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	policy := RetryPolicy{MaxAttempts: 3, Backoff: time.Second}
	calls := 0

	resp, err := policy.Retry(context.Background(), clock, func(context.Context) (ports.Response, error) {
		calls++
		return ports.Response{StatusCode: http.StatusGatewayTimeout}, nil
	}, nil)

	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clock.Sleeps())
}

func TestRetryPolicyReturnsTransportErrorsUntouched(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	calls := 0

	_, err := DefaultGatewayPolicy().Retry(context.Background(), newFakeClock(), func(context.Context) (ports.Response, error) {
		calls++
		return ports.Response{}, boom
	}, nil)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyStopsWhenContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DefaultGatewayPolicy().Retry(ctx, newFakeClock(), func(context.Context) (ports.Response, error) {
		return ports.Response{StatusCode: http.StatusGatewayTimeout}, nil
	}, nil)

	require.ErrorIs(t, err, context.Canceled)
}
