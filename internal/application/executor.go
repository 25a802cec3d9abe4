package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/bnema/major-rewards-cli/internal/logging"
	"github.com/bnema/major-rewards-cli/internal/ports"
	"github.com/charmbracelet/log"
)

// Action is one request template run under the shared retry rules.
type Action struct {
	Name    string
	Pacing  time.Duration
	Request func(ctx context.Context, token string) (ports.Response, error)
}

// TokenRefresher replaces the token of an account after a 401.
type TokenRefresher interface {
	Refresh(ctx context.Context, state *domain.AccountState) (string, error)
}

type ExecutorConfig struct {
	Gateway        RetryPolicy
	CooldownMargin time.Duration
}

// Executor runs single API calls for an account and classifies the answer.
type Executor struct {
	clock     ports.Clock
	refresher TokenRefresher
	cfg       ExecutorConfig
	logger    *log.Logger
}

type cooldownBody struct {
	Detail json.RawMessage `json:"detail"`
}

type cooldownDetail struct {
	BlockedUntil *float64 `json:"blocked_until"`
}

// NewExecutor returns an Executor. A nil refresher turns a 401 into an
// unauthorized outcome without retrying.
func NewExecutor(clock ports.Clock, refresher TokenRefresher, cfg ExecutorConfig, logger *log.Logger) *Executor {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Executor{clock: clock, refresher: refresher, cfg: cfg, logger: logger}
}

// RunAction never returns an error: every failure is folded into the
// outcome so the caller can move on to its next action.
//
// A cooldown answer is waited out and retried once. A 401 triggers one token
// refresh and one retry. Gateway timeouts follow the gateway policy.
func (e *Executor) RunAction(ctx context.Context, action Action, state *domain.AccountState) domain.Outcome {
	logger := e.logger.With(logging.KeyAccount, state.Label(), logging.KeyAction, action.Name)

	if err := e.clock.Sleep(ctx, action.Pacing); err != nil {
		return domain.Outcome{Kind: domain.OutcomeFatal, Err: err}
	}

	cooldownRetried := false
	tokenRefreshed := false

	for {
		resp, err := e.cfg.Gateway.Retry(ctx, e.clock, func(ctx context.Context) (ports.Response, error) {
			return callSafely(ctx, action, state.Token())
		}, func(attempt int, wait time.Duration) {
			logger.Warn("gateway timeout, trying again", "attempt", attempt, "wait", wait)
		})
		if err != nil {
			if errors.Is(err, ErrRetriesExhausted) {
				logger.Error("giving up after gateway timeouts", "err", err)
				return domain.Outcome{Kind: domain.OutcomeTransient, StatusCode: resp.StatusCode, Body: resp.Body, Err: err}
			}
			logger.Error("request failed", "err", err)
			return domain.Outcome{Kind: domain.OutcomeFatal, Err: err}
		}

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			return domain.Outcome{Kind: domain.OutcomeSuccess, StatusCode: resp.StatusCode, Body: resp.Body}

		case http.StatusBadRequest:
			blockedUntil, ok := parseBlockedUntil(resp.Body)
			if !ok {
				logger.Debug("request rejected", "status", resp.StatusCode, "body", string(resp.Body))
				return domain.Outcome{Kind: domain.OutcomeFatal, StatusCode: resp.StatusCode, Body: resp.Body}
			}

			resumeAt := blockedUntil.Add(e.cfg.CooldownMargin)
			outcome := domain.Outcome{Kind: domain.OutcomeAlreadyCompleted, StatusCode: resp.StatusCode, Body: resp.Body, ResumeAt: resumeAt}
			if cooldownRetried {
				logger.Warn("still on cooldown after waiting", "resume_at", resumeAt)
				return outcome
			}

			wait := CooldownWait(blockedUntil, e.clock.Now(), e.cfg.CooldownMargin)
			logger.Warn("already completed, waiting for cooldown", "until", resumeAt.Format(time.DateTime), "wait", wait.Round(time.Second))
			if err := e.clock.Sleep(ctx, wait); err != nil {
				outcome.Err = err
				return outcome
			}
			cooldownRetried = true

		case http.StatusUnauthorized:
			if tokenRefreshed {
				logger.Error("still unauthorized after token refresh")
				return domain.Outcome{Kind: domain.OutcomeFatal, StatusCode: resp.StatusCode, Body: resp.Body, Err: errors.New("unauthorized after token refresh")}
			}
			if e.refresher == nil {
				return domain.Outcome{Kind: domain.OutcomeUnauthorized, StatusCode: resp.StatusCode, Body: resp.Body}
			}

			logger.Warn("unauthorized, refreshing token")
			if _, err := e.refresher.Refresh(ctx, state); err != nil {
				logger.Error("token refresh failed, skipping action", "err", err)
				return domain.Outcome{Kind: domain.OutcomeUnauthorized, StatusCode: resp.StatusCode, Body: resp.Body, Err: err}
			}
			tokenRefreshed = true

		default:
			logger.Error("request failed", "status", resp.StatusCode)
			return domain.Outcome{Kind: domain.OutcomeFatal, StatusCode: resp.StatusCode, Body: resp.Body}
		}
	}
}

// CooldownWait is the time left until blockedUntil plus margin, never
// negative.
func CooldownWait(blockedUntil time.Time, now time.Time, margin time.Duration) time.Duration {
	wait := blockedUntil.Add(margin).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

func parseBlockedUntil(body []byte) (time.Time, bool) {
	var envelope cooldownBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return time.Time{}, false
	}

	var detail cooldownDetail
	if err := json.Unmarshal(envelope.Detail, &detail); err != nil || detail.BlockedUntil == nil {
		return time.Time{}, false
	}

	seconds, frac := math.Modf(*detail.BlockedUntil)
	return time.Unix(int64(seconds), int64(frac*float64(time.Second))), true
}

func callSafely(ctx context.Context, action Action, token string) (resp ports.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", action.Name, r)
		}
	}()

	return action.Request(ctx, token)
}
