package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/bnema/major-rewards-cli/internal/logging"
	"github.com/bnema/major-rewards-cli/internal/ports"
	"github.com/charmbracelet/log"
)

const DefaultAuthPacing = 2 * time.Second

type AcquirerConfig struct {
	Pacing  time.Duration
	Gateway RetryPolicy
}

// TokenAcquirer exchanges a launch payload for a bearer token.
type TokenAcquirer struct {
	auth   ports.AuthExchanger
	clock  ports.Clock
	cfg    AcquirerConfig
	logger *log.Logger
}

type authResponse struct {
	AccessToken string `json:"access_token"`
}

// NewTokenAcquirer exchanges launch payloads through auth, pacing each attempt
// with clock.
func NewTokenAcquirer(auth ports.AuthExchanger, clock ports.Clock, cfg AcquirerConfig, logger *log.Logger) *TokenAcquirer {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &TokenAcquirer{auth: auth, clock: clock, cfg: cfg, logger: logger}
}

// Acquire returns an error wrapping domain.ErrNoToken whenever no token could
// be obtained. Gateway timeouts are retried per the configured policy.
func (a *TokenAcquirer) Acquire(ctx context.Context, payload string, label string) (string, error) {
	logger := a.logger.With(logging.KeyAccount, label)

	if err := a.clock.Sleep(ctx, a.cfg.Pacing); err != nil {
		return "", err
	}

	resp, err := a.cfg.Gateway.Retry(ctx, a.clock, func(ctx context.Context) (ports.Response, error) {
		return a.auth.Exchange(ctx, payload)
	}, func(attempt int, wait time.Duration) {
		logger.Warn("auth gateway timeout, trying again", "attempt", attempt, "wait", wait)
	})
	if err != nil {
		logger.Error("token request failed", "err", err)
		return "", fmt.Errorf("%w: %w", domain.ErrNoToken, err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Error("token request rejected", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", domain.ErrNoToken, resp.StatusCode)
	}

	var body authResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		logger.Error("token response unreadable", "err", err)
		return "", fmt.Errorf("%w: decode auth response: %w", domain.ErrNoToken, err)
	}
	if strings.TrimSpace(body.AccessToken) == "" {
		logger.Error("token response missing access token")
		return "", fmt.Errorf("%w: auth response missing access_token", domain.ErrNoToken)
	}

	logger.Info("token received")
	return body.AccessToken, nil
}
