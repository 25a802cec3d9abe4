package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/bnema/major-rewards-cli/internal/logging"
	"github.com/bnema/major-rewards-cli/internal/ports"
	"github.com/charmbracelet/log"
)

const (
	DefaultRefreshPacing = 4 * time.Second
	DefaultProbePacing   = 2 * time.Second
)

type TokenServiceConfig struct {
	RefreshPacing time.Duration
	ProbePacing   time.Duration
	Gateway       RetryPolicy
}

// TokenService owns the per-account token lifecycle: reuse a stored token,
// acquire a new one, and check it still works against the daily task list.
type TokenService struct {
	store    ports.TokenStore
	acquirer *TokenAcquirer
	api      ports.RewardAPI
	refs     ports.ReferenceSource
	clock    ports.Clock
	cfg      TokenServiceConfig
	logger   *log.Logger
}

var _ TokenRefresher = (*TokenService)(nil)

// NewTokenService wires token lookup, acquisition and the check-in probe.
func NewTokenService(store ports.TokenStore, acquirer *TokenAcquirer, api ports.RewardAPI, refs ports.ReferenceSource, clock ports.Clock, cfg TokenServiceConfig, logger *log.Logger) *TokenService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &TokenService{
		store:    store,
		acquirer: acquirer,
		api:      api,
		refs:     refs,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Ensure gives state a working token. A stored token is reused when the
// identity can be extracted; a token that fails the probe is replaced once.
func (s *TokenService) Ensure(ctx context.Context, state *domain.AccountState) error {
	label := state.Label()
	logger := s.logger.With(logging.KeyAccount, label)

	identity, identityErr := domain.ExtractIdentity(state.Entry.Raw)
	if identityErr != nil {
		logger.Warn("account identity unavailable, token will not be cached", "err", identityErr)
	}

	token := ""
	if identityErr == nil {
		if stored, ok := s.store.Get(ctx, identity.Key); ok {
			logger.Debug("reusing stored token")
			token = stored
		}
	}

	if token == "" {
		refreshed, err := s.Refresh(ctx, state)
		if err != nil {
			return err
		}
		token = refreshed
	} else {
		state.SetToken(token)
	}

	if s.Probe(ctx, state, token) {
		return nil
	}

	logger.Warn("token rejected by task list, acquiring a new one")
	refreshed, err := s.Refresh(ctx, state)
	if err != nil {
		return err
	}
	if !s.Probe(ctx, state, refreshed) {
		logger.Warn("fresh token still rejected by task list")
	}

	return nil
}

// Refresh acquires a fresh token, stores it under the account key and sets
// it on state.
func (s *TokenService) Refresh(ctx context.Context, state *domain.AccountState) (string, error) {
	label := state.Label()

	token, err := s.acquirer.Acquire(ctx, domain.AuthPayload(state.Entry.Raw), label)
	if err != nil {
		return "", err
	}
	state.SetToken(token)

	identity, err := domain.ExtractIdentity(state.Entry.Raw)
	if err != nil {
		return token, nil
	}
	if err := s.store.Put(ctx, identity.Key, token); err != nil {
		s.logger.Error("save token", logging.KeyAccount, label, "err", err)
	}

	return token, nil
}

// RefreshProgress is told which account a refresh pass is about to check.
// index starts at 1.
type RefreshProgress func(index, total int, state *domain.AccountState)

// RefreshAll runs Ensure for every account, pacing between accounts. Errors
// are logged per account.
func (s *TokenService) RefreshAll(ctx context.Context, states []*domain.AccountState) error {
	return s.RefreshAllWithProgress(ctx, states, nil)
}

// RefreshAllWithProgress is RefreshAll with a callback before each account.
func (s *TokenService) RefreshAllWithProgress(ctx context.Context, states []*domain.AccountState, progress RefreshProgress) error {
	for i, state := range states {
		if progress != nil {
			progress(i+1, len(states), state)
		}
		if err := s.clock.Sleep(ctx, s.cfg.RefreshPacing); err != nil {
			return err
		}

		if err := s.Ensure(ctx, state); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.logger.Error("token refresh failed", logging.KeyAccount, state.Label(), "err", err)
		}
	}

	return nil
}

// Probe lists the daily tasks with token and, when that works, completes the
// tasks named by the remote allow-list. It reports whether the token was
// accepted.
func (s *TokenService) Probe(ctx context.Context, state *domain.AccountState, token string) bool {
	logger := s.logger.With(logging.KeyAccount, state.Label(), logging.KeyAction, "check-in")

	if err := s.clock.Sleep(ctx, s.cfg.ProbePacing); err != nil {
		return false
	}

	resp, err := s.cfg.Gateway.Retry(ctx, s.clock, func(ctx context.Context) (ports.Response, error) {
		return s.api.ListDailyTasks(ctx, token)
	}, func(attempt int, wait time.Duration) {
		logger.Warn("gateway timeout, trying again", "attempt", attempt, "wait", wait)
	})
	if err != nil {
		logger.Error("task list request failed", "err", err)
		return false
	}
	if resp.StatusCode != http.StatusOK {
		logger.Warn("task list rejected", "status", resp.StatusCode)
		return false
	}

	var tasks []domain.Task
	if err := json.Unmarshal(resp.Body, &tasks); err != nil {
		logger.Error("task list unreadable", "err", err)
		return true
	}
	logger.Debug("task list received", "tasks", len(tasks))

	titles, err := s.refs.TaskTitles(ctx)
	if err != nil {
		logger.Warn("task titles unavailable", "err", err)
		return true
	}

	allow := domain.AllowList(titles)
	for _, title := range allow.Missing(tasks) {
		logger.Debug("task not found", "title", title)
	}
	for _, task := range allow.Select(tasks) {
		if err := s.completeListedTask(ctx, token, task, logger); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			logger.Warn("task submission failed", "task", task.ID, "title", task.Title, "err", err)
		}
	}

	return true
}

func (s *TokenService) completeListedTask(ctx context.Context, token string, task domain.Task, logger *log.Logger) error {
	if err := s.clock.Sleep(ctx, s.cfg.ProbePacing); err != nil {
		return err
	}

	resp, err := s.api.CompleteTask(ctx, token, task.ID)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		logger.Info("task triggered", "task", task.ID, "title", task.Title)
		return nil
	case isAlreadyCompletedTask(resp):
		logger.Info("task already completed", "task", task.ID, "title", task.Title)
		return nil
	default:
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(resp.Body))
	}
}
