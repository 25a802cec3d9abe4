package application

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/bnema/major-rewards-cli/internal/logging"
	"github.com/bnema/major-rewards-cli/internal/ports"
	"github.com/charmbracelet/log"
)

const (
	ActionJoinSquad  = "join-squad"
	ActionDailyTasks = "daily-tasks"
	ActionVisit      = "visit"
	ActionRoulette   = "roulette"
	ActionCoins      = "coins"
	ActionSwipeCoins = "swipe-coins"
	ActionDurov      = "durov"
)

const (
	DefaultActionPacing = 2 * time.Second
	DefaultVisitPacing  = 3 * time.Second
)

// DefaultTaskDenyList names tasks that cannot be completed without a
// purchase.
var DefaultTaskDenyList = domain.DenyList{"One-time Stars Purchase", "Binance x TON", "Status Purchase"}

// CoinRange is an inclusive range of coin amounts to claim.
type CoinRange struct {
	Min int
	Max int
}

func (r CoinRange) pick(intN func(int) int) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + intN(r.Max-r.Min+1)
}

var (
	DefaultCoinsRange      = CoinRange{Min: 890, Max: 914}
	DefaultSwipeCoinsRange = CoinRange{Min: 2880, Max: 2980}
)

type RewardsConfig struct {
	ActionPacing    time.Duration
	VisitPacing     time.Duration
	CoinsRange      CoinRange
	SwipeCoinsRange CoinRange
	TaskDenyList    domain.DenyList
}

func DefaultRewardsConfig() RewardsConfig {
	return RewardsConfig{
		ActionPacing:    DefaultActionPacing,
		VisitPacing:     DefaultVisitPacing,
		CoinsRange:      DefaultCoinsRange,
		SwipeCoinsRange: DefaultSwipeCoinsRange,
		TaskDenyList:    DefaultTaskDenyList,
	}
}

// RewardAction is one step of the per-account claim sequence.
type RewardAction interface {
	Name() string
	Run(ctx context.Context, state *domain.AccountState) domain.Outcome
}

type rewardStep struct {
	name string
	run  func(ctx context.Context, state *domain.AccountState) domain.Outcome
}

func (s rewardStep) Name() string {
	return s.name
}

func (s rewardStep) Run(ctx context.Context, state *domain.AccountState) domain.Outcome {
	return s.run(ctx, state)
}

// Rewards builds the reward actions on top of the executor.
type Rewards struct {
	api      ports.RewardAPI
	refs     ports.ReferenceSource
	executor *Executor
	clock    ports.Clock
	cfg      RewardsConfig
	intN     func(int) int
	logger   *log.Logger
}

// NewRewards builds the reward steps. Every request goes through executor.
func NewRewards(api ports.RewardAPI, refs ports.ReferenceSource, executor *Executor, clock ports.Clock, cfg RewardsConfig, logger *log.Logger) *Rewards {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Rewards{
		api:      api,
		refs:     refs,
		executor: executor,
		clock:    clock,
		cfg:      cfg,
		intN:     rand.Intn,
		logger:   logger,
	}
}

// Actions returns the claim sequence in its fixed order.
func (r *Rewards) Actions() []RewardAction {
	return []RewardAction{
		rewardStep{name: ActionJoinSquad, run: r.joinSquad},
		rewardStep{name: ActionDailyTasks, run: r.dailyTasks},
		rewardStep{name: ActionVisit, run: r.visit},
		rewardStep{name: ActionRoulette, run: r.roulette},
		rewardStep{name: ActionCoins, run: r.coins},
		rewardStep{name: ActionSwipeCoins, run: r.swipeCoins},
		rewardStep{name: ActionDurov, run: r.durov},
	}
}

func (r *Rewards) log(state *domain.AccountState, action string) *log.Logger {
	return r.logger.With(logging.KeyAccount, state.Label(), logging.KeyAction, action)
}

func (r *Rewards) joinSquad(ctx context.Context, state *domain.AccountState) domain.Outcome {
	outcome := r.executor.RunAction(ctx, Action{
		Name:    ActionJoinSquad,
		Request: r.api.JoinSquad,
	}, state)

	logger := r.log(state, ActionJoinSquad)
	switch {
	case outcome.OK():
		logger.Info("joined the squad")
	case isSquadMember(outcome):
		logger.Info("already a member of the squad")
		outcome.Kind = domain.OutcomeAlreadyCompleted
	}

	return outcome
}

func (r *Rewards) dailyTasks(ctx context.Context, state *domain.AccountState) domain.Outcome {
	logger := r.log(state, ActionDailyTasks)

	listed := r.executor.RunAction(ctx, Action{
		Name:    ActionDailyTasks,
		Request: r.api.ListDailyTasks,
	}, state)
	if !listed.OK() {
		return listed
	}

	var tasks []domain.Task
	if err := json.Unmarshal(listed.Body, &tasks); err != nil {
		logger.Error("task list unreadable", "err", err)
		return domain.Outcome{Kind: domain.OutcomeFatal, StatusCode: listed.StatusCode, Err: err}
	}
	if len(tasks) == 0 {
		logger.Info("no tasks available")
		return listed
	}

	selected := r.cfg.TaskDenyList.Select(tasks)
	var failed []domain.Outcome
	for _, task := range selected {
		if ctx.Err() != nil {
			break
		}

		done := r.executor.RunAction(ctx, Action{
			Name:   ActionDailyTasks,
			Pacing: r.cfg.ActionPacing,
			Request: func(ctx context.Context, token string) (ports.Response, error) {
				return r.api.CompleteTask(ctx, token, task.ID)
			},
		}, state)

		switch {
		case done.OK():
			var result struct {
				IsCompleted bool `json:"is_completed"`
			}
			_ = json.Unmarshal(done.Body, &result)
			logger.Info("task done", "title", task.Title, "reward", task.Award, "completed", result.IsCompleted)
		case isAlreadyCompletedTask(ports.Response{StatusCode: done.StatusCode, Body: done.Body}):
			logger.Debug("task already completed", "title", task.Title)
		case done.Kind == domain.OutcomeAlreadyCompleted:
			logger.Debug("task on cooldown", "title", task.Title, "resume_at", done.ResumeAt)
		default:
			logger.Warn("task not completed", "title", task.Title, "outcome", done.String())
			failed = append(failed, done)
		}
	}

	if len(failed) == 0 {
		return listed
	}

	worst := failed[0]
	for _, done := range failed[1:] {
		if severity(done.Kind) > severity(worst.Kind) {
			worst = done
		}
	}
	worst.Err = fmt.Errorf("%d of %d tasks not completed: %s", len(failed), len(selected), worst.String())

	return worst
}

func severity(kind domain.OutcomeKind) int {
	switch kind {
	case domain.OutcomeFatal:
		return 3
	case domain.OutcomeUnauthorized:
		return 2
	case domain.OutcomeTransient:
		return 1
	default:
		return 0
	}
}

func (r *Rewards) visit(ctx context.Context, state *domain.AccountState) domain.Outcome {
	outcome := r.executor.RunAction(ctx, Action{
		Name:    ActionVisit,
		Pacing:  r.cfg.VisitPacing,
		Request: r.api.Visit,
	}, state)
	if outcome.OK() {
		r.log(state, ActionVisit).Info("visit sent")
	}

	return outcome
}

func (r *Rewards) roulette(ctx context.Context, state *domain.AccountState) domain.Outcome {
	outcome := r.executor.RunAction(ctx, Action{
		Name:    ActionRoulette,
		Pacing:  r.cfg.ActionPacing,
		Request: r.api.SpinRoulette,
	}, state)
	if !outcome.OK() {
		return outcome
	}

	logger := r.log(state, ActionRoulette)
	var result struct {
		RatingAward *float64 `json:"rating_award"`
	}
	if err := json.Unmarshal(outcome.Body, &result); err == nil && result.RatingAward != nil {
		logger.Info("roulette spun", "rating_award", *result.RatingAward)
	} else {
		logger.Info("roulette spun, no rating award")
	}

	return outcome
}

func (r *Rewards) coins(ctx context.Context, state *domain.AccountState) domain.Outcome {
	return r.claimCoins(ctx, state, ActionCoins, r.cfg.CoinsRange, r.api.ClaimCoins)
}

func (r *Rewards) swipeCoins(ctx context.Context, state *domain.AccountState) domain.Outcome {
	return r.claimCoins(ctx, state, ActionSwipeCoins, r.cfg.SwipeCoinsRange, r.api.ClaimSwipeCoins)
}

func (r *Rewards) claimCoins(ctx context.Context, state *domain.AccountState, name string, coins CoinRange, claim func(context.Context, string, int) (ports.Response, error)) domain.Outcome {
	var sent int
	outcome := r.executor.RunAction(ctx, Action{
		Name:   name,
		Pacing: r.cfg.ActionPacing,
		Request: func(ctx context.Context, token string) (ports.Response, error) {
			sent = coins.pick(r.intN)
			return claim(ctx, token, sent)
		},
	}, state)
	if outcome.OK() {
		r.log(state, name).Info("coins claimed", "coins", sent)
	}

	return outcome
}

func (r *Rewards) durov(ctx context.Context, state *domain.AccountState) domain.Outcome {
	logger := r.log(state, ActionDurov)

	if err := r.clock.Sleep(ctx, r.cfg.ActionPacing); err != nil {
		return domain.Outcome{Kind: domain.OutcomeFatal, Err: err}
	}

	payload, err := r.refs.DurovPayload(ctx)
	if err != nil {
		logger.Error("durov payload unavailable", "err", err)
		return domain.Outcome{Kind: domain.OutcomeFatal, Err: err}
	}

	outcome := r.executor.RunAction(ctx, Action{
		Name: ActionDurov,
		Request: func(ctx context.Context, token string) (ports.Response, error) {
			return r.api.ClaimDurov(ctx, token, payload)
		},
	}, state)
	if outcome.OK() {
		logger.Info("durov combo claimed")
	}

	return outcome
}

type detailTitle struct {
	Title string `json:"title"`
}

func isSquadMember(outcome domain.Outcome) bool {
	if outcome.StatusCode != http.StatusBadRequest {
		return false
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(outcome.Body, &body); err != nil {
		return false
	}

	var detail detailTitle
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return false
	}

	return strings.Contains(strings.ToLower(detail.Title), "already a member")
}

func isAlreadyCompletedTask(resp ports.Response) bool {
	if resp.StatusCode != http.StatusBadRequest {
		return false
	}

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(body.Detail), "Task is already completed")
}
