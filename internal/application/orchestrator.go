package application

import (
	"context"
	"fmt"

	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/bnema/major-rewards-cli/internal/logging"
	"github.com/charmbracelet/log"
)

// TokenEnsurer gives an account a working token before its actions run.
type TokenEnsurer interface {
	Ensure(ctx context.Context, state *domain.AccountState) error
}

// Orchestrator walks the accounts one at a time and runs every reward action
// for an account before moving to the next.
type Orchestrator struct {
	actions []RewardAction
	ensurer TokenEnsurer
	logger  *log.Logger
}

// NewOrchestrator runs actions in the given order for every account. A nil
// ensurer leaves token-less accounts to the actions' 401 handling.
func NewOrchestrator(actions []RewardAction, ensurer TokenEnsurer, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Orchestrator{actions: actions, ensurer: ensurer, logger: logger}
}

// Run processes states in order and stops between accounts when ctx is done.
func (o *Orchestrator) Run(ctx context.Context, states []*domain.AccountState) (domain.RunReport, error) {
	report := domain.RunReport{Accounts: make([]domain.AccountReport, 0, len(states))}

	for _, state := range states {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Accounts = append(report.Accounts, o.ProcessAccount(ctx, state))
	}

	return report, ctx.Err()
}

// ProcessAccount runs the actions for one account. A failing action is
// recorded and the next one still runs. An account without a token still
// runs its actions so a 401 can refresh it within the same pass.
func (o *Orchestrator) ProcessAccount(ctx context.Context, state *domain.AccountState) (report domain.AccountReport) {
	label := state.Label()
	logger := o.logger.With(logging.KeyAccount, label)
	report = domain.AccountReport{Label: label}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("account processing aborted", "panic", r)
			report.Results = append(report.Results, domain.ActionResult{
				Action:  "panic",
				Outcome: domain.Outcome{Kind: domain.OutcomeFatal, Err: fmt.Errorf("panic: %v", r)},
			})
		}
		report.HasToken = state.Token() != ""
	}()

	if state.Token() == "" && o.ensurer != nil {
		if err := o.ensurer.Ensure(ctx, state); err != nil {
			logger.Error("could not acquire token", "err", err)
		}
	}
	if state.Token() == "" {
		logger.Warn("no token, actions will refresh it on 401")
	}

	logger.Info("processing account")
	for _, action := range o.actions {
		if ctx.Err() != nil {
			return report
		}

		outcome := action.Run(ctx, state)
		report.Results = append(report.Results, domain.ActionResult{Action: action.Name(), Outcome: outcome})
		logger.Debug("action finished", logging.KeyAction, action.Name(), "outcome", outcome.String())
	}

	return report
}
