package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	statusadapter "github.com/bnema/major-rewards-cli/internal/adapters/render/status"
	"github.com/bnema/major-rewards-cli/internal/adapters/schedule"
	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newRunCmd(load func(*cobra.Command) (*app, error)) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Refresh tokens and claim every reward for every account",
		Long:  "run acquires or reuses a token for each account, claims the rewards one account at a time, then keeps refreshing tokens on schedule until interrupted. Use --once to exit after the claim pass.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runRewards(ctx, cmd, app, once)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Exit after one claim pass instead of refreshing tokens until interrupted")

	return cmd
}

func runRewards(ctx context.Context, cmd *cobra.Command, app *app, once bool) error {
	states, err := loadAccountStates(ctx, app)
	if err != nil {
		return err
	}

	app.logger.Info("starting", "accounts", len(states))
	if err := app.tokens.RefreshAll(ctx, states); err != nil {
		return interrupted(err)
	}

	var scheduler *schedule.Scheduler
	if !once {
		scheduler = schedule.New(app.logger)
		if _, err := scheduler.Every(ctx, app.cfg.Schedule.Refresh, func(ctx context.Context) {
			app.logger.Info("scheduled token refresh")
			if err := app.tokens.RefreshAll(ctx, states); err != nil {
				app.logger.Warn("scheduled token refresh stopped", "err", err)
			}
		}); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop(context.Background())
	}

	report, runErr := app.orchestrator.Run(ctx, states)
	if err := writeReport(cmd, app, report); err != nil {
		return err
	}
	if runErr != nil {
		return interrupted(runErr)
	}

	if once {
		return nil
	}

	app.logger.Info("claim pass finished, refreshing tokens until interrupted", "schedule", app.cfg.Schedule.Refresh)
	<-ctx.Done()
	app.logger.Info("shutting down")

	return nil
}

func loadAccountStates(ctx context.Context, app *app) ([]*domain.AccountState, error) {
	entries, err := app.source.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAccountsFileCreated) {
			return nil, fmt.Errorf("%w; add one launch link per line and run again", err)
		}
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no accounts in %s; add one launch link per line", app.source.Path())
	}

	return domain.NewAccountStates(entries), nil
}

func writeReport(cmd *cobra.Command, app *app, report domain.RunReport) error {
	rendered, err := app.reportRenderer(report, statusadapter.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render run report: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// interrupted turns a signal-driven cancellation into a clean exit.
func interrupted(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
