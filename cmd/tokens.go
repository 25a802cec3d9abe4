package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newTokensCmd(load func(*cobra.Command) (*app, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Manage cached bearer tokens",
	}

	cmd.AddCommand(newTokensRefreshCmd(load))

	return cmd
}

func newTokensRefreshCmd(load func(*cobra.Command) (*app, error)) *cobra.Command {
	var noSpinner bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Check every account's token and acquire a new one where needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			states, err := loadAccountStates(ctx, app)
			if err != nil {
				return err
			}

			if noSpinner {
				err = app.tokens.RefreshAll(ctx, states)
			} else {
				err = runWithSpinner(ctx, cmd.ErrOrStderr(), "Refreshing tokens", func(ctx context.Context, status func(string)) error {
					return app.tokens.RefreshAllWithProgress(ctx, states, func(index, total int, state *domain.AccountState) {
						status(fmt.Sprintf("[%d/%d] %s", index, total, state.Label()))
					})
				})
			}
			if err := interrupted(err); err != nil {
				return err
			}

			return writeAccounts(cmd, app, false)
		},
	}

	cmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "Do not draw a progress spinner")

	return cmd
}
