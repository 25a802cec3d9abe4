package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountsCmd(load func(*cobra.Command) (*app, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect the configured accounts",
	}

	cmd.AddCommand(newAccountsListCmd(load))

	return cmd
}

func newAccountsListCmd(load func(*cobra.Command) (*app, error)) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with their labels and cached token state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}

			return writeAccounts(cmd, app, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func writeAccounts(cmd *cobra.Command, app *app, asJSON bool) error {
	summaries, err := app.queries.ListAccounts(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	rendered, err := app.listRenderer(summaries)
	if err != nil {
		return fmt.Errorf("render accounts: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
