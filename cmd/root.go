package cmd

import "github.com/spf13/cobra"

type rootOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "major",
		Short:         "Major rewards CLI: claim daily rewards for every account",
		Long:          "major exchanges each account's launch link for a bearer token, keeps the tokens fresh, and claims the daily squad, task, visit, roulette, coin and Durov rewards one account at a time.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to major.toml (default: ./major.toml or ~/.config/major/major.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Dotenv file to load before reading MAJOR_* variables (default: .env)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	load := func(cmd *cobra.Command) (*app, error) {
		return wireApp(cmd, *opts)
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(load),
		newTokensCmd(load),
		newAccountsCmd(load),
		newConfigCmd(opts),
	)

	return rootCmd
}
