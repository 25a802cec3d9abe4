package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/bnema/major-rewards-cli/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the major.toml configuration",
	}

	cmd.AddCommand(newConfigInitCmd(opts))

	return cmd
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var (
		force  bool
		global bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a major.toml with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configFile
			switch {
			case path != "":
			case global:
				dir, err := config.UserConfigDir()
				if err != nil {
					return err
				}
				path = filepath.Join(dir, config.DefaultFileName)
			default:
				path = config.DefaultFileName
			}

			if err := config.WriteDefault(path, force); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&global, "global", false, "Write to ~/.config/major instead of the working directory")

	return cmd
}
