package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/bootkit/internal/config"
)

// NewRootCmd создаёт корневую команду bootkit.
//
// Окружение читается здесь: его значения становятся default'ами флагов.
func NewRootCmd(version string) (*cobra.Command, error) {
	defaults, err := config.Load()
	if err != nil {
		return nil, err
	}

	rootCmd := &cobra.Command{
		Use:           "bootkit",
		Short:         "Seed container volumes and run startup or scheduled jobs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, defaults)
			if err != nil {
				return err
			}
			return Boot(cmd.Context(), cfg)
		},
	}

	config.BindFlags(rootCmd.PersistentFlags(), defaults)

	rootCmd.AddCommand(
		newValidateCmd(defaults),
		newVersionCmd(version),
	)

	return rootCmd, nil
}

// resolveConfig применяет флаги команды поверх окружения и валидирует результат.
func resolveConfig(cmd *cobra.Command, defaults config.Config) (config.Config, error) {
	cfg, err := defaults.ApplyFlags(cmd.Flags())
	if err != nil {
		return config.Config{}, fmt.Errorf("apply flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
