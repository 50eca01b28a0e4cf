package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quiz-engine/internal/config"
)

const defaultConfigPath = "config/config.yaml"

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var (
		port       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:          "quiz-engine",
		Short:        "Timed quiz player with five question kinds, grading and result history",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return fmt.Errorf("load .env: %w", err)
			}
			// flags win; otherwise fall back to the environment, which .env may have filled
			if !cmd.Flags().Changed("port") {
				port = os.Getenv("PORT")
			}
			if !cmd.Flags().Changed("config") {
				configPath = envOr("CONFIG_PATH", defaultConfigPath)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&port, "port", "", "port to listen on (default $PORT, then server.port)")
	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to YAML config (default $CONFIG_PATH)")
	cmd.AddCommand(
		NewStartCmd(&configPath, &port),
		NewMigrateCmd(&configPath),
		NewSeedCmd(&configPath),
		NewGradeCmd(),
	)
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
