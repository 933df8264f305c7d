package cmd

import (
	"github.com/spf13/cobra"

	"s3util/internal/config"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration file",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cmd.Printf("Configuration OK (%s): concurrency=%d batch_size=%d retry_attempts=%d\n",
		config.ResolveConfigPath(), cfg.Concurrency, cfg.BatchSize, cfg.Retry.MaxAttempts)
	return nil
}
