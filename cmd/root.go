package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"s3util/internal/config"
	"s3util/internal/logging"
	"s3util/internal/s3"
)

var verbosity int

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
}

var rootCmd = &cobra.Command{
	Use:   "s3util",
	Short: "Usage accounting and version purge for S3 buckets",
	Long:  "s3util reports how much space every stored version occupies under a bucket or prefix, and can destroy all versions under a target. Works against AWS S3 and S3-compatible stores such as MinIO.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbosity)
	},
}

func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newClient(ctx context.Context) (*s3.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	client, err := s3.New(ctx, s3.Options{
		Endpoint:           cfg.S3.Endpoint,
		Region:             cfg.S3.Region,
		AccessKey:          cfg.S3.AccessKey,
		SecretKey:          cfg.S3.SecretKey,
		PathStyle:          cfg.S3.PathStyle,
		InsecureSkipVerify: cfg.S3.InsecureSkipVerify,
		Retry:              retryPolicy(cfg),
	})
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

func retryPolicy(cfg *config.Config) s3.RetryPolicy {
	return s3.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
	}
}
