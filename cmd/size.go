package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"s3util/internal/s3"
	"s3util/internal/usage"
)

func init() {
	rootCmd.AddCommand(sizeCmd)
}

var sizeCmd = &cobra.Command{
	Use:   "size <bucket-url>",
	Short: "Sum the size of every stored version under a bucket or prefix",
	Long:  "Size lists every object version and delete marker under the target and reports total, current, noncurrent and orphaned bytes. The target is s3://bucket or s3://bucket/prefix; a bare bucket name also works. On buckets without versioning only current objects are counted.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSize,
}

func runSize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	target, err := s3.ParseTarget(args[0])
	if err != nil {
		return err
	}
	client, cfg, err := newClient(ctx)
	if err != nil {
		return err
	}

	orch := usage.NewOrchestrator(client, cfg.Concurrency)
	totals, enabled, err := orch.Size(ctx, target)
	if err != nil {
		return fmt.Errorf("sizing %s: %w", target, err)
	}

	rep := usage.Report{Target: target, Totals: totals, VersioningEnabled: enabled}
	cmd.Println(rep.ConsoleLine())
	return nil
}
