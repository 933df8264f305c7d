package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"s3util/internal/purge"
	"s3util/internal/s3"
)

func init() {
	rootCmd.AddCommand(destroyCmd)
}

var destroyCmd = &cobra.Command{
	Use:   "destroy <bucket-url>",
	Short: "Delete every version and delete marker under a bucket or prefix",
	Long:  "Destroy permanently removes every object version and delete marker under the target, in bulk batches. Entries the store keeps rejecting are reported individually; one bad batch never stops the rest of the purge.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDestroy,
}

func runDestroy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	target, err := s3.ParseTarget(args[0])
	if err != nil {
		return err
	}
	client, cfg, err := newClient(ctx)
	if err != nil {
		return err
	}

	exec := purge.NewExecutor(client, client, cfg.BatchSize, retryPolicy(cfg))
	res, err := exec.Destroy(ctx, target)

	// Report confirmed progress even when the run stopped early.
	cmd.Printf("Deleted %d versions from %s\n", res.Deleted, target)
	if err != nil {
		return fmt.Errorf("destroying %s: %w", target, err)
	}
	if res.Failed > 0 {
		for _, f := range res.FailedEntries {
			cmd.PrintErrf("  failed: %s (version %s): %s: %s\n", f.Key, f.VersionID, f.Code, f.Message)
		}
		return fmt.Errorf("%d of %d deletions failed", res.Failed, res.Deleted+res.Failed)
	}
	return nil
}
