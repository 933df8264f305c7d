package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"s3util/internal/s3"
	"s3util/internal/usage"
)

var reportOut string

func init() {
	rootCmd.AddCommand(sizeReportCmd)
	sizeReportCmd.Flags().StringVar(&reportOut, "out", "bucket_usage.csv", "Path of the CSV report to write")
}

var sizeReportCmd = &cobra.Command{
	Use:   "size-report <bucket-urls>",
	Short: "Size several targets at once and write a CSV report",
	Long:  "Size-report analyses a comma-separated list of targets concurrently and writes one CSV row per target, in input order. A target that fails keeps its row with empty size columns and a status label; the remaining targets still complete.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSizeReport,
}

func runSizeReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Reject the whole list before touching the network.
	targets, err := s3.ParseTargets(strings.Join(args, ","))
	if err != nil {
		return err
	}

	client, cfg, err := newClient(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(reportOut)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(usage.CSVHeader()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	w.Flush()

	orch := usage.NewOrchestrator(client, cfg.Concurrency)
	reports := orch.SizeReport(ctx, targets)

	failed := 0
	for _, rep := range reports {
		if err := w.Write(rep.CSVRow()); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		if rep.Err != nil {
			failed++
			continue
		}
		cmd.Println(rep.ConsoleLine())
	}

	cmd.Printf("Report written to %s\n", reportOut)
	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, len(reports))
	}
	return nil
}
