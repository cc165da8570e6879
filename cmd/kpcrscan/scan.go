package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kpcrkit/cmd/kpcrscan/logger"
	"github.com/joshuapare/kpcrkit/pkg/kpcr"
	"github.com/joshuapare/kpcrkit/pkg/types"
)

var (
	scanWorkers int
	scanFirst   bool
)

func init() {
	cmd := newScanCmd()
	addImageFlags(cmd)
	addLayoutFlags(cmd)
	cmd.Flags().IntVarP(&scanWorkers, "workers", "w", 1, "Kernel runs scanned concurrently")
	cmd.Flags().BoolVar(&scanFirst, "first", false, "Stop after the first match")
	rootCmd.AddCommand(cmd)
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Scan kernel space for KPCR candidates",
		Long: `The scan command coalesces the readable parts of the image into runs and
tests every aligned offset in kernel space for the KPCR self-reference
signature. Every candidate is reported; coincidental matches are possible.

Example:
  kpcrscan scan memory.raw --base 0x80000000
  kpcrscan scan memory.lime --workers 4 --json
  kpcrscan scan memory.raw --struct-size 0x1f94 --prcb-embed 0x120`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), args)
		},
	}
	return cmd
}

// ScanResult is the JSON form of a scan.
type ScanResult struct {
	Image       string        `json:"image"`
	Layout      string        `json:"layout"`
	Runs        int           `json:"runs"`
	KernelRuns  int           `json:"kernel_runs"`
	KernelBytes uint64        `json:"kernel_bytes"`
	Matches     []MatchResult `json:"matches"`
	Elapsed     string        `json:"elapsed"`
	Interrupted bool          `json:"interrupted,omitempty"`
}

// MatchResult is one KPCR candidate.
type MatchResult struct {
	Offset string `json:"offset"`
	Prcb   string `json:"prcb"`
}

func runScan(ctx context.Context, args []string) error {
	imagePath := args[0]

	space, err := openImage(imagePath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer space.Close()

	limit := 0
	if scanFirst {
		limit = 1
	}
	scanner, err := kpcr.New(kpcr.Options{
		Layout:  currentLayout(),
		Workers: scanWorkers,
		Limit:   limit,
		Logger:  logger.L.With("image", imagePath),
		Progress: func(r types.Run) {
			printVerbose("Scanning %s (%d bytes)\n", r, r.Length)
		},
	})
	if err != nil {
		return err
	}

	all, err := scanner.Runs(space)
	if err != nil {
		return fmt.Errorf("failed to coalesce image extents: %w", err)
	}
	kernel := scanner.KernelRuns(all)

	start := time.Now()
	matches, err := scanner.Scan(ctx, space)
	interrupted := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	if err != nil && !interrupted {
		return fmt.Errorf("scan failed: %w", err)
	}

	res := ScanResult{
		Image:       imagePath,
		Layout:      scanner.Layout().Name,
		Runs:        len(all),
		KernelRuns:  len(kernel),
		Matches:     make([]MatchResult, 0, len(matches)),
		Elapsed:     time.Since(start).Round(time.Millisecond).String(),
		Interrupted: interrupted,
	}
	for _, r := range kernel {
		res.KernelBytes += r.Length
	}
	for _, m := range matches {
		res.Matches = append(res.Matches, MatchResult{Offset: hex(m.Offset), Prcb: hex(m.Prcb)})
	}

	if jsonOut {
		return printJSON(res)
	}

	printVerbose("Scanned %d of %d runs (%d bytes) in %s\n", res.KernelRuns, res.Runs, res.KernelBytes, res.Elapsed)
	if interrupted {
		printInfo("Scan interrupted; results are partial\n")
	}
	if len(res.Matches) == 0 {
		printInfo("No KPCR candidates found\n")
		return nil
	}
	printInfo("KPCR candidates:\n")
	for _, m := range res.Matches {
		printInfo("  %s  prcb=%s\n", m.Offset, m.Prcb)
	}
	return nil
}
