package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kpcrkit/pkg/kpcr"
)

func init() {
	cmd := newRunsCmd()
	addImageFlags(cmd)
	addLayoutFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs <image>",
		Short: "List the contiguous readable runs of an image",
		Long: `The runs command coalesces the image's readable extents into maximal
contiguous runs and marks the ones a scan would visit.

Example:
  kpcrscan runs memory.lime
  kpcrscan runs memory.raw --base 0x80000000 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(args)
		},
	}
	return cmd
}

// RunResult is the JSON form of one coalesced run.
type RunResult struct {
	Offset     string `json:"offset"`
	End        string `json:"end"`
	Length     uint64 `json:"length"`
	Kernel     bool   `json:"kernel"`
	Candidates uint64 `json:"candidates"`
}

func runRuns(args []string) error {
	imagePath := args[0]

	space, err := openImage(imagePath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer space.Close()

	scanner, err := kpcr.New(kpcr.Options{Layout: currentLayout()})
	if err != nil {
		return err
	}
	all, err := scanner.Runs(space)
	if err != nil {
		return fmt.Errorf("failed to coalesce image extents: %w", err)
	}

	l := scanner.Layout()
	results := make([]RunResult, 0, len(all))
	for _, r := range all {
		rr := RunResult{
			Offset: hex(r.Offset),
			End:    hex(r.End()),
			Length: r.Length,
			Kernel: l.IsKernel(r.Offset),
		}
		if rr.Kernel {
			rr.Candidates = l.CandidateCount(r)
		}
		results = append(results, rr)
	}

	if jsonOut {
		return printJSON(results)
	}

	printVerbose("%d extents coalesced into %d runs\n", len(space.Extents()), len(all))
	for _, rr := range results {
		mark := " "
		if rr.Kernel {
			mark = "*"
		}
		printInfo("%s %s-%s  %d bytes  %d candidates\n", mark, rr.Offset, rr.End, rr.Length, rr.Candidates)
	}
	return nil
}
