package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kpcrkit/internal/buf"
	"github.com/joshuapare/kpcrkit/pkg/kpcr"
)

func init() {
	cmd := newCheckCmd()
	addImageFlags(cmd)
	addLayoutFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <image> <offset>",
		Short: "Test a single offset for the KPCR signature",
		Long: `The check command reads the SelfPcr and Prcb fields at one offset and
reports whether they carry the KPCR self-reference signature.

Example:
  kpcrscan check memory.raw 0xffdff000 --base 0x80000000`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

// CheckResult is the JSON form of a single-offset check.
type CheckResult struct {
	Offset   string `json:"offset"`
	SelfPcr  string `json:"self_pcr,omitempty"`
	Prcb     string `json:"prcb,omitempty"`
	WantPrcb string `json:"want_prcb,omitempty"` // empty when offset+embed wraps
	Error    string `json:"error,omitempty"`
	Match    bool   `json:"match"`
}

func runCheck(args []string) error {
	imagePath := args[0]
	off, err := strconv.ParseUint(args[1], 0, 64)
	if err != nil {
		return fmt.Errorf("invalid offset %q: %w", args[1], err)
	}

	l := currentLayout()
	if err := l.Validate(); err != nil {
		return err
	}

	space, err := openImage(imagePath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer space.Close()

	f := kpcr.ReadFields(space, l, off)
	_, match := kpcr.IsAnchor(space, l, off)

	res := CheckResult{
		Offset: hex(off),
		Match:  match,
	}
	if want, ok := buf.AddOverflowSafe(off, l.PrcbEmbedOffset); ok {
		res.WantPrcb = hex(want)
	}
	if f.SelfErr == nil {
		res.SelfPcr = hex(f.SelfRef)
	}
	if f.PrcbErr == nil {
		res.Prcb = hex(f.Prcb)
	}
	if err := errors.Join(f.SelfErr, f.PrcbErr); err != nil {
		res.Error = err.Error()
	}

	if jsonOut {
		return printJSON(res)
	}

	printInfo("Offset:  %s\n", res.Offset)
	if res.Error != "" {
		printInfo("Read:    %s\n", res.Error)
	}
	if res.SelfPcr != "" {
		printInfo("SelfPcr: %s (want %s)\n", res.SelfPcr, res.Offset)
	}
	switch {
	case res.Prcb != "" && res.WantPrcb != "":
		printInfo("Prcb:    %s (want %s)\n", res.Prcb, res.WantPrcb)
	case res.Prcb != "":
		printInfo("Prcb:    %s (want overflows address space)\n", res.Prcb)
	}
	if match {
		printInfo("Result:  KPCR signature present\n")
	} else {
		printInfo("Result:  no KPCR signature\n")
	}
	return nil
}
