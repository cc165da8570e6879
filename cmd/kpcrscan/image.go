package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/kpcrkit/pkg/addrspace"
	"github.com/joshuapare/kpcrkit/pkg/kpcr"
)

// Image and layout flags shared by scan, runs and check.
var (
	imageFormat string
	imageBase   uint64
	layout      = kpcr.DefaultLayout
)

func addImageFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&imageFormat, "format", "auto", "Image format: auto, raw or lime")
	cmd.Flags().Uint64Var(&imageBase, "base", 0, "Address of the first byte of a raw image")
}

func addLayoutFlags(cmd *cobra.Command) {
	d := kpcr.DefaultLayout
	f := cmd.Flags()
	f.Uint64Var(&layout.KernelBase, "kernel-base", d.KernelBase, "Lowest run start that is scanned")
	f.Uint64Var(&layout.StructSize, "struct-size", d.StructSize, "Full size of the KPCR in bytes")
	f.Uint64Var(&layout.SelfPtrOffset, "self-offset", d.SelfPtrOffset, "Offset of the SelfPcr pointer")
	f.Uint64Var(&layout.PrcbPtrOffset, "prcb-offset", d.PrcbPtrOffset, "Offset of the Prcb pointer")
	f.Uint64Var(&layout.PrcbEmbedOffset, "prcb-embed", d.PrcbEmbedOffset, "Offset of the embedded KPRCB")
	f.Uint64Var(&layout.Alignment, "align", d.Alignment, "Scan stride in bytes")
	f.IntVar(&layout.PointerWidth, "pointer-width", d.PointerWidth, "Pointer width in bytes (4 or 8)")
}

func openImage(path string) (*addrspace.Space, error) {
	f, err := addrspace.ParseFormat(imageFormat)
	if err != nil {
		return nil, err
	}
	printVerbose("Opening %s image: %s\n", f, path)
	return addrspace.Open(path, addrspace.Options{Format: f, Base: imageBase})
}

func currentLayout() kpcr.Layout {
	l := layout
	if l != kpcr.DefaultLayout {
		l.Name = "custom"
	}
	return l
}
