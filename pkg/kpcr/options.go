package kpcr

import (
	"log/slog"

	"github.com/joshuapare/kpcrkit/pkg/types"
)

// Options configures a Scanner. The zero value scans with DefaultLayout on
// one goroutine and logs nothing.
type Options struct {
	// Layout describes the structure being searched for. A zero Layout means
	// DefaultLayout.
	Layout Layout

	// Workers is the number of runs scanned concurrently. Values below 2
	// scan sequentially. Results are ordered the same either way.
	Workers int

	// Limit stops the scan once this many matches are known. Zero returns
	// every match.
	Limit int

	// Progress, when set, is called once per kernel-space run just before it
	// is scanned. It is always called from the goroutine running Scan.
	Progress func(run types.Run)

	// Logger receives debug and summary records. Nil discards them.
	Logger *slog.Logger
}

var discardLogger = slog.New(slog.DiscardHandler)

func (o Options) withDefaults() Options {
	if o.Layout == (Layout{}) {
		o.Layout = DefaultLayout
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Limit < 0 {
		o.Limit = 0
	}
	if o.Logger == nil {
		o.Logger = discardLogger
	}
	return o
}
