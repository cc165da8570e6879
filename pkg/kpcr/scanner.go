package kpcr

import (
	"context"
	"sync"

	"github.com/joshuapare/kpcrkit/internal/runs"
	"github.com/joshuapare/kpcrkit/pkg/types"
)

// cancelCheckInterval is how many candidates are tested between context
// checks (64 KiB of image at a 4-byte stride).
const cancelCheckInterval = 1 << 14

// Scanner runs the aligned signature scan over an address space. A Scanner
// holds only configuration and may be shared by concurrent scans.
type Scanner struct {
	opts Options
}

// New validates opts and returns a Scanner.
func New(opts Options) (*Scanner, error) {
	opts = opts.withDefaults()
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{opts: opts}, nil
}

// Scan is shorthand for New(opts) followed by Scan.
func Scan(ctx context.Context, as types.AddressSpace, opts Options) ([]types.AnchorMatch, error) {
	s, err := New(opts)
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx, as)
}

// Layout returns the layout in use.
func (s *Scanner) Layout() Layout { return s.opts.Layout }

// Runs coalesces the extents of as into runs, kernel-space or not.
func (s *Scanner) Runs(as types.AddressSpace) ([]types.Run, error) {
	return runs.Coalesce(as.Extents())
}

// KernelRuns keeps the runs that start at or above the layout's kernel base.
func (s *Scanner) KernelRuns(all []types.Run) []types.Run {
	var out []types.Run
	for _, r := range all {
		if s.opts.Layout.IsKernel(r.Offset) {
			out = append(out, r)
		}
	}
	return out
}

// Scan returns every validated KPCR candidate in as, ascending by offset.
//
// Extents that are out of order fail the scan before anything is read. Read
// failures at individual candidates are treated as non-matches. If ctx is
// cancelled, Scan returns the matches found so far along with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, as types.AddressSpace) ([]types.AnchorMatch, error) {
	all, err := s.Runs(as)
	if err != nil {
		return nil, err
	}
	kernel := s.KernelRuns(all)
	log := s.opts.Logger
	log.Debug("coalesced image", "runs", len(all), "kernel_runs", len(kernel), "bytes", runs.Total(kernel))

	var matches []types.AnchorMatch
	if s.opts.Workers > 1 && len(kernel) > 1 {
		matches, err = s.scanParallel(ctx, as, kernel)
	} else {
		matches, err = s.scanSequential(ctx, as, kernel)
	}
	if s.opts.Limit > 0 && len(matches) > s.opts.Limit {
		matches = matches[:s.opts.Limit]
	}
	log.Info("scan finished", "kernel_runs", len(kernel), "matches", len(matches), "err", err)
	return matches, err
}

func (s *Scanner) scanSequential(ctx context.Context, as types.AddressSpace, kernel []types.Run) ([]types.AnchorMatch, error) {
	var res []types.AnchorMatch
	for _, r := range kernel {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		s.progress(r)
		found, err := s.ScanRun(ctx, as, r)
		res = append(res, found...)
		if err != nil {
			return res, err
		}
		if s.opts.Limit > 0 && len(res) >= s.opts.Limit {
			break
		}
	}
	return res, nil
}

// poolSize caps the worker pool at one goroutine per kernel run.
func (s *Scanner) poolSize(runs int) int {
	return max(min(s.opts.Workers, runs), 1)
}

func (s *Scanner) scanParallel(ctx context.Context, as types.AddressSpace, kernel []types.Run) ([]types.AnchorMatch, error) {
	results := make([][]types.AnchorMatch, len(kernel))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range s.poolSize(len(kernel)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// A cancelled run keeps its partial matches; ctx.Err() is
				// reported once below.
				results[i], _ = s.ScanRun(ctx, as, kernel[i])
			}
		}()
	}

dispatch:
	for i, r := range kernel {
		if ctx.Err() != nil {
			break
		}
		s.progress(r)
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	var res []types.AnchorMatch
	for _, found := range results {
		res = append(res, found...)
	}
	return res, ctx.Err()
}

// ScanRun tests every aligned candidate in run that leaves room for a whole
// structure. The kernel-space filter is not applied here.
func (s *Scanner) ScanRun(ctx context.Context, as types.AddressSpace, run types.Run) ([]types.AnchorMatch, error) {
	l := s.opts.Layout
	count := l.CandidateCount(run)
	if count == 0 {
		return nil, nil
	}
	start, _ := l.FirstCandidate(run)
	s.opts.Logger.Debug("scanning run", "offset", run.Offset, "length", run.Length, "candidates", count)

	var res []types.AnchorMatch
	for i := uint64(0); i < count; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		o := start + i*l.Alignment
		if m, ok := IsAnchor(as, l, o); ok {
			s.opts.Logger.Debug("candidate validated", "offset", m.Offset, "prcb", m.Prcb)
			res = append(res, m)
		}
	}
	return res, nil
}

func (s *Scanner) progress(r types.Run) {
	if s.opts.Progress != nil {
		s.opts.Progress(r)
	}
}
