// Package types defines the shared data model for locating the per-processor
// kernel control region (KPCR) inside a captured memory image.
//
// The package only exposes interfaces and small value types. Providers in
// pkg/addrspace implement AddressSpace; the scanner in pkg/kpcr consumes it.
//
// Design goals:
//   - Plain value types (PageExtent, Run, AnchorMatch) instead of scanner state.
//   - Paranoid bounds checking; a damaged image never panics a scan.
//   - Typed errors with stable categories (read/ordering/format/config).
//
// This package has no dependencies beyond the standard library.
package types
