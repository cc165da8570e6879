// Package kpcr locates the Windows kernel processor control region (KPCR) in
// a memory image without symbols, page tables, or a known base address.
//
// # Technique
//
// Every KPCR points at itself and at the processor control block (KPRCB)
// embedded inside it. On 32-bit x86 Windows XP/2003:
//
//	Offset  Field       Expected value
//	0x01c   SelfPcr     address of the KPCR itself
//	0x020   Prcb        address of the KPCR + 0x120
//	0x120   PrcbData    embedded KPRCB
//
// The scanner coalesces the image's readable extents into runs, skips runs
// below kernel space, and tests every aligned offset that leaves room for a
// whole structure. Two independent back-pointers make false positives rare
// but not impossible, so every hit is returned.
//
// Background: Damien Aumaitre (2009), "A little journey inside Windows memory".
//
// # Usage
//
//	s, err := kpcr.New(kpcr.Options{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	matches, err := s.Scan(ctx, space)
//
// Field offsets live in a Layout so other builds can be described without
// touching the scanner.
package kpcr
