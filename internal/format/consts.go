// Package format houses low-level decoders for memory image containers. The
// goal is to keep header parsing focused and allocation-free, independent of
// the address-space types that orchestrate the decoded ranges.
package format

var (
	// LiMESignature is the four-byte magic at the start of every LiME range
	// header. Layout (little-endian): 0x4C694D45 ("EMiL" on disk).
	LiMESignature = []byte{'E', 'M', 'i', 'L'}
)

const (
	// LiMEHeaderSize is the size of a LiME range header in bytes.
	//
	//	Offset  Size  Field
	//	0x00    4     magic 0x4C694D45
	//	0x04    4     version (1)
	//	0x08    8     first physical address of the range
	//	0x10    8     last physical address of the range (inclusive)
	//	0x18    8     reserved
	LiMEHeaderSize = 0x20

	LiMEMagicOffset   = 0x00
	LiMEVersionOffset = 0x04
	LiMEStartOffset   = 0x08
	LiMEEndOffset     = 0x10

	// LiMEVersion is the only header version LiME has shipped.
	LiMEVersion = 1
)
