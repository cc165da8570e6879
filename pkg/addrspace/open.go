package addrspace

import (
	"fmt"
	"strings"

	"github.com/joshuapare/kpcrkit/internal/buf"
	"github.com/joshuapare/kpcrkit/internal/format"
	"github.com/joshuapare/kpcrkit/internal/mmfile"
	"github.com/joshuapare/kpcrkit/pkg/types"
)

// Format selects how an image file is decoded.
type Format int

const (
	// FormatAuto sniffs the file: LiME when the LiME magic is present, raw otherwise.
	FormatAuto Format = iota
	// FormatRaw treats the file as one flat dump placed at Options.Base.
	FormatRaw
	// FormatLiME decodes LiME range headers; Options.Base is ignored.
	FormatLiME
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatRaw:
		return "raw"
	case FormatLiME:
		return "lime"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a format name (auto, raw, lime) to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "raw", "flat", "dd":
		return FormatRaw, nil
	case "lime":
		return FormatLiME, nil
	default:
		return FormatAuto, fmt.Errorf("addrspace: unknown image format %q", name)
	}
}

// Options controls how Open decodes an image file.
type Options struct {
	Format Format
	// Base is the address the first byte of a raw image is placed at.
	Base uint64
}

// Open maps the image at path and decodes it according to opts.
func Open(path string, opts Options) (*Space, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	s, err := decode(data, opts)
	if err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.cleanup = cleanup
	return s, nil
}

// OpenRaw maps a flat dump so that its first byte sits at base.
func OpenRaw(path string, base uint64) (*Space, error) {
	return Open(path, Options{Format: FormatRaw, Base: base})
}

// OpenLiME maps a LiME dump.
func OpenLiME(path string) (*Space, error) {
	return Open(path, Options{Format: FormatLiME})
}

// FromBytes decodes an in-memory image the same way Open decodes a file.
func FromBytes(data []byte, opts Options) (*Space, error) {
	return decode(data, opts)
}

func decode(data []byte, opts Options) (*Space, error) {
	f := opts.Format
	if f == FormatAuto {
		f = FormatRaw
		if format.IsLiME(data) {
			f = FormatLiME
		}
	}
	switch f {
	case FormatRaw:
		return decodeRaw(data, opts.Base)
	case FormatLiME:
		return decodeLiME(data)
	default:
		return nil, fmt.Errorf("addrspace: unsupported image format %s", f)
	}
}

func decodeRaw(data []byte, base uint64) (*Space, error) {
	s := New()
	if err := s.Map(base, data); err != nil {
		return nil, fmt.Errorf("%w: raw: %w", types.ErrBadImage, err)
	}
	return s, nil
}

func decodeLiME(data []byte) (*Space, error) {
	ranges, err := format.LiMERanges(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrBadImage, err)
	}
	s := New()
	for _, r := range ranges {
		seg, _ := buf.Slice(data, r.DataOffset, r.Size)
		if err := s.Map(r.Start, seg); err != nil {
			return nil, fmt.Errorf("%w: lime: %w", types.ErrBadImage, err)
		}
	}
	return s, nil
}
