package format

import (
	"errors"
	"testing"

	"github.com/joshuapare/kpcrkit/internal/buf"
)

func limeImage(ranges ...[2]uint64) []byte {
	var b []byte
	for _, r := range ranges {
		b = AppendLiMEHeader(b, r[0], r[1])
		b = append(b, make([]byte, r[1])...)
	}
	return b
}

func TestLiMERanges(t *testing.T) {
	b := limeImage([2]uint64{0x1000, 0x2000}, [2]uint64{0x100000, 0x1000})
	if !IsLiME(b) {
		t.Fatalf("IsLiME = false for a LiME image")
	}
	got, err := LiMERanges(b)
	if err != nil {
		t.Fatalf("LiMERanges: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(got))
	}
	if got[0].Start != 0x1000 || got[0].Size != 0x2000 || got[0].DataOffset != LiMEHeaderSize {
		t.Errorf("range 0: %+v", got[0])
	}
	wantData := uint64(LiMEHeaderSize+0x2000) + LiMEHeaderSize
	if got[1].Start != 0x100000 || got[1].Size != 0x1000 || got[1].DataOffset != wantData {
		t.Errorf("range 1: %+v", got[1])
	}
}

func TestParseLiMEHeaderErrors(t *testing.T) {
	good := limeImage([2]uint64{0x1000, 0x1000})

	if _, err := ParseLiMEHeader(good[:LiMEHeaderSize-1], 0); !errors.Is(err, ErrTruncated) {
		t.Fatalf("short header: got %v", err)
	}

	badMagic := append([]byte(nil), good...)
	badMagic[0] = 'X'
	if _, err := ParseLiMEHeader(badMagic, 0); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("bad magic: got %v", err)
	}
	if IsLiME(badMagic) {
		t.Fatalf("IsLiME should reject bad magic")
	}

	badVersion := append([]byte(nil), good...)
	buf.PutU32LE(badVersion[LiMEVersionOffset:], 2)
	if _, err := ParseLiMEHeader(badVersion, 0); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("bad version: got %v", err)
	}

	inverted := append([]byte(nil), good...)
	buf.PutU64LE(inverted[LiMEStartOffset:], 0x5000)
	if _, err := ParseLiMEHeader(inverted, 0); !errors.Is(err, ErrBadRange) {
		t.Fatalf("inverted range: got %v", err)
	}
}

func TestNextLiMERangeTruncatedData(t *testing.T) {
	b := limeImage([2]uint64{0x1000, 0x1000})
	if _, _, err := NextLiMERange(b[:len(b)-1], 0); !errors.Is(err, ErrTruncated) {
		t.Fatalf("truncated data: got %v", err)
	}
	if _, err := LiMERanges(b[:len(b)-1]); err == nil {
		t.Fatalf("LiMERanges should fail on truncated data")
	}
}

func TestIsLiMEShort(t *testing.T) {
	if IsLiME([]byte{'E', 'M'}) {
		t.Fatalf("IsLiME should be false for a short buffer")
	}
}
