package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/kpcrkit/internal/format"
	"github.com/joshuapare/kpcrkit/pkg/kpcr"
)

// resetFlags restores every package-level flag to its default.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	imageFormat = "auto"
	imageBase = 0
	layout = kpcr.DefaultLayout
	scanWorkers = 1
	scanFirst = false
}

// plantKPCR writes a valid x86 KPCR signature for address va into data,
// which is mapped at base.
func plantKPCR(data []byte, base, va uint64) {
	l := kpcr.DefaultLayout
	binary.LittleEndian.PutUint32(data[va-base+l.SelfPtrOffset:], uint32(va))
	binary.LittleEndian.PutUint32(data[va-base+l.PrcbPtrOffset:], uint32(va+l.PrcbEmbedOffset))
}

// writeRawImage writes a 16 KiB raw image meant to be mapped at 0x80000000
// with KPCRs at the given addresses.
func writeRawImage(t *testing.T, kpcrs ...uint64) string {
	t.Helper()
	data := make([]byte, 0x4000)
	for _, va := range kpcrs {
		plantKPCR(data, 0x80000000, va)
	}
	path := filepath.Join(t.TempDir(), "memory.raw")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

// writeLiMEImage writes a LiME image with one user-space range and one
// kernel-space range holding a KPCR at 0x80001000.
func writeLiMEImage(t *testing.T) string {
	t.Helper()
	user := make([]byte, 0x1000)
	plantKPCR(user, 0x1000, 0x1000)
	kernel := make([]byte, 0x4000)
	plantKPCR(kernel, 0x80000000, 0x80001000)

	var b []byte
	b = format.AppendLiMEHeader(b, 0x1000, uint64(len(user)))
	b = append(b, user...)
	b = format.AppendLiMEHeader(b, 0x80000000, uint64(len(kernel)))
	b = append(b, kernel...)

	path := filepath.Join(t.TempDir(), "memory.lime")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return buf.String(), fnErr
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
