package vpk

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// TestSplitEntryPath verifies logical path decomposition.
func TestSplitEntryPath(t *testing.T) {
	cases := []struct {
		path, dir, name, ext string
	}{
		{"scripts/vehicles/car.txt", "scripts/vehicles", "car", "txt"},
		{"test/file.txt", "test", "file", "txt"},
	}
	for _, tc := range cases {
		dir, name, ext := splitEntryPath(tc.path)
		if dir != tc.dir || name != tc.name || ext != tc.ext {
			t.Errorf("splitEntryPath(%q) = %q %q %q", tc.path, dir, name, ext)
		}
	}
}

// TestTree_RoundTrip verifies serialized trees parse back structurally equal.
func TestTree_RoundTrip(t *testing.T) {
	tree := NewTree[*Entry]()
	for i := 0; i < 5000; i++ {
		path := fmt.Sprintf("dir%d/file%d.txt", i%25, i)
		entry := NewEntry()
		entry.CRC = uint32(i)
		entry.ArchiveIndex = uint16(i % 3)
		entry.EntryOffset = uint32(i * 32)
		entry.EntryLength = 32
		tree.Files[path] = entry
	}

	withPreload := NewEntry()
	withPreload.PreloadLength = 4
	tree.Files["cfg/boot.cfg"] = withPreload
	tree.Preload["cfg/boot.cfg"] = []byte{1, 2, 3, 4}

	raw, err := serializeTree(tree)
	if err != nil {
		t.Fatal(err)
	}

	r := newReader(bytes.NewReader(raw), 0)
	parsed, err := parseTree(r, int64(len(raw)), NewEntry)
	if err != nil {
		t.Fatal(err)
	}

	if len(parsed.Files) != len(tree.Files) {
		t.Fatalf("file count: got %d, want %d", len(parsed.Files), len(tree.Files))
	}
	for path, want := range tree.Files {
		got, ok := parsed.Files[path]
		if !ok {
			t.Fatalf("missing path %s", path)
		}
		if *got != *want {
			t.Errorf("entry %s: got %+v, want %+v", path, got, want)
		}
	}
	if !bytes.Equal(parsed.Preload["cfg/boot.cfg"], []byte{1, 2, 3, 4}) {
		t.Errorf("preload: got %v", parsed.Preload["cfg/boot.cfg"])
	}
}

// TestTree_RoundTripEmpty verifies an empty tree serializes to zero bytes and
// parses back empty.
func TestTree_RoundTripEmpty(t *testing.T) {
	raw, err := serializeTree(NewTree[*Entry]())
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 0 {
		t.Fatalf("empty tree serialized to %d bytes", len(raw))
	}

	parsed, err := parseTree(newReader(bytes.NewReader(nil), 0), 0, NewEntry)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.Files) != 0 {
		t.Errorf("parsed %d files from empty tree", len(parsed.Files))
	}
}

// TestTree_PathsSorted verifies deterministic path listing.
func TestTree_PathsSorted(t *testing.T) {
	tree := NewTree[*Entry]()
	for _, path := range []string{"b/b.txt", "a/a.txt", "c/c.txt"} {
		tree.Files[path] = NewEntry()
	}

	paths := tree.paths()
	want := []string{"a/a.txt", "b/b.txt", "c/c.txt"}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths: got %v, want %v", paths, want)
		}
	}
}

// TestEntry_TerminatorValidation verifies the 0xFFFF terminator is enforced
// on both read and write.
func TestEntry_TerminatorValidation(t *testing.T) {
	raw := buildEntryV1(1, 0, 0, 0, 8)
	raw[len(raw)-1] = 0x7F // corrupt terminator

	entry := NewEntry()
	err := entry.readFrom(newReader(bytes.NewReader(raw), 0))
	if !errors.Is(err, ErrInvalidEntryTerminator) {
		t.Fatalf("read: got %v, want ErrInvalidEntryTerminator", err)
	}

	bad := NewEntry()
	bad.Terminator = 0
	var buf bytes.Buffer
	if err := bad.writeTo(newWriter(&buf)); !errors.Is(err, ErrInvalidEntryTerminator) {
		t.Fatalf("write: got %v, want ErrInvalidEntryTerminator", err)
	}
}
