package vpk

import (
	"bytes"
	"context"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/woozymasta/pathrules"
)

// createV1MultiSet writes a V1 set with files under scripts/ and textures/
// backed by one archive; returns the set dir and parsed pak.
func createV1MultiSet(t *testing.T) (string, *VPKVersion1) {
	t.Helper()
	dir := t.TempDir()

	files := []struct {
		ext, dir, name string
		payload        []byte
	}{
		{"txt", "scripts", "init", []byte("init body")},
		{"txt", "scripts", "main", []byte("main body")},
		{"vtf", "textures", "wall", []byte("pixels")},
	}

	var archive []byte
	tree := NewTree[*Entry]()
	for _, f := range files {
		entry := NewEntry()
		entry.CRC = crc32.ChecksumIEEE(f.payload)
		entry.EntryOffset = uint32(len(archive))
		entry.EntryLength = uint32(len(f.payload))
		tree.Files[f.dir+"/"+f.name+"."+f.ext] = entry
		archive = append(archive, f.payload...)
	}

	treeBytes, err := serializeTree(tree)
	if err != nil {
		t.Fatal(err)
	}

	writeFixtureFile(t, dir, DirFileName("pak"), buildV1Dir(treeBytes))
	writeFixtureFile(t, dir, ArchiveFileName("pak", 0), archive)

	dirRaw, err := os.ReadFile(filepath.Join(dir, DirFileName("pak")))
	if err != nil {
		t.Fatal(err)
	}

	v, err := ReadVPKVersion1(bytes.NewReader(dirRaw))
	if err != nil {
		t.Fatal(err)
	}
	return dir, v
}

// TestExtractAll verifies bulk extraction writes every file.
func TestExtractAll(t *testing.T) {
	dir, v := createV1MultiSet(t)
	out := t.TempDir()

	var mu sync.Mutex
	done := make(map[string]string)

	res, err := ExtractAll(v, dir, "pak", out, ExtractOptions{
		MaxWorkers: 2,
		OnFileDone: func(filePath, outputPath string) {
			mu.Lock()
			done[filePath] = outputPath
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.Extracted != 3 || res.Skipped != 0 {
		t.Fatalf("result: %+v", res)
	}
	if len(done) != 3 {
		t.Errorf("callbacks: got %d", len(done))
	}

	data, err := os.ReadFile(filepath.Join(out, "scripts", "main.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "main body" {
		t.Errorf("data: got %q", data)
	}
}

// TestExtractAll_Filter verifies include rules with an exclude default.
func TestExtractAll_Filter(t *testing.T) {
	dir, v := createV1MultiSet(t)
	out := t.TempDir()

	res, err := ExtractAll(v, dir, "pak", out, ExtractOptions{
		Filter: []pathrules.Rule{
			{Action: pathrules.ActionInclude, Pattern: "scripts/**"},
		},
		FilterMatcherOptions: pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.Extracted != 2 || res.Skipped != 1 {
		t.Fatalf("result: %+v", res)
	}
	if _, err := os.Stat(filepath.Join(out, "textures", "wall.vtf")); !os.IsNotExist(err) {
		t.Error("excluded file was written")
	}
}

// TestExtractAll_InvalidPattern verifies broken filter rules are reported.
func TestExtractAll_InvalidPattern(t *testing.T) {
	dir, v := createV1MultiSet(t)

	_, err := ExtractAll(v, dir, "pak", t.TempDir(), ExtractOptions{
		Filter: []pathrules.Rule{
			{Action: pathrules.ActionUnknown, Pattern: "scripts/**"},
		},
	})
	if !errors.Is(err, ErrInvalidFilterPattern) {
		t.Fatalf("got %v, want ErrInvalidFilterPattern", err)
	}
}

// TestExtractAll_Cancelled verifies a cancelled context stops the run.
func TestExtractAll_Cancelled(t *testing.T) {
	dir, v := createV1MultiSet(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExtractAll(v, dir, "pak", t.TempDir(), ExtractOptions{Context: ctx})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

// TestExtractAll_MemMap verifies extraction through mapped archives.
func TestExtractAll_MemMap(t *testing.T) {
	dir, v := createV1MultiSet(t)
	out := t.TempDir()

	maps, err := OpenArchiveMaps(dir, "pak", ReferencedArchives(v))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = CloseArchiveMaps(maps) }()

	res, err := ExtractAll(v, dir, "pak", out, ExtractOptions{Maps: maps})
	if err != nil {
		t.Fatal(err)
	}
	if res.Extracted != 3 {
		t.Fatalf("result: %+v", res)
	}

	data, err := os.ReadFile(filepath.Join(out, "textures", "wall.vtf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pixels" {
		t.Errorf("data: got %q", data)
	}
}

// TestNormalizeExtractPath verifies traversal and absolute inputs are rejected.
func TestNormalizeExtractPath(t *testing.T) {
	good := map[string]string{
		"scripts/init.txt":     "scripts/init.txt",
		"a\\b\\c.txt":          "a/b/c.txt",
		"./scripts//main.txt":  "scripts/main.txt",
		"scripts/./deep/x.cfg": "scripts/deep/x.cfg",
	}
	for in, want := range good {
		got, err := normalizeExtractPath(in)
		if err != nil || got != want {
			t.Errorf("normalizeExtractPath(%q) = %q, %v", in, got, err)
		}
	}

	bad := []string{"", "../evil.txt", "a/../../evil", "/abs/path", `\abs\path`, "C:/windows/evil", "nul\x00byte"}
	for _, in := range bad {
		if _, err := normalizeExtractPath(in); !errors.Is(err, ErrInvalidExtractPath) {
			t.Errorf("normalizeExtractPath(%q): got %v, want ErrInvalidExtractPath", in, err)
		}
	}
}
