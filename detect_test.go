package vpk

import (
	"bytes"
	"errors"
	"hash/crc32"
	"testing"
)

// TestDetectFormat verifies variant identification from header bytes.
func TestDetectFormat(t *testing.T) {
	v2 := buildV2Dir(nil, nil, nil, make([]byte, otherMD5SectionSize), nil)

	cases := []struct {
		name string
		raw  []byte
		want PakFormat
	}{
		{"v1", buildV1Dir(nil), FormatVPKVersion1},
		{"v2", v2, FormatVPKVersion2},
		{"respawn", buildRespawnDir(nil), FormatVPKRespawn},
		{"bad signature", []byte{1, 2, 3, 4, 5, 6, 7, 8}, FormatUnknown},
		{"bad version", appendU32(appendU32(nil, Signature), 9), FormatUnknown},
		{"short", []byte{0x34}, FormatUnknown},
		{"empty", nil, FormatUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectFormat(bytes.NewReader(tc.raw)); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

// TestProbe_RestoresCursor verifies probing leaves the stream untouched.
func TestProbe_RestoresCursor(t *testing.T) {
	raw := buildV1Dir(nil)
	rs := bytes.NewReader(raw)

	if !ProbeV1(rs) {
		t.Fatal("probe missed a V1 header")
	}
	if ProbeV2(rs) || ProbeRespawn(rs) {
		t.Error("wrong variant probed true")
	}

	var head [12]byte
	n, err := rs.Read(head[:])
	if err != nil || n != 12 {
		t.Fatalf("read after probes: n=%d err=%v", n, err)
	}
	if !bytes.Equal(head[:], raw) {
		t.Error("cursor moved by probing")
	}
}

// TestOpenPak verifies detection plus parsing in one call.
func TestOpenPak(t *testing.T) {
	payload := []byte("open pak")
	entry := buildEntryV1(crc32.ChecksumIEEE(payload), 0, 0, 0, uint32(len(payload)))
	tree := buildTreeSingleFile("txt", "t", "f", entry, nil)

	pak, err := OpenPak(bytes.NewReader(buildV1Dir(tree)))
	if err != nil {
		t.Fatal(err)
	}
	if pak.Format() != FormatVPKVersion1 {
		t.Errorf("format: got %v", pak.Format())
	}
	if len(pak.Paths()) != 1 {
		t.Errorf("paths: got %v", pak.Paths())
	}

	if _, err := OpenPak(bytes.NewReader([]byte("not a vpk at all"))); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("got %v, want ErrUnknownFormat", err)
	}
}

// TestPakFormat_String verifies the enum's display names are distinct.
func TestPakFormat_String(t *testing.T) {
	seen := make(map[string]struct{})
	for _, f := range []PakFormat{FormatUnknown, FormatVPKVersion1, FormatVPKVersion2, FormatVPKRespawn} {
		s := f.String()
		if s == "" {
			t.Fatalf("empty name for %d", f)
		}
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate name %q", s)
		}
		seen[s] = struct{}{}
	}
}
