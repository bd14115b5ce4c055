package vpk

import (
	"bytes"
	"errors"
	"hash/crc32"
	"testing"
)

// buildV2Dir assembles a V2 directory file from its sections.
func buildV2Dir(tree, fileData, archiveMD5, otherMD5, signature []byte) []byte {
	b := appendU32(nil, Signature)
	b = appendU32(b, VersionV2)
	b = appendU32(b, uint32(len(tree)))
	b = appendU32(b, uint32(len(fileData)))
	b = appendU32(b, uint32(len(archiveMD5)))
	b = appendU32(b, uint32(len(otherMD5)))
	b = appendU32(b, uint32(len(signature)))
	b = append(b, tree...)
	b = append(b, fileData...)
	b = append(b, archiveMD5...)
	b = append(b, otherMD5...)
	b = append(b, signature...)
	return b
}

// buildArchiveMD5Record encodes one 28 byte archive MD5 record.
func buildArchiveMD5Record(archiveIndex, startingOffset, count uint32, md5 byte) []byte {
	b := appendU32(nil, archiveIndex)
	b = appendU32(b, startingOffset)
	b = appendU32(b, count)
	return append(b, bytes.Repeat([]byte{md5}, 16)...)
}

// TestReadVPKVersion2_Sections verifies the trailer sections parse into place.
func TestReadVPKVersion2_Sections(t *testing.T) {
	payload := []byte("v2 payload")
	entry := buildEntryV1(crc32.ChecksumIEEE(payload), 0, ArchiveIndexEOF, 0, uint32(len(payload)))
	tree := buildTreeSingleFile("txt", "test", "file", entry, nil)

	archiveMD5 := append(buildArchiveMD5Record(0, 0, 128, 0xAA), buildArchiveMD5Record(1, 128, 64, 0xBB)...)
	otherMD5 := bytes.Repeat([]byte{0xCC}, otherMD5SectionSize)

	raw := buildV2Dir(tree, payload, archiveMD5, otherMD5, nil)
	v, err := ReadVPKVersion2(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}

	if v.Format() != FormatVPKVersion2 {
		t.Errorf("format: got %v", v.Format())
	}
	if len(v.Paths()) != 1 {
		t.Fatalf("paths: got %v", v.Paths())
	}
	if !bytes.Equal(v.FileData, payload) {
		t.Errorf("file data: got %q", v.FileData)
	}
	if len(v.ArchiveMD5Entries) != 2 {
		t.Fatalf("archive MD5 entries: got %d", len(v.ArchiveMD5Entries))
	}
	if rec := v.ArchiveMD5Entries[1]; rec.ArchiveIndex != 1 || rec.StartingOffset != 128 || rec.Count != 64 || rec.MD5[0] != 0xBB {
		t.Errorf("record: %+v", rec)
	}
	if v.OtherMD5.TreeChecksum[0] != 0xCC || v.OtherMD5.Unknown[15] != 0xCC {
		t.Errorf("other MD5: %+v", v.OtherMD5)
	}
	if v.SignatureBlock != nil {
		t.Error("unexpected signature block")
	}
}

// TestReadVPKVersion2_SignatureBlock verifies the optional 296 byte block.
func TestReadVPKVersion2_SignatureBlock(t *testing.T) {
	otherMD5 := make([]byte, otherMD5SectionSize)

	sig := appendU32(nil, 160)
	sig = append(sig, bytes.Repeat([]byte{0x11}, 160)...)
	sig = appendU32(sig, 128)
	sig = append(sig, bytes.Repeat([]byte{0x22}, 128)...)

	raw := buildV2Dir(nil, nil, nil, otherMD5, sig)
	v, err := ReadVPKVersion2(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}

	if v.SignatureBlock == nil {
		t.Fatal("missing signature block")
	}
	if v.SignatureBlock.PublicKeySize != 160 || v.SignatureBlock.PublicKey[0] != 0x11 {
		t.Errorf("public key: %+v", v.SignatureBlock.PublicKeySize)
	}
	if v.SignatureBlock.SignatureSize != 128 || v.SignatureBlock.Signature[127] != 0x22 {
		t.Errorf("signature: %+v", v.SignatureBlock.SignatureSize)
	}
}

// TestReadVPKVersion2_SectionSizeInvariants verifies malformed headers are rejected.
func TestReadVPKVersion2_SectionSizeInvariants(t *testing.T) {
	otherMD5 := make([]byte, otherMD5SectionSize)

	// Archive MD5 section not a multiple of the record size.
	raw := buildV2Dir(nil, nil, make([]byte, archiveMD5EntrySize-1), otherMD5, nil)
	if _, err := ReadVPKVersion2(bytes.NewReader(raw)); !errors.Is(err, ErrBadData) {
		t.Errorf("archive MD5 size: got %v, want ErrBadData", err)
	}

	// Other MD5 section must be exactly 48 bytes.
	raw = buildV2Dir(nil, nil, nil, make([]byte, otherMD5SectionSize+1), nil)
	if _, err := ReadVPKVersion2(bytes.NewReader(raw)); !errors.Is(err, ErrBadData) {
		t.Errorf("other MD5 size: got %v, want ErrBadData", err)
	}

	// Signature section is either absent or exactly 296 bytes.
	raw = buildV2Dir(nil, nil, nil, otherMD5, make([]byte, 10))
	if _, err := ReadVPKVersion2(bytes.NewReader(raw)); !errors.Is(err, ErrBadData) {
		t.Errorf("signature size: got %v, want ErrBadData", err)
	}
}

// TestVPKVersion2_ReadFile verifies reconstruction of directory-resident data.
func TestVPKVersion2_ReadFile(t *testing.T) {
	payload := []byte("v2 payload")
	entry := buildEntryV1(crc32.ChecksumIEEE(payload), 0, ArchiveIndexEOF, 0, uint32(len(payload)))
	tree := buildTreeSingleFile("txt", "test", "file", entry, nil)
	otherMD5 := make([]byte, otherMD5SectionSize)

	dir := t.TempDir()
	writeFixtureFile(t, dir, DirFileName("pak"), buildV2Dir(tree, payload, nil, otherMD5, nil))

	v, err := ReadVPKVersion2(bytes.NewReader(buildV2Dir(tree, payload, nil, otherMD5, nil)))
	if err != nil {
		t.Fatal(err)
	}

	data, err := v.ReadFile(dir, "pak", "test/file.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("data: got %q", data)
	}
}

// TestVPKVersion2_WriteDirUnsupported verifies the variant is read-only.
func TestVPKVersion2_WriteDirUnsupported(t *testing.T) {
	v := &VPKVersion2{}
	if err := v.WriteDir("out_dir.vpk"); !errors.Is(err, ErrWriteUnsupported) {
		t.Fatalf("got %v, want ErrWriteUnsupported", err)
	}
}
