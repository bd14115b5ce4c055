package vpk

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// appendU16 appends v little-endian.
func appendU16(b []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(b, v)
}

// appendU32 appends v little-endian.
func appendU32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// appendU64 appends v little-endian.
func appendU64(b []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(b, v)
}

// buildEntryV1 encodes one 18 byte V1/V2 entry record.
func buildEntryV1(crc uint32, preloadLen, archiveIndex uint16, offset, length uint32) []byte {
	b := appendU32(nil, crc)
	b = appendU16(b, preloadLen)
	b = appendU16(b, archiveIndex)
	b = appendU32(b, offset)
	b = appendU32(b, length)
	b = appendU16(b, EntryTerminator)
	return b
}

// buildTreeSingleFile encodes a tree holding one file plus optional preload bytes.
func buildTreeSingleFile(extension, dir, fileName string, entry, preload []byte) []byte {
	b := append([]byte(nil), extension...)
	b = append(b, 0)
	b = append(b, dir...)
	b = append(b, 0)
	b = append(b, fileName...)
	b = append(b, 0)
	b = append(b, entry...)
	b = append(b, preload...)
	b = append(b, 0, 0)
	return b
}

// buildV1Dir prefixes tree bytes with a version 1 header.
func buildV1Dir(tree []byte) []byte {
	b := appendU32(nil, Signature)
	b = appendU32(b, VersionV1)
	b = appendU32(b, uint32(len(tree)))
	return append(b, tree...)
}

// buildRespawnDir prefixes tree bytes with a Respawn header.
func buildRespawnDir(tree []byte) []byte {
	b := appendU32(nil, Signature)
	b = appendU32(b, VersionRespawn)
	b = appendU32(b, uint32(len(tree)))
	b = appendU32(b, 0)
	return append(b, tree...)
}

// respawnPart encodes one 30 byte Respawn file part record.
func respawnPart(archiveIndex, loadFlags uint16, textureFlags uint32, offset, length, uncompressed uint64) []byte {
	b := appendU16(nil, archiveIndex)
	b = appendU16(b, loadFlags)
	b = appendU32(b, textureFlags)
	b = appendU64(b, offset)
	b = appendU64(b, length)
	b = appendU64(b, uncompressed)
	return b
}

// buildRespawnEntry encodes one Respawn entry record, optionally without the
// part list terminator.
func buildRespawnEntry(crc uint32, preloadLen uint16, terminated bool, parts ...[]byte) []byte {
	b := appendU32(nil, crc)
	b = appendU16(b, preloadLen)
	for _, part := range parts {
		b = append(b, part...)
	}
	if terminated {
		b = appendU16(b, EntryTerminator)
	}
	return b
}

// buildCamRecord encodes one 33 byte CAM record.
func buildCamRecord(magic, originalSize, compressedSize, sampleRate uint32, channels uint8, sampleCount, headerSize uint32, contentOffset uint64) []byte {
	b := appendU32(nil, magic)
	b = appendU32(b, originalSize)
	b = appendU32(b, compressedSize)
	b = append(b, byte(sampleRate), byte(sampleRate>>8), byte(sampleRate>>16))
	b = append(b, channels)
	b = appendU32(b, sampleCount)
	b = appendU32(b, headerSize)
	b = appendU64(b, contentOffset)
	return b
}

// writeFixtureFile writes content into dir under name and returns the full path.
func writeFixtureFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// xorCompress is a stand-in codec for compressed part tests: stored form is
// the payload XOR 0x5A padded with one trailing byte so the stored and
// uncompressed sizes differ.
func xorCompress(src []byte) []byte {
	out := make([]byte, 0, len(src)+1)
	for _, b := range src {
		out = append(out, b^0x5A)
	}
	return append(out, 0)
}

func xorDecompress(src []byte, uncompressedLen int) ([]byte, error) {
	out := make([]byte, uncompressedLen)
	for i := 0; i < uncompressedLen; i++ {
		out[i] = src[i] ^ 0x5A
	}
	return out, nil
}
