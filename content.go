// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import (
	"bytes"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"
)

// DirFileName returns the directory file name for a VPK set, "{name}_dir.vpk".
func DirFileName(vpkName string) string {
	return vpkName + "_dir.vpk"
}

// ArchiveFileName returns the numbered archive file name "{name}_NNN.vpk".
func ArchiveFileName(vpkName string, index uint16) string {
	return fmt.Sprintf("%s_%03d.vpk", vpkName, index)
}

// CamFileName returns the CAM sidecar name for a numbered archive.
func CamFileName(vpkName string, index uint16) string {
	return ArchiveFileName(vpkName, index) + ".cam"
}

// openArchive opens the data source for a V1/V2 entry and seeks to its data.
// The EOF sentinel addresses the directory file itself, past the header and tree.
func openArchive(archiveDir, vpkName string, entry *Entry, dirDataStart int64) (*os.File, error) {
	var path string
	var offset int64
	if entry.ArchiveIndex == ArchiveIndexEOF {
		path = filepath.Join(archiveDir, DirFileName(vpkName))
		offset = dirDataStart + int64(entry.EntryOffset)
	} else {
		path = filepath.Join(archiveDir, ArchiveFileName(vpkName, entry.ArchiveIndex))
		offset = int64(entry.EntryOffset)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArchiveNotFound, path, err)
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}

	return f, nil
}

// checkCRC compares a finished digest against the stored entry checksum.
func checkCRC(digest hash.Hash32, want uint32, filePath string) error {
	if got := digest.Sum32(); got != want {
		return fmt.Errorf("%w: CRC mismatch for %s: got %#08x want %#08x", ErrBadData, filePath, got, want)
	}

	return nil
}

// checkedLen narrows a 64-bit length to the platform int width.
func checkedLen(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: length %d", ErrDataTooLarge, v)
	}

	return int(v), nil
}

// createOutputFile creates outputPath and any missing parent directories.
func createOutputFile(outputPath string) (*os.File, error) {
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create parent directories: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	return f, nil
}

// copyChunked streams exactly length bytes from src to dst in bounded chunks
// so peak memory stays independent of entry size.
func copyChunked(dst io.Writer, src io.Reader, length int64) error {
	buf := make([]byte, min(int64(extractChunkSize), length))
	for remaining := length; remaining > 0; {
		chunk := int64(len(buf))
		if chunk > remaining {
			chunk = remaining
		}

		if _, err := io.ReadFull(src, buf[:chunk]); err != nil {
			return fmt.Errorf("read archive data: %w", err)
		}

		if _, err := dst.Write(buf[:chunk]); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		remaining -= chunk
	}

	return nil
}

// readFileV1V2 assembles one V1/V2 entry fully in memory: preload bytes,
// then the archive run, with CRC verification over the whole sequence.
func readFileV1V2(tree *Tree[*Entry], archiveDir, vpkName, filePath string, dirDataStart int64) ([]byte, error) {
	entry, ok := tree.Files[filePath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}

	buf := make([]byte, 0, int(entry.PreloadLength)+int(entry.EntryLength))
	if entry.PreloadLength > 0 {
		preload, ok := tree.Preload[filePath]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDataNotFound, filePath)
		}

		buf = append(buf, preload...)
	}

	if entry.EntryLength > 0 {
		f, err := openArchive(archiveDir, vpkName, entry, dirDataStart)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		data := make([]byte, entry.EntryLength)
		if _, err := io.ReadFull(f, data); err != nil {
			return nil, fmt.Errorf("read archive data for %s: %w", filePath, err)
		}

		buf = append(buf, data...)
	}

	if crc32.ChecksumIEEE(buf) != entry.CRC {
		return nil, fmt.Errorf("%w: CRC mismatch for %s", ErrBadData, filePath)
	}

	return buf, nil
}

// extractFileV1V2 reconstructs one V1/V2 entry to outputPath using bounded
// chunk copies and verifies the CRC over preload plus archive data.
func extractFileV1V2(tree *Tree[*Entry], archiveDir, vpkName, filePath, outputPath string, dirDataStart int64) error {
	entry, ok := tree.Files[filePath]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}

	out, err := createOutputFile(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	digest := crc32.NewIEEE()

	if entry.PreloadLength > 0 {
		preload, ok := tree.Preload[filePath]
		if !ok {
			return fmt.Errorf("%w: %s", ErrDataNotFound, filePath)
		}

		if _, err := out.Write(preload); err != nil {
			return fmt.Errorf("write preload data: %w", err)
		}

		_, _ = digest.Write(preload)
	}

	if entry.EntryLength > 0 {
		f, err := openArchive(archiveDir, vpkName, entry, dirDataStart)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		if err := copyChunked(io.MultiWriter(out, digest), f, int64(entry.EntryLength)); err != nil {
			return fmt.Errorf("extract %s: %w", filePath, err)
		}
	}

	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync output file: %w", err)
	}

	return checkCRC(digest, entry.CRC, filePath)
}

// extractFileMemMapV1V2 reconstructs one V1/V2 entry to outputPath from
// caller-supplied archive mappings.
func extractFileMemMapV1V2(tree *Tree[*Entry], maps ArchiveMaps, filePath, outputPath string) error {
	entry, ok := tree.Files[filePath]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}

	out, err := createOutputFile(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	digest := crc32.NewIEEE()

	if entry.PreloadLength > 0 {
		preload, ok := tree.Preload[filePath]
		if !ok {
			return fmt.Errorf("%w: %s", ErrDataNotFound, filePath)
		}

		if _, err := out.Write(preload); err != nil {
			return fmt.Errorf("write preload data: %w", err)
		}

		_, _ = digest.Write(preload)
	}

	if entry.EntryLength > 0 {
		m, ok := maps[entry.ArchiveIndex]
		if !ok {
			return fmt.Errorf("%w: archive index %d", ErrMemoryMapNotFound, entry.ArchiveIndex)
		}

		start := int64(entry.EntryOffset)
		end := start + int64(entry.EntryLength)
		if end > int64(len(m)) {
			return fmt.Errorf("%w: entry %s exceeds mapped archive bounds", ErrBadData, filePath)
		}

		if err := copyChunked(io.MultiWriter(out, digest), bytes.NewReader(m[start:end]), end-start); err != nil {
			return fmt.Errorf("extract %s: %w", filePath, err)
		}
	}

	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync output file: %w", err)
	}

	return checkCRC(digest, entry.CRC, filePath)
}

// serializeTree encodes a tree into memory so writers can size the header first.
func serializeTree[E DirEntry](t *Tree[E]) ([]byte, error) {
	var buf bytes.Buffer
	w := newWriter(&buf)
	if err := t.writeTo(w); err != nil {
		return nil, err
	}

	if err := w.flush(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
