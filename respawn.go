// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Load flags carried by Respawn file parts.
const (
	LoadNone            uint32 = 0
	LoadVisible         uint32 = 1 << 0
	LoadCache           uint32 = 1 << 8
	LoadAcacheUnknown   uint32 = 1 << 10
	LoadTextureUnknown0 uint32 = 1 << 18
	LoadTextureUnknown1 uint32 = 1 << 19
	LoadTextureUnknown2 uint32 = 1 << 20
)

// Texture flags carried by Respawn file parts.
const (
	TextureNone           uint32 = 0
	TextureDefault        uint32 = 1 << 3
	TextureEnvironmentMap uint32 = 1 << 10
)

// HeaderRespawn is the header of a Respawn VPK directory file.
type HeaderRespawn struct {
	// Signature must equal Signature.
	Signature uint32 `json:"signature" yaml:"signature"`
	// Version must equal VersionRespawn.
	Version uint32 `json:"version" yaml:"version"`
	// TreeSize is the size of the directory tree in bytes.
	TreeSize uint32 `json:"tree_size" yaml:"tree_size"`
	// Unknown is a reserved field and must be zero.
	Unknown uint32 `json:"unknown" yaml:"unknown"`
}

// validate checks the magic/version pair and the reserved field.
func (h *HeaderRespawn) validate() error {
	if h.Signature != Signature {
		return fmt.Errorf("%w: got %#08x want %#08x", ErrInvalidSignature, h.Signature, Signature)
	}
	if h.Version != VersionRespawn {
		return fmt.Errorf("%w: got %d want %d", ErrBadVersion, h.Version, VersionRespawn)
	}
	if h.Unknown != 0 {
		return fmt.Errorf("%w: header unknown field should be 0, got %d", ErrBadData, h.Unknown)
	}

	return nil
}

// readFrom decodes and validates the header.
func (h *HeaderRespawn) readFrom(r *reader) (err error) {
	if h.Signature, err = r.u32(); err != nil {
		return fmt.Errorf("read signature: %w", err)
	}
	if h.Version, err = r.u32(); err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if h.TreeSize, err = r.u32(); err != nil {
		return fmt.Errorf("read tree size: %w", err)
	}
	if h.Unknown, err = r.u32(); err != nil {
		return fmt.Errorf("read unknown field: %w", err)
	}

	return h.validate()
}

// writeTo re-validates the header invariants and encodes the header.
func (h *HeaderRespawn) writeTo(w *writer) error {
	if err := h.validate(); err != nil {
		return err
	}

	if err := w.u32(h.Signature); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}
	if err := w.u32(h.Version); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if err := w.u32(h.TreeSize); err != nil {
		return fmt.Errorf("write tree size: %w", err)
	}
	if err := w.u32(h.Unknown); err != nil {
		return fmt.Errorf("write unknown field: %w", err)
	}

	return nil
}

// ProbeRespawn reports whether the stream at its current position starts
// with a Respawn magic/version pair. The cursor is restored regardless of outcome.
func ProbeRespawn(rs io.ReadSeeker) bool {
	return probeMagic(rs, VersionRespawn)
}

// FilePart is one contiguous, optionally compressed chunk of a Respawn file.
type FilePart struct {
	// ArchiveIndex is the archive this part is stored in.
	ArchiveIndex uint16 `json:"archive_index" yaml:"archive_index"`
	// LoadFlags are the engine load flags for this part.
	LoadFlags uint16 `json:"load_flags" yaml:"load_flags"`
	// TextureFlags are the engine texture flags for this part.
	TextureFlags uint32 `json:"texture_flags" yaml:"texture_flags"`
	// EntryOffset is the part's offset within the archive.
	EntryOffset uint64 `json:"entry_offset" yaml:"entry_offset"`
	// EntryLength is the part's on-disk (possibly compressed) size.
	EntryLength uint64 `json:"entry_length" yaml:"entry_length"`
	// EntryLengthUncompressed is the part's size after decompression; equal
	// to EntryLength when the part is stored uncompressed.
	EntryLengthUncompressed uint64 `json:"entry_length_uncompressed" yaml:"entry_length_uncompressed"`
}

// compressed reports whether the part is stored compressed.
func (p *FilePart) compressed() bool {
	return p.EntryLength != p.EntryLengthUncompressed
}

// RespawnEntry is the directory entry record used by Respawn VPKs.
type RespawnEntry struct {
	// CRC is the CRC-32/ISO-HDLC checksum of the file's packaged data.
	CRC uint32 `json:"crc" yaml:"crc"`
	// PreloadLength is the number of preload bytes stored in the directory file.
	PreloadLength uint16 `json:"preload_length" yaml:"preload_length"`
	// FileParts is the ordered list of data fragments for the file.
	FileParts []FilePart `json:"file_parts" yaml:"file_parts"`
}

// NewRespawnEntry returns an empty Respawn entry.
func NewRespawnEntry() *RespawnEntry {
	return &RespawnEntry{}
}

// readFrom decodes one variable-length entry record. The part list ends on
// the 0xFFFF archive index sentinel; some archives omit the sentinel on the
// last entry of the tree region, so exhausting the tree bound or hitting end
// of stream also ends the list.
func (e *RespawnEntry) readFrom(r *reader) (err error) {
	if e.CRC, err = r.u32(); err != nil {
		return fmt.Errorf("read CRC: %w", err)
	}
	if e.PreloadLength, err = r.u16(); err != nil {
		return fmt.Errorf("read preload length: %w", err)
	}

	for {
		if r.exhausted() {
			break
		}

		archiveIndex, err := r.u16()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return fmt.Errorf("read archive index: %w", err)
		}

		if archiveIndex == EntryTerminator {
			break
		}

		part := FilePart{ArchiveIndex: archiveIndex}
		if part.LoadFlags, err = r.u16(); err != nil {
			return fmt.Errorf("read load flags: %w", err)
		}
		if part.TextureFlags, err = r.u32(); err != nil {
			return fmt.Errorf("read texture flags: %w", err)
		}
		if part.EntryOffset, err = r.u64(); err != nil {
			return fmt.Errorf("read entry offset: %w", err)
		}
		if part.EntryLength, err = r.u64(); err != nil {
			return fmt.Errorf("read entry length: %w", err)
		}
		if part.EntryLengthUncompressed, err = r.u64(); err != nil {
			return fmt.Errorf("read uncompressed entry length: %w", err)
		}

		e.FileParts = append(e.FileParts, part)
	}

	return nil
}

// writeTo encodes the entry. The sentinel terminator is always emitted even
// though the reader tolerates its absence at end of stream.
func (e *RespawnEntry) writeTo(w *writer) error {
	if err := w.u32(e.CRC); err != nil {
		return fmt.Errorf("write CRC: %w", err)
	}
	if err := w.u16(e.PreloadLength); err != nil {
		return fmt.Errorf("write preload length: %w", err)
	}

	for i := range e.FileParts {
		part := &e.FileParts[i]
		if err := w.u16(part.ArchiveIndex); err != nil {
			return fmt.Errorf("write archive index: %w", err)
		}
		if err := w.u16(part.LoadFlags); err != nil {
			return fmt.Errorf("write load flags: %w", err)
		}
		if err := w.u32(part.TextureFlags); err != nil {
			return fmt.Errorf("write texture flags: %w", err)
		}
		if err := w.u64(part.EntryOffset); err != nil {
			return fmt.Errorf("write entry offset: %w", err)
		}
		if err := w.u64(part.EntryLength); err != nil {
			return fmt.Errorf("write entry length: %w", err)
		}
		if err := w.u64(part.EntryLengthUncompressed); err != nil {
			return fmt.Errorf("write uncompressed entry length: %w", err)
		}
	}

	if err := w.u16(EntryTerminator); err != nil {
		return fmt.Errorf("write entry terminator: %w", err)
	}

	return nil
}

// PreloadLen reports the declared preload byte count.
func (e *RespawnEntry) PreloadLen() int {
	return int(e.PreloadLength)
}

// VPKRespawn is a parsed Respawn VPK directory file.
type VPKRespawn struct {
	// Header is the VPK's header.
	Header HeaderRespawn `json:"header" yaml:"header"`
	// Tree is the tree of files in the VPK.
	Tree *Tree[*RespawnEntry] `json:"tree" yaml:"tree"`
	// Cams holds parsed CAM sidecars keyed by archive index. Populate via
	// ReadCam or ReadAllCams; audio entries without a CAM get a synthesized
	// default during reconstruction.
	Cams map[uint16]*Cam `json:"-" yaml:"-"`
	// Decompress inflates compressed fragments. Respawn archives use LZHAM;
	// the codec is supplied by the caller. Reconstruction of compressed
	// fragments fails with ErrNoDecompressor when nil.
	Decompress DecompressFunc `json:"-" yaml:"-"`
	// Compress deflates data for packing workflows. Optional.
	Compress CompressFunc `json:"-" yaml:"-"`
}

// NewVPKRespawn returns an empty Respawn VPK for programmatic construction.
func NewVPKRespawn() *VPKRespawn {
	return &VPKRespawn{
		Header: HeaderRespawn{Signature: Signature, Version: VersionRespawn},
		Tree:   NewTree[*RespawnEntry](),
		Cams:   make(map[uint16]*Cam),
	}
}

// ReadVPKRespawn parses a Respawn directory file from the stream's current position.
func ReadVPKRespawn(src io.Reader) (*VPKRespawn, error) {
	r := newReader(src, 0)

	v := &VPKRespawn{Cams: make(map[uint16]*Cam)}
	if err := v.Header.readFrom(r); err != nil {
		return nil, err
	}

	tree, err := parseTree(r, int64(v.Header.TreeSize), NewRespawnEntry)
	if err != nil {
		return nil, err
	}

	v.Tree = tree
	return v, nil
}

// Format reports FormatVPKRespawn.
func (v *VPKRespawn) Format() PakFormat {
	return FormatVPKRespawn
}

// Paths returns the logical paths of all files in the directory tree.
func (v *VPKRespawn) Paths() []string {
	return v.Tree.paths()
}

// ReadCam parses one CAM sidecar and registers it for the given archive index.
func (v *VPKRespawn) ReadCam(archiveIndex uint16, camPath string, cache *CamCache) error {
	var cam *Cam
	var err error
	if cache != nil {
		cam, err = cache.Load(camPath)
	} else {
		cam, err = LoadCam(camPath)
	}
	if err != nil {
		return fmt.Errorf("read CAM for archive %d: %w", archiveIndex, err)
	}

	v.Cams[archiveIndex] = cam
	return nil
}

// ReadAllCams loads the CAM sidecars of every archive referenced by an audio
// entry. Per-archive failures are collected rather than aborting the scan.
func (v *VPKRespawn) ReadAllCams(archiveDir, vpkName string, cache *CamCache) error {
	indices := make(map[uint16]struct{})
	for path, entry := range v.Tree.Files {
		if !isWavPath(path) || len(entry.FileParts) == 0 {
			continue
		}

		indices[entry.FileParts[0].ArchiveIndex] = struct{}{}
	}

	var errs []error
	for index := range indices {
		if _, ok := v.Cams[index]; ok {
			continue
		}

		camPath := filepath.Join(archiveDir, CamFileName(vpkName, index))
		if err := v.ReadCam(index, camPath, cache); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// camEntryFor resolves the CAM metadata for an audio entry, synthesizing the
// default when no sidecar entry matches the first part's content offset.
func (v *VPKRespawn) camEntryFor(entry *RespawnEntry, archiveIndex uint16) CamEntry {
	if cam, ok := v.Cams[archiveIndex]; ok {
		if camEntry := cam.Find(entry.FileParts[0].EntryOffset); camEntry != nil {
			return *camEntry
		}
	}

	return DefaultCamEntry(entry)
}

// decompressPart inflates one compressed fragment through the caller's hook.
func (v *VPKRespawn) decompressPart(compressed []byte, uncompressedLen uint64, filePath string) ([]byte, error) {
	if v.Decompress == nil {
		return nil, fmt.Errorf("%w: %s has compressed parts", ErrNoDecompressor, filePath)
	}

	n, err := checkedLen(uncompressedLen)
	if err != nil {
		return nil, err
	}

	out, err := v.Decompress(compressed, n)
	if err != nil {
		return nil, fmt.Errorf("decompress part of %s: %w", filePath, err)
	}

	return out, nil
}

// isWavPath reports whether the logical path names an audio asset.
func isWavPath(filePath string) bool {
	return strings.HasSuffix(strings.ToLower(filePath), ".wav")
}

// ReadFile reconstructs the named file fully in memory: preload bytes, a
// synthesized RIFF/WAVE header for audio assets, then every fragment in
// order, decompressing the compressed ones. CRC verification is skipped for
// audio assets because the stored CRC covers the original packaging, not the
// synthesized-header representation produced here.
func (v *VPKRespawn) ReadFile(archiveDir, vpkName, filePath string) ([]byte, error) {
	entry, ok := v.Tree.Files[filePath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}

	var buf []byte
	if entry.PreloadLength > 0 {
		preload, ok := v.Tree.Preload[filePath]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDataNotFound, filePath)
		}

		buf = append(buf, preload...)
	}

	if len(entry.FileParts) == 0 {
		return nil, fmt.Errorf("%w: %s has no file parts", ErrBadData, filePath)
	}

	archiveIndex := entry.FileParts[0].ArchiveIndex
	archiveFile, err := openRespawnArchive(archiveDir, vpkName, archiveIndex)
	if err != nil {
		return nil, err
	}
	defer func() { _ = archiveFile.Close() }()

	isWav := isWavPath(filePath)
	var expectedLen uint64
	if isWav {
		camEntry := v.camEntryFor(entry, archiveIndex)
		expectedLen = uint64(camEntry.OriginalSize)
		buf = append(buf, createWAVHeader(&camEntry)...)
	}

	var totalLen uint64
	for i := range entry.FileParts {
		part := &entry.FileParts[i]
		if part.EntryLengthUncompressed == 0 {
			continue
		}

		if part.ArchiveIndex != archiveIndex {
			archiveIndex = part.ArchiveIndex
			_ = archiveFile.Close()
			if archiveFile, err = openRespawnArchive(archiveDir, vpkName, archiveIndex); err != nil {
				return nil, err
			}
		}

		if _, err := archiveFile.Seek(int64(part.EntryOffset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek to part of %s: %w", filePath, err)
		}

		entryLen := part.EntryLength
		if i == 0 && isWav {
			skip, err := skipStoredWavHeader(archiveFile)
			if err != nil {
				return nil, fmt.Errorf("skip stored WAV header of %s: %w", filePath, err)
			}

			entryLen -= skip
		}

		totalLen += entryLen

		n, err := checkedLen(entryLen)
		if err != nil {
			return nil, err
		}

		data := make([]byte, n)
		if _, err := io.ReadFull(archiveFile, data); err != nil {
			return nil, fmt.Errorf("read part of %s: %w", filePath, err)
		}

		if part.compressed() {
			if data, err = v.decompressPart(data, part.EntryLengthUncompressed, filePath); err != nil {
				return nil, err
			}
		} else if isWav && expectedLen > 0 && totalLen > expectedLen {
			// Archive padding past the real sample data: trim the overrun.
			// A fragment that starts past the declared size contributes
			// nothing at all.
			over := totalLen - expectedLen
			if over >= entryLen {
				continue
			}

			data = data[:entryLen-over]
		}

		buf = append(buf, data...)
	}

	if isWav && expectedLen > 0 && uint64(len(buf)) > expectedLen {
		buf = buf[:expectedLen]
	}

	if !isWav && crc32.ChecksumIEEE(buf) != entry.CRC {
		return nil, fmt.Errorf("%w: CRC mismatch for %s", ErrBadData, filePath)
	}

	return buf, nil
}

// ExtractFile reconstructs the named file to outputPath. Fragments stream
// through a bounded buffer except compressed ones, which are held in memory
// for the decompression hook.
func (v *VPKRespawn) ExtractFile(archiveDir, vpkName, filePath, outputPath string) error {
	entry, ok := v.Tree.Files[filePath]
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
		preload, ok := v.Tree.Preload[filePath]
		if !ok {
			return fmt.Errorf("%w: %s", ErrDataNotFound, filePath)
		}

		if _, err := out.Write(preload); err != nil {
			return fmt.Errorf("write preload data: %w", err)
		}

		_, _ = digest.Write(preload)
	}

	if len(entry.FileParts) == 0 {
		return fmt.Errorf("%w: %s has no file parts", ErrBadData, filePath)
	}

	archiveIndex := entry.FileParts[0].ArchiveIndex
	archiveFile, err := openRespawnArchive(archiveDir, vpkName, archiveIndex)
	if err != nil {
		return err
	}
	defer func() { _ = archiveFile.Close() }()

	isWav := isWavPath(filePath)
	var expectedLen uint64
	if isWav {
		camEntry := v.camEntryFor(entry, archiveIndex)
		expectedLen = uint64(camEntry.OriginalSize)

		header := createWAVHeader(&camEntry)
		if _, err := out.Write(header); err != nil {
			return fmt.Errorf("write WAV header: %w", err)
		}

		_, _ = digest.Write(header)
	}

	var totalLen uint64
	var written uint64
	for i := range entry.FileParts {
		part := &entry.FileParts[i]
		if part.EntryLengthUncompressed == 0 {
			continue
		}

		if part.ArchiveIndex != archiveIndex {
			archiveIndex = part.ArchiveIndex
			_ = archiveFile.Close()
			if archiveFile, err = openRespawnArchive(archiveDir, vpkName, archiveIndex); err != nil {
				return err
			}
		}

		if _, err := archiveFile.Seek(int64(part.EntryOffset), io.SeekStart); err != nil {
			return fmt.Errorf("seek to part of %s: %w", filePath, err)
		}

		entryLen := part.EntryLength
		if i == 0 && isWav {
			skip, err := skipStoredWavHeader(archiveFile)
			if err != nil {
				return fmt.Errorf("skip stored WAV header of %s: %w", filePath, err)
			}

			entryLen -= skip
		}

		totalLen += entryLen

		if !part.compressed() {
			if isWav && expectedLen > 0 && totalLen > expectedLen {
				over := totalLen - expectedLen
				if over >= entryLen {
					continue
				}

				entryLen -= over
			}

			if err := copyChunked(io.MultiWriter(out, digest), archiveFile, int64(entryLen)); err != nil {
				return fmt.Errorf("extract part of %s: %w", filePath, err)
			}

			written += entryLen
			continue
		}

		n, err := checkedLen(entryLen)
		if err != nil {
			return err
		}

		compressed := make([]byte, n)
		if _, err := io.ReadFull(archiveFile, compressed); err != nil {
			return fmt.Errorf("read part of %s: %w", filePath, err)
		}

		data, err := v.decompressPart(compressed, part.EntryLengthUncompressed, filePath)
		if err != nil {
			return err
		}

		if isWav && expectedLen > 0 && written+uint64(len(data)) > expectedLen {
			if written >= expectedLen {
				continue
			}

			data = data[:expectedLen-written]
		}

		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("write part of %s: %w", filePath, err)
		}

		_, _ = digest.Write(data)
		written += uint64(len(data))
	}

	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync output file: %w", err)
	}

	if !isWav {
		return checkCRC(digest, entry.CRC, filePath)
	}

	return nil
}

// ExtractFileMemMap reconstructs the named file to outputPath from
// caller-supplied archive mappings. The output file is pre-sized to the
// expected total length, and the next fragment's byte range gets a
// read-ahead hint before the current one is processed.
func (v *VPKRespawn) ExtractFileMemMap(maps ArchiveMaps, _, filePath, outputPath string) error {
	entry, ok := v.Tree.Files[filePath]
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
		preload, ok := v.Tree.Preload[filePath]
		if !ok {
			return fmt.Errorf("%w: %s", ErrDataNotFound, filePath)
		}

		if _, err := out.Write(preload); err != nil {
			return fmt.Errorf("write preload data: %w", err)
		}

		_, _ = digest.Write(preload)
	}

	if len(entry.FileParts) == 0 {
		return fmt.Errorf("%w: %s has no file parts", ErrBadData, filePath)
	}

	archiveIndex := entry.FileParts[0].ArchiveIndex
	m, ok := maps[archiveIndex]
	if !ok {
		return fmt.Errorf("%w: archive index %d", ErrMemoryMapNotFound, archiveIndex)
	}

	prefetchMapped(m, entry.FileParts[0].EntryOffset, entry.FileParts[0].EntryLength)

	isWav := isWavPath(filePath)
	var expectedLen uint64
	for i := range entry.FileParts {
		expectedLen += entry.FileParts[i].EntryLengthUncompressed
	}
	if isWav {
		camEntry := v.camEntryFor(entry, archiveIndex)
		expectedLen = uint64(camEntry.OriginalSize)

		header := createWAVHeader(&camEntry)
		if _, err := out.Write(header); err != nil {
			return fmt.Errorf("write WAV header: %w", err)
		}

		_, _ = digest.Write(header)
	}

	expected, err := checkedLen(expectedLen)
	if err != nil {
		return err
	}

	if err := out.Truncate(int64(expected)); err != nil {
		return fmt.Errorf("pre-size output file: %w", err)
	}

	var totalLen uint64
	for i := range entry.FileParts {
		part := &entry.FileParts[i]

		if i < len(entry.FileParts)-1 {
			next := &entry.FileParts[i+1]
			if nm, ok := maps[next.ArchiveIndex]; ok {
				prefetchMapped(nm, next.EntryOffset, next.EntryLength)
			}
		}

		if part.EntryLengthUncompressed == 0 {
			continue
		}

		if part.ArchiveIndex != archiveIndex {
			archiveIndex = part.ArchiveIndex
			if m, ok = maps[archiveIndex]; !ok {
				return fmt.Errorf("%w: archive index %d", ErrMemoryMapNotFound, archiveIndex)
			}
		}

		entryOffset := part.EntryOffset
		entryLen := part.EntryLength
		if i == 0 && isWav {
			skip, err := skipStoredWavHeaderMapped(m, entryOffset)
			if err != nil {
				return fmt.Errorf("skip stored WAV header of %s: %w", filePath, err)
			}

			entryOffset += skip
			entryLen -= skip
		}

		totalLen += entryLen

		if !part.compressed() {
			if isWav && expectedLen > 0 && totalLen > expectedLen {
				over := totalLen - expectedLen
				if over >= entryLen {
					continue
				}

				entryLen -= over
			}

			if entryOffset+entryLen > uint64(len(m)) {
				return fmt.Errorf("%w: part of %s exceeds mapped archive bounds", ErrBadData, filePath)
			}

			data := m[entryOffset : entryOffset+entryLen]
			if _, err := out.Write(data); err != nil {
				return fmt.Errorf("write part of %s: %w", filePath, err)
			}

			_, _ = digest.Write(data)
			continue
		}

		if part.EntryOffset+entryLen > uint64(len(m)) {
			return fmt.Errorf("%w: part of %s exceeds mapped archive bounds", ErrBadData, filePath)
		}

		data, err := v.decompressPart(m[part.EntryOffset:part.EntryOffset+entryLen], part.EntryLengthUncompressed, filePath)
		if err != nil {
			return err
		}

		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("write part of %s: %w", filePath, err)
		}

		_, _ = digest.Write(data)
	}

	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync output file: %w", err)
	}

	if !isWav {
		return checkCRC(digest, entry.CRC, filePath)
	}

	return nil
}

// WriteDir serializes the header and directory tree to outputPath. The
// header tree size is recomputed from the serialized tree.
func (v *VPKRespawn) WriteDir(outputPath string) error {
	treeBytes, err := serializeTree(v.Tree)
	if err != nil {
		return err
	}

	v.Header.TreeSize = uint32(len(treeBytes))

	out, err := createOutputFile(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	w := newWriter(out)
	if err := v.Header.writeTo(w); err != nil {
		return err
	}
	if err := w.raw(treeBytes); err != nil {
		return fmt.Errorf("write directory tree: %w", err)
	}
	if err := w.flush(); err != nil {
		return fmt.Errorf("flush directory file: %w", err)
	}

	return out.Sync()
}

// openRespawnArchive opens one numbered archive of a Respawn VPK set.
func openRespawnArchive(archiveDir, vpkName string, index uint16) (*os.File, error) {
	path := filepath.Join(archiveDir, ArchiveFileName(vpkName, index))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArchiveNotFound, path, err)
	}

	return f, nil
}
