// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import (
	"context"

	"github.com/woozymasta/pathrules"
)

// Shared binary layout constants.
const (
	// EntryTerminator closes every directory entry record.
	EntryTerminator uint16 = 0xFFFF
	// ArchiveIndexEOF is the archive index sentinel meaning the file data
	// follows the directory tree inside the directory file itself.
	ArchiveIndexEOF uint16 = 0x7FFF

	// Signature is the 4-byte magic shared by all VPK directory files.
	Signature uint32 = 0x55AA1234
	// VersionV1 is the header version of a VPK version 1 file.
	VersionV1 uint32 = 1
	// VersionV2 is the header version of a VPK version 2 file.
	VersionV2 uint32 = 2
	// VersionRespawn is the header version of a Respawn VPK file.
	VersionRespawn uint32 = 196610
)

// Fixed header sizes in bytes, used for EOF-sentinel data addressing.
const (
	headerSizeV1      = 12
	headerSizeV2      = 28
	headerSizeRespawn = 16
)

// extractChunkSize caps per-chunk copies during disk-to-disk extraction so
// peak memory stays independent of entry size.
const extractChunkSize = 1024 * 1024

// PakFormat identifies one VPK directory file variant.
type PakFormat int

// Known VPK directory file variants.
const (
	// FormatUnknown means the file matched no known variant.
	FormatUnknown PakFormat = iota
	// FormatVPKVersion1 is the VPK version 1 format.
	FormatVPKVersion1
	// FormatVPKVersion2 is the VPK version 2 format.
	FormatVPKVersion2
	// FormatVPKRespawn is the Respawn VPK format.
	FormatVPKRespawn
)

// String returns a human-readable format name.
func (f PakFormat) String() string {
	switch f {
	case FormatVPKVersion1:
		return "VPK Version 1"
	case FormatVPKVersion2:
		return "VPK Version 2"
	case FormatVPKRespawn:
		return "VPK Respawn"
	default:
		return "Unknown"
	}
}

// Pak is the shared reconstruction surface of the parsed VPK variants.
// The implementing set is closed: *VPKVersion1, *VPKVersion2, *VPKRespawn.
type Pak interface {
	// Format reports the variant of this VPK.
	Format() PakFormat
	// Paths returns the logical paths of all files in the directory tree.
	Paths() []string
	// ReadFile reconstructs the named file fully in memory.
	// archiveDir is the directory holding the "{name}_dir.vpk" and
	// "{name}_NNN.vpk" files; vpkName is the "{name}" part.
	ReadFile(archiveDir, vpkName, filePath string) ([]byte, error)
	// ExtractFile reconstructs the named file to outputPath, creating parent
	// directories as needed. Copies are chunked to cap peak memory.
	ExtractFile(archiveDir, vpkName, filePath, outputPath string) error
	// ExtractFileMemMap reconstructs the named file to outputPath using
	// caller-supplied memory mappings, one per required archive index.
	ExtractFileMemMap(maps ArchiveMaps, vpkName, filePath, outputPath string) error
	// WriteDir serializes the header and directory tree to outputPath.
	// External archive files are never touched.
	WriteDir(outputPath string) error
}

// ArchiveMaps holds caller-owned memory mappings keyed by archive index.
// Mappings must stay valid and unmodified for the duration of any call that
// receives them; see OpenArchiveMaps for a managed way to obtain them.
type ArchiveMaps map[uint16][]byte

// DecompressFunc inflates src into exactly uncompressedLen bytes.
// Respawn VPKs use LZHAM; the codec itself is outside this package and is
// supplied by the caller.
type DecompressFunc func(src []byte, uncompressedLen int) ([]byte, error)

// CompressFunc deflates src, returning the stored representation.
type CompressFunc func(src []byte) ([]byte, error)

// ExtractOptions configures ExtractAll behavior.
type ExtractOptions struct {
	// OnFileDone is called after one file is fully written to disk.
	OnFileDone func(filePath, outputPath string) `json:"-" yaml:"-"`
	// Filter defines ordered path rules selecting files for extraction.
	// An empty rule set selects every file.
	Filter []pathrules.Rule `json:"filter,omitempty" yaml:"filter,omitempty"`
	// FilterMatcherOptions control filter rule matching.
	FilterMatcherOptions pathrules.MatcherOptions `json:"filter_matcher_options,omitzero" yaml:"filter_matcher_options,omitzero"`
	// MaxWorkers is the number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
	// Maps, when set, makes workers read from mapped archives instead of
	// seeking file handles. Entries whose archive is not mapped fall back
	// to the file handle path.
	Maps ArchiveMaps `json:"-" yaml:"-"`
	// Context cancels a running extraction; nil means context.Background.
	Context context.Context `json:"-" yaml:"-"`
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	if opts.FilterMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.FilterMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionInclude,
		}
	}

	if opts.FilterMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.FilterMatcherOptions.DefaultAction = pathrules.ActionInclude
	}
}

// ExtractResult contains bulk extraction statistics.
type ExtractResult struct {
	// Extracted is the number of files written to disk.
	Extracted int `json:"extracted" yaml:"extracted"`
	// Skipped is the number of files excluded by filter rules.
	Skipped int `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}
