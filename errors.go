// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import "errors"

// Sentinel errors for VPK operations. Use errors.Is in callers.
var (
	// ErrInvalidSignature means the header signature does not match the format.
	ErrInvalidSignature = errors.New("invalid VPK header signature")
	// ErrBadVersion means the header version does not match the format.
	ErrBadVersion = errors.New("unexpected VPK header version")
	// ErrInvalidEntryTerminator means a directory entry terminator is not 0xFFFF.
	ErrInvalidEntryTerminator = errors.New("VPK entry terminator should be 0xFFFF")
	// ErrBadData means a structural format violation (wrong section size, zero
	// file parts, CRC mismatch, and similar).
	ErrBadData = errors.New("bad VPK data")
	// ErrFileNotFound means the logical path is absent from the directory tree.
	ErrFileNotFound = errors.New("file not found in VPK")
	// ErrDataNotFound means preload bytes are missing despite a non-zero declared length.
	ErrDataNotFound = errors.New("preload data not found in VPK")
	// ErrArchiveNotFound means a required external archive file could not be opened.
	ErrArchiveNotFound = errors.New("archive file not found")
	// ErrMemoryMapNotFound means a required archive index is absent from the caller-supplied maps.
	ErrMemoryMapNotFound = errors.New("memory-mapped archive not found")
	// ErrDataTooLarge means a 64-bit length does not fit the native width.
	ErrDataTooLarge = errors.New("data too large")
	// ErrInvalidString means a directory tree string is not valid UTF-8.
	ErrInvalidString = errors.New("invalid UTF-8 string")
	// ErrNoDecompressor means a compressed fragment was met with no decompress hook configured.
	ErrNoDecompressor = errors.New("no decompressor configured")
	// ErrWriteUnsupported means the format variant does not support writing.
	ErrWriteUnsupported = errors.New("writing is not supported for this VPK format")
	// ErrUnknownFormat means the file matched no known VPK variant.
	ErrUnknownFormat = errors.New("unknown VPK format")
	// ErrInvalidExtractPath means an entry path is invalid as an extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrInvalidFilterPattern means one or more extraction filter rules are invalid.
	ErrInvalidFilterPattern = errors.New("invalid extraction filter rules")
)
