// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import "fmt"

// Entry is the directory entry record shared by VPK version 1 and version 2.
// For the Respawn record see RespawnEntry.
type Entry struct {
	// CRC is the CRC-32/ISO-HDLC checksum of the fully reconstructed file.
	CRC uint32 `json:"crc" yaml:"crc"`
	// PreloadLength is the number of preload bytes stored in the directory file.
	PreloadLength uint16 `json:"preload_length" yaml:"preload_length"`
	// ArchiveIndex is the zero-based index of the archive holding the file
	// data. ArchiveIndexEOF means the data follows the directory tree inside
	// the directory file itself.
	ArchiveIndex uint16 `json:"archive_index" yaml:"archive_index"`
	// EntryOffset is relative to the end of the directory tree when
	// ArchiveIndex is ArchiveIndexEOF, otherwise relative to the start of the
	// named archive.
	EntryOffset uint32 `json:"entry_offset" yaml:"entry_offset"`
	// EntryLength is the number of data bytes at EntryOffset. Zero means the
	// whole file is stored as preload data.
	EntryLength uint32 `json:"entry_length" yaml:"entry_length"`
	// Terminator closes the record and must equal EntryTerminator.
	Terminator uint16 `json:"terminator" yaml:"terminator"`
}

// NewEntry returns an entry with the terminator preset.
func NewEntry() *Entry {
	return &Entry{Terminator: EntryTerminator}
}

// readFrom decodes one entry record and validates its terminator.
func (e *Entry) readFrom(r *reader) (err error) {
	if e.CRC, err = r.u32(); err != nil {
		return fmt.Errorf("read CRC: %w", err)
	}
	if e.PreloadLength, err = r.u16(); err != nil {
		return fmt.Errorf("read preload length: %w", err)
	}
	if e.ArchiveIndex, err = r.u16(); err != nil {
		return fmt.Errorf("read archive index: %w", err)
	}
	if e.EntryOffset, err = r.u32(); err != nil {
		return fmt.Errorf("read entry offset: %w", err)
	}
	if e.EntryLength, err = r.u32(); err != nil {
		return fmt.Errorf("read entry length: %w", err)
	}
	if e.Terminator, err = r.u16(); err != nil {
		return fmt.Errorf("read terminator: %w", err)
	}

	if e.Terminator != EntryTerminator {
		return fmt.Errorf("%w: got %#04x", ErrInvalidEntryTerminator, e.Terminator)
	}

	return nil
}

// writeTo encodes one entry record, re-validating the terminator first.
func (e *Entry) writeTo(w *writer) error {
	if e.Terminator != EntryTerminator {
		return fmt.Errorf("%w: got %#04x", ErrInvalidEntryTerminator, e.Terminator)
	}

	if err := w.u32(e.CRC); err != nil {
		return fmt.Errorf("write CRC: %w", err)
	}
	if err := w.u16(e.PreloadLength); err != nil {
		return fmt.Errorf("write preload length: %w", err)
	}
	if err := w.u16(e.ArchiveIndex); err != nil {
		return fmt.Errorf("write archive index: %w", err)
	}
	if err := w.u32(e.EntryOffset); err != nil {
		return fmt.Errorf("write entry offset: %w", err)
	}
	if err := w.u32(e.EntryLength); err != nil {
		return fmt.Errorf("write entry length: %w", err)
	}
	if err := w.u16(e.Terminator); err != nil {
		return fmt.Errorf("write terminator: %w", err)
	}

	return nil
}

// PreloadLen reports the declared preload byte count.
func (e *Entry) PreloadLen() int {
	return int(e.PreloadLength)
}
