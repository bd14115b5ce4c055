// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import (
	"encoding/binary"
	"fmt"
	"io"
)

// probeMagic reports whether the stream at its current position starts with
// the shared signature followed by the given version. The cursor is restored
// regardless of outcome; a stream too short to hold a header probes false.
func probeMagic(rs io.ReadSeeker, version uint32) bool {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return false
	}

	var head [8]byte
	_, readErr := io.ReadFull(rs, head[:])

	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return false
	}

	if readErr != nil {
		return false
	}

	return binary.LittleEndian.Uint32(head[:4]) == Signature &&
		binary.LittleEndian.Uint32(head[4:]) == version
}

// DetectFormat identifies the VPK variant of the stream at its current
// position without consuming it. Streams that match no variant report
// FormatUnknown; detection itself never fails.
func DetectFormat(rs io.ReadSeeker) PakFormat {
	switch {
	case ProbeV1(rs):
		return FormatVPKVersion1
	case ProbeV2(rs):
		return FormatVPKVersion2
	case ProbeRespawn(rs):
		return FormatVPKRespawn
	default:
		return FormatUnknown
	}
}

// OpenPak detects the variant of a directory file stream and parses it with
// the matching reader.
func OpenPak(rs io.ReadSeeker) (Pak, error) {
	switch DetectFormat(rs) {
	case FormatVPKVersion1:
		return ReadVPKVersion1(rs)
	case FormatVPKVersion2:
		return ReadVPKVersion2(rs)
	case FormatVPKRespawn:
		return ReadVPKRespawn(rs)
	default:
		return nil, fmt.Errorf("%w: stream is not a VPK directory file", ErrUnknownFormat)
	}
}
