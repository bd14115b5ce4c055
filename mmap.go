// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
)

// OpenArchiveMaps maps the numbered archives of a VPK set into memory,
// keyed by archive index. On failure every mapping made so far is released.
// Callers release the result with CloseArchiveMaps.
func OpenArchiveMaps(archiveDir, vpkName string, indices []uint16) (ArchiveMaps, error) {
	maps := make(ArchiveMaps, len(indices))
	for _, index := range indices {
		path := filepath.Join(archiveDir, ArchiveFileName(vpkName, index))
		m, err := mapFile(path)
		if err != nil {
			_ = CloseArchiveMaps(maps)
			return nil, fmt.Errorf("%w: %s: %w", ErrArchiveNotFound, path, err)
		}

		maps[index] = m
	}

	return maps, nil
}

// CloseArchiveMaps releases every mapping and empties the map.
func CloseArchiveMaps(maps ArchiveMaps) error {
	var errs []error
	for index, m := range maps {
		if err := unmapFile(m); err != nil {
			errs = append(errs, fmt.Errorf("unmap archive %d: %w", index, err))
		}

		delete(maps, index)
	}

	return errors.Join(errs...)
}

// ReferencedArchives returns the sorted set of numbered archive indices the
// pak's entries point at. Entries stored in the directory file itself are
// not numbered archives and do not appear in the result.
func ReferencedArchives(p Pak) []uint16 {
	set := make(map[uint16]struct{})

	switch v := p.(type) {
	case *VPKVersion1:
		for _, entry := range v.Tree.Files {
			if entry.ArchiveIndex != ArchiveIndexEOF && entry.EntryLength > 0 {
				set[entry.ArchiveIndex] = struct{}{}
			}
		}
	case *VPKVersion2:
		for _, entry := range v.Tree.Files {
			if entry.ArchiveIndex != ArchiveIndexEOF && entry.EntryLength > 0 {
				set[entry.ArchiveIndex] = struct{}{}
			}
		}
	case *VPKRespawn:
		for _, entry := range v.Tree.Files {
			for i := range entry.FileParts {
				if entry.FileParts[i].EntryLengthUncompressed > 0 {
					set[entry.FileParts[i].ArchiveIndex] = struct{}{}
				}
			}
		}
	}

	indices := make([]uint16, 0, len(set))
	for index := range set {
		indices = append(indices, index)
	}

	slices.Sort(indices)
	return indices
}
