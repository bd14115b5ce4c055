// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

//go:build unix

package vpk

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps a whole file read-only. An empty file maps to a nil slice.
func mapFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	if info.Size() == 0 {
		return nil, nil
	}

	m, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap archive: %w", err)
	}

	return m, nil
}

// unmapFile releases a mapping made by mapFile.
func unmapFile(m []byte) error {
	if len(m) == 0 {
		return nil
	}

	return unix.Munmap(m)
}

// prefetchMapped hints the kernel to page in a byte range ahead of use.
// The range is clamped to the mapping and the hint failing is not an error.
func prefetchMapped(m []byte, offset, length uint64) {
	if len(m) == 0 || length == 0 || offset >= uint64(len(m)) {
		return
	}

	end := offset + length
	if end > uint64(len(m)) {
		end = uint64(len(m))
	}

	// madvise wants a page-aligned start.
	page := uint64(os.Getpagesize())
	start := offset &^ (page - 1)

	_ = unix.Madvise(m[start:end], unix.MADV_WILLNEED)
}
