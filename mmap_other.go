// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

//go:build !unix

package vpk

import "os"

// mapFile falls back to reading the whole file on platforms without mmap
// support. The extraction paths only need a byte slice.
func mapFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// unmapFile releases nothing for the read-into-memory fallback.
func unmapFile(_ []byte) error {
	return nil
}

// prefetchMapped is a no-op for the read-into-memory fallback.
func prefetchMapped(_ []byte, _, _ uint64) {}
