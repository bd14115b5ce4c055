// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import (
	"fmt"
	"sort"
	"strings"
)

// DirEntry is implemented by the per-variant directory entry codecs.
type DirEntry interface {
	readFrom(r *reader) error
	writeTo(w *writer) error

	// PreloadLen reports the number of inline preload bytes declared by the entry.
	PreloadLen() int
}

// Tree is the file tree parsed from a VPK directory file.
//
// It is built once at load time and is read-only afterwards, so concurrent
// lookups against the same tree are safe. Trees constructed programmatically
// for writing must be serialized by the caller.
type Tree[E DirEntry] struct {
	// Files maps every logical path in the directory tree to its entry.
	Files map[string]E
	// Preload maps a logical path to its inline preload bytes. A path is a
	// key only when its entry declares a non-zero preload length.
	Preload map[string][]byte
}

// NewTree returns an empty tree for programmatic construction.
func NewTree[E DirEntry]() *Tree[E] {
	return &Tree[E]{
		Files:   make(map[string]E),
		Preload: make(map[string][]byte),
	}
}

// parseTree decodes the extension/directory/filename nesting occupying
// exactly size bytes starting at the reader's current offset. alloc produces
// one zero entry per file for the variant's codec to fill.
//
// The outer level has no terminator byte: the declared size is the sole
// bound. The two inner levels terminate on an empty string or when the
// cursor moves past the bound.
func parseTree[E DirEntry](r *reader, size int64, alloc func() E) (*Tree[E], error) {
	tree := NewTree[E]()
	r.bound(r.offset() + size)

	for !r.exhausted() {
		extension, err := r.str()
		if err != nil {
			return nil, fmt.Errorf("read extension: %w", err)
		}
		if extension == "" {
			break
		}

		for {
			if r.exhausted() {
				break
			}

			dir, err := r.str()
			if err != nil {
				return nil, fmt.Errorf("read directory: %w", err)
			}
			if dir == "" || r.overran() {
				break
			}

			for {
				if r.exhausted() {
					break
				}

				fileName, err := r.str()
				if err != nil {
					return nil, fmt.Errorf("read file name: %w", err)
				}
				if fileName == "" || r.overran() {
					break
				}

				filePath := fmt.Sprintf("%s/%s.%s", dir, fileName, extension)

				entry := alloc()
				if err := entry.readFrom(r); err != nil {
					return nil, fmt.Errorf("read entry %s: %w", filePath, err)
				}

				if n := entry.PreloadLen(); n > 0 {
					preload, err := r.bytesN(n)
					if err != nil {
						return nil, fmt.Errorf("read preload data %s: %w", filePath, err)
					}

					tree.Preload[filePath] = preload
				}

				tree.Files[filePath] = entry
			}
		}
	}

	r.bound(-1)
	return tree, nil
}

// treeGroup is one filename plus its entry within a directory group.
type treeGroup[E DirEntry] struct {
	name  string
	entry E
}

// writeTo serializes the tree in the nesting the parser expects: for each
// extension its string, for each directory its string, then per file the
// filename, the entry record, and any preload bytes. A single zero byte
// closes the filename level and another closes the directory level; no
// terminator follows the final extension, mirroring the parser's reliance on
// the declared tree size.
func (t *Tree[E]) writeTo(w *writer) error {
	grouped := make(map[string]map[string][]treeGroup[E])
	for path, entry := range t.Files {
		dir, name, extension := splitEntryPath(path)

		dirMap, ok := grouped[extension]
		if !ok {
			dirMap = make(map[string][]treeGroup[E])
			grouped[extension] = dirMap
		}

		dirMap[dir] = append(dirMap[dir], treeGroup[E]{name: name, entry: entry})
	}

	for _, extension := range sortedKeys(grouped) {
		if err := w.str(extension); err != nil {
			return fmt.Errorf("write extension: %w", err)
		}

		dirMap := grouped[extension]
		for _, dir := range sortedKeys(dirMap) {
			if err := w.str(dir); err != nil {
				return fmt.Errorf("write directory: %w", err)
			}

			files := dirMap[dir]
			sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
			for _, file := range files {
				if err := w.str(file.name); err != nil {
					return fmt.Errorf("write file name: %w", err)
				}

				if err := file.entry.writeTo(w); err != nil {
					return fmt.Errorf("write entry %s/%s.%s: %w", dir, file.name, extension, err)
				}

				filePath := fmt.Sprintf("%s/%s.%s", dir, file.name, extension)
				if preload, ok := t.Preload[filePath]; ok {
					if err := w.raw(preload); err != nil {
						return fmt.Errorf("write preload data %s: %w", filePath, err)
					}
				}
			}

			if err := w.u8(0); err != nil {
				return fmt.Errorf("write file terminator: %w", err)
			}
		}

		if err := w.u8(0); err != nil {
			return fmt.Errorf("write directory terminator: %w", err)
		}
	}

	return nil
}

// paths returns the logical paths of the tree in sorted order.
func (t *Tree[E]) paths() []string {
	out := make([]string, 0, len(t.Files))
	for path := range t.Files {
		out = append(out, path)
	}

	sort.Strings(out)
	return out
}

// splitEntryPath splits a stored logical path into the directory, file stem,
// and extension components the tree encoding is keyed by.
func splitEntryPath(path string) (dir, name, extension string) {
	dir = ""
	rest := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		dir = path[:idx]
		rest = path[idx+1:]
	}

	name = rest
	if idx := strings.LastIndexByte(rest, '.'); idx >= 0 {
		name = rest[:idx]
		extension = rest[idx+1:]
	}

	return dir, name, extension
}

// sortedKeys returns the map's keys in ascending order for deterministic output.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}
