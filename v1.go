// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import (
	"fmt"
	"io"
)

// HeaderV1 is the fixed header of a VPK version 1 directory file.
type HeaderV1 struct {
	// Signature must equal Signature.
	Signature uint32 `json:"signature" yaml:"signature"`
	// Version must equal VersionV1.
	Version uint32 `json:"version" yaml:"version"`
	// TreeSize is the size of the directory tree in bytes.
	TreeSize uint32 `json:"tree_size" yaml:"tree_size"`
}

// validate checks the magic/version pair.
func (h *HeaderV1) validate() error {
	if h.Signature != Signature {
		return fmt.Errorf("%w: got %#08x want %#08x", ErrInvalidSignature, h.Signature, Signature)
	}
	if h.Version != VersionV1 {
		return fmt.Errorf("%w: got %d want %d", ErrBadVersion, h.Version, VersionV1)
	}

	return nil
}

// readFrom decodes and validates the header.
func (h *HeaderV1) readFrom(r *reader) (err error) {
	if h.Signature, err = r.u32(); err != nil {
		return fmt.Errorf("read signature: %w", err)
	}
	if h.Version, err = r.u32(); err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if h.TreeSize, err = r.u32(); err != nil {
		return fmt.Errorf("read tree size: %w", err)
	}

	return h.validate()
}

// writeTo re-validates the header invariants and encodes the header.
func (h *HeaderV1) writeTo(w *writer) error {
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

	return nil
}

// ProbeV1 reports whether the stream at its current position starts with a
// V1 magic/version pair. The cursor is restored regardless of outcome.
func ProbeV1(rs io.ReadSeeker) bool {
	return probeMagic(rs, VersionV1)
}

// VPKVersion1 is a parsed VPK version 1 directory file.
type VPKVersion1 struct {
	// Header is the VPK's header.
	Header HeaderV1 `json:"header" yaml:"header"`
	// Tree is the tree of files in the VPK.
	Tree *Tree[*Entry] `json:"tree" yaml:"tree"`
}

// NewVPKVersion1 returns an empty V1 VPK for programmatic construction.
func NewVPKVersion1() *VPKVersion1 {
	return &VPKVersion1{
		Header: HeaderV1{Signature: Signature, Version: VersionV1},
		Tree:   NewTree[*Entry](),
	}
}

// ReadVPKVersion1 parses a V1 directory file from the stream's current position.
func ReadVPKVersion1(src io.Reader) (*VPKVersion1, error) {
	r := newReader(src, 0)

	v := &VPKVersion1{}
	if err := v.Header.readFrom(r); err != nil {
		return nil, err
	}

	tree, err := parseTree(r, int64(v.Header.TreeSize), NewEntry)
	if err != nil {
		return nil, err
	}

	v.Tree = tree
	return v, nil
}

// Format reports FormatVPKVersion1.
func (v *VPKVersion1) Format() PakFormat {
	return FormatVPKVersion1
}

// Paths returns the logical paths of all files in the directory tree.
func (v *VPKVersion1) Paths() []string {
	return v.Tree.paths()
}

// dirDataStart is the absolute offset of EOF-sentinel data in the directory file.
func (v *VPKVersion1) dirDataStart() int64 {
	return headerSizeV1 + int64(v.Header.TreeSize)
}

// ReadFile reconstructs the named file fully in memory and verifies its CRC.
func (v *VPKVersion1) ReadFile(archiveDir, vpkName, filePath string) ([]byte, error) {
	return readFileV1V2(v.Tree, archiveDir, vpkName, filePath, v.dirDataStart())
}

// ExtractFile reconstructs the named file to outputPath in bounded chunks.
func (v *VPKVersion1) ExtractFile(archiveDir, vpkName, filePath, outputPath string) error {
	return extractFileV1V2(v.Tree, archiveDir, vpkName, filePath, outputPath, v.dirDataStart())
}

// ExtractFileMemMap reconstructs the named file to outputPath from
// caller-supplied archive mappings.
func (v *VPKVersion1) ExtractFileMemMap(maps ArchiveMaps, _, filePath, outputPath string) error {
	return extractFileMemMapV1V2(v.Tree, maps, filePath, outputPath)
}

// WriteDir serializes the header and directory tree to outputPath. The
// header tree size is recomputed from the serialized tree so programmatic
// trees round-trip without manual size accounting.
func (v *VPKVersion1) WriteDir(outputPath string) error {
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
