// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import (
	"fmt"
	"io"
)

// V2 trailer section sizes in bytes.
const (
	archiveMD5EntrySize  = 28
	otherMD5SectionSize  = 48
	signatureSectionSize = 296
)

// HeaderV2 is the header of a VPK version 2 directory file. It extends the
// V1 layout with the sizes of the trailing sections that follow the tree.
type HeaderV2 struct {
	// Signature must equal Signature.
	Signature uint32 `json:"signature" yaml:"signature"`
	// Version must equal VersionV2.
	Version uint32 `json:"version" yaml:"version"`
	// TreeSize is the size of the directory tree in bytes.
	TreeSize uint32 `json:"tree_size" yaml:"tree_size"`
	// FileDataSectionSize is the size of the embedded file data section.
	FileDataSectionSize uint32 `json:"file_data_section_size" yaml:"file_data_section_size"`
	// ArchiveMD5SectionSize is the size of the archive MD5 section and must
	// be a multiple of 28.
	ArchiveMD5SectionSize uint32 `json:"archive_md5_section_size" yaml:"archive_md5_section_size"`
	// OtherMD5SectionSize must equal 48.
	OtherMD5SectionSize uint32 `json:"other_md5_section_size" yaml:"other_md5_section_size"`
	// SignatureSectionSize must equal 0 or 296.
	SignatureSectionSize uint32 `json:"signature_section_size" yaml:"signature_section_size"`
}

// ArchiveMD5Entry is one archive MD5 check record of the V2 trailer.
type ArchiveMD5Entry struct {
	// ArchiveIndex names the archive the check applies to.
	ArchiveIndex uint32 `json:"archive_index" yaml:"archive_index"`
	// StartingOffset is where checking starts within the archive.
	StartingOffset uint32 `json:"starting_offset" yaml:"starting_offset"`
	// Count is how many bytes are covered.
	Count uint32 `json:"count" yaml:"count"`
	// MD5 is the expected checksum.
	MD5 [16]byte `json:"md5" yaml:"md5"`
}

// OtherMD5Section is the fixed 48-byte directory self-check record.
type OtherMD5Section struct {
	TreeChecksum       [16]byte `json:"tree_checksum" yaml:"tree_checksum"`
	ArchiveMD5Checksum [16]byte `json:"archive_md5_checksum" yaml:"archive_md5_checksum"`
	Unknown            [16]byte `json:"unknown" yaml:"unknown"`
}

// SignatureSection is the optional 296-byte public key and signature block.
type SignatureSection struct {
	PublicKeySize uint32    `json:"public_key_size" yaml:"public_key_size"`
	PublicKey     [160]byte `json:"public_key" yaml:"public_key"`
	SignatureSize uint32    `json:"signature_size" yaml:"signature_size"`
	Signature     [128]byte `json:"signature" yaml:"signature"`
}

// validate checks the magic/version pair and the trailer section size invariants.
func (h *HeaderV2) validate() error {
	if h.Signature != Signature {
		return fmt.Errorf("%w: got %#08x want %#08x", ErrInvalidSignature, h.Signature, Signature)
	}
	if h.Version != VersionV2 {
		return fmt.Errorf("%w: got %d want %d", ErrBadVersion, h.Version, VersionV2)
	}
	if h.ArchiveMD5SectionSize%archiveMD5EntrySize != 0 {
		return fmt.Errorf("%w: archive MD5 section size %d is not a multiple of %d",
			ErrBadData, h.ArchiveMD5SectionSize, archiveMD5EntrySize)
	}
	if h.OtherMD5SectionSize != otherMD5SectionSize {
		return fmt.Errorf("%w: other MD5 section size %d should be %d",
			ErrBadData, h.OtherMD5SectionSize, otherMD5SectionSize)
	}
	if h.SignatureSectionSize != 0 && h.SignatureSectionSize != signatureSectionSize {
		return fmt.Errorf("%w: signature section size %d should be 0 or %d",
			ErrBadData, h.SignatureSectionSize, signatureSectionSize)
	}

	return nil
}

// readFrom decodes and validates the header. The signature and version are
// checked before the section sizes so a wrong-format stream fails fast.
func (h *HeaderV2) readFrom(r *reader) (err error) {
	if h.Signature, err = r.u32(); err != nil {
		return fmt.Errorf("read signature: %w", err)
	}
	if h.Signature != Signature {
		return fmt.Errorf("%w: got %#08x want %#08x", ErrInvalidSignature, h.Signature, Signature)
	}

	if h.Version, err = r.u32(); err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if h.Version != VersionV2 {
		return fmt.Errorf("%w: got %d want %d", ErrBadVersion, h.Version, VersionV2)
	}

	if h.TreeSize, err = r.u32(); err != nil {
		return fmt.Errorf("read tree size: %w", err)
	}
	if h.FileDataSectionSize, err = r.u32(); err != nil {
		return fmt.Errorf("read file data section size: %w", err)
	}
	if h.ArchiveMD5SectionSize, err = r.u32(); err != nil {
		return fmt.Errorf("read archive MD5 section size: %w", err)
	}
	if h.OtherMD5SectionSize, err = r.u32(); err != nil {
		return fmt.Errorf("read other MD5 section size: %w", err)
	}
	if h.SignatureSectionSize, err = r.u32(); err != nil {
		return fmt.Errorf("read signature section size: %w", err)
	}

	return h.validate()
}

// ProbeV2 reports whether the stream at its current position starts with a
// V2 magic/version pair. The cursor is restored regardless of outcome.
func ProbeV2(rs io.ReadSeeker) bool {
	return probeMagic(rs, VersionV2)
}

// VPKVersion2 is a parsed VPK version 2 directory file.
//
// The variant is read-only in this package: content reconstruction works,
// WriteDir returns ErrWriteUnsupported.
type VPKVersion2 struct {
	// Header is the VPK's header.
	Header HeaderV2 `json:"header" yaml:"header"`
	// Tree is the tree of files in the VPK.
	Tree *Tree[*Entry] `json:"tree" yaml:"tree"`
	// FileData is the embedded file data section following the tree.
	FileData []byte `json:"file_data,omitempty" yaml:"file_data,omitempty"`
	// ArchiveMD5Entries are the archive MD5 check records.
	ArchiveMD5Entries []ArchiveMD5Entry `json:"archive_md5_entries,omitempty" yaml:"archive_md5_entries,omitempty"`
	// OtherMD5 is the directory self-check record.
	OtherMD5 OtherMD5Section `json:"other_md5" yaml:"other_md5"`
	// SignatureBlock is present only when the header declares a 296-byte
	// signature section.
	SignatureBlock *SignatureSection `json:"signature_block,omitempty" yaml:"signature_block,omitempty"`
}

// ReadVPKVersion2 parses a V2 directory file from the stream's current position.
func ReadVPKVersion2(src io.Reader) (*VPKVersion2, error) {
	r := newReader(src, 0)

	v := &VPKVersion2{}
	if err := v.Header.readFrom(r); err != nil {
		return nil, err
	}

	tree, err := parseTree(r, int64(v.Header.TreeSize), NewEntry)
	if err != nil {
		return nil, err
	}
	v.Tree = tree

	if v.FileData, err = r.bytesN(int(v.Header.FileDataSectionSize)); err != nil {
		return nil, fmt.Errorf("read file data section: %w", err)
	}

	count := int(v.Header.ArchiveMD5SectionSize / archiveMD5EntrySize)
	v.ArchiveMD5Entries = make([]ArchiveMD5Entry, 0, count)
	for i := 0; i < count; i++ {
		var rec ArchiveMD5Entry
		if rec.ArchiveIndex, err = r.u32(); err != nil {
			return nil, fmt.Errorf("read archive MD5 record %d: %w", i, err)
		}
		if rec.StartingOffset, err = r.u32(); err != nil {
			return nil, fmt.Errorf("read archive MD5 record %d: %w", i, err)
		}
		if rec.Count, err = r.u32(); err != nil {
			return nil, fmt.Errorf("read archive MD5 record %d: %w", i, err)
		}

		md5, err := r.bytesN(16)
		if err != nil {
			return nil, fmt.Errorf("read archive MD5 record %d: %w", i, err)
		}

		copy(rec.MD5[:], md5)
		v.ArchiveMD5Entries = append(v.ArchiveMD5Entries, rec)
	}

	for _, dst := range [][]byte{v.OtherMD5.TreeChecksum[:], v.OtherMD5.ArchiveMD5Checksum[:], v.OtherMD5.Unknown[:]} {
		b, err := r.bytesN(16)
		if err != nil {
			return nil, fmt.Errorf("read other MD5 section: %w", err)
		}

		copy(dst, b)
	}

	if v.Header.SignatureSectionSize == signatureSectionSize {
		sig := &SignatureSection{}
		if sig.PublicKeySize, err = r.u32(); err != nil {
			return nil, fmt.Errorf("read public key size: %w", err)
		}

		pub, err := r.bytesN(len(sig.PublicKey))
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		copy(sig.PublicKey[:], pub)

		if sig.SignatureSize, err = r.u32(); err != nil {
			return nil, fmt.Errorf("read signature size: %w", err)
		}

		sigBytes, err := r.bytesN(len(sig.Signature))
		if err != nil {
			return nil, fmt.Errorf("read signature: %w", err)
		}
		copy(sig.Signature[:], sigBytes)

		v.SignatureBlock = sig
	}

	return v, nil
}

// Format reports FormatVPKVersion2.
func (v *VPKVersion2) Format() PakFormat {
	return FormatVPKVersion2
}

// Paths returns the logical paths of all files in the directory tree.
func (v *VPKVersion2) Paths() []string {
	return v.Tree.paths()
}

// dirDataStart is the absolute offset of EOF-sentinel data in the directory file.
func (v *VPKVersion2) dirDataStart() int64 {
	return headerSizeV2 + int64(v.Header.TreeSize)
}

// ReadFile reconstructs the named file fully in memory and verifies its CRC.
func (v *VPKVersion2) ReadFile(archiveDir, vpkName, filePath string) ([]byte, error) {
	return readFileV1V2(v.Tree, archiveDir, vpkName, filePath, v.dirDataStart())
}

// ExtractFile reconstructs the named file to outputPath in bounded chunks.
func (v *VPKVersion2) ExtractFile(archiveDir, vpkName, filePath, outputPath string) error {
	return extractFileV1V2(v.Tree, archiveDir, vpkName, filePath, outputPath, v.dirDataStart())
}

// ExtractFileMemMap reconstructs the named file to outputPath from
// caller-supplied archive mappings.
func (v *VPKVersion2) ExtractFileMemMap(maps ArchiveMaps, _, filePath, outputPath string) error {
	return extractFileMemMapV1V2(v.Tree, maps, filePath, outputPath)
}

// WriteDir is unsupported for the V2 variant: the MD5 and signature trailer
// layout cannot be reconstructed faithfully, so the variant is read-only.
func (v *VPKVersion2) WriteDir(string) error {
	return fmt.Errorf("%w: %s", ErrWriteUnsupported, v.Format())
}
