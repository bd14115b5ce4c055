// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// camEntryMagic marks a valid CAM record.
const camEntryMagic uint32 = 3302889984

// camEntrySize is the fixed on-disk size of one CAM record.
const camEntrySize = 33

// Defaults used when an audio entry has no CAM record.
const (
	defaultWavChannels   uint8  = 1
	defaultWavSampleRate uint32 = 44100
	defaultWavHeaderSize uint32 = 44
)

// wavFillerByte pads stored audio fragments after the original header.
const wavFillerByte = 0xCB

// CamEntry is one record of a CAM audio-metadata sidecar.
type CamEntry struct {
	// Magic must equal camEntryMagic.
	Magic uint32 `json:"magic" yaml:"magic"`
	// OriginalSize is the uncompressed size of the audio data.
	OriginalSize uint32 `json:"original_size" yaml:"original_size"`
	// CompressedSize is the stored size of the audio data.
	CompressedSize uint32 `json:"compressed_size" yaml:"compressed_size"`
	// SampleRate is the audio sample rate in Hz, stored as 24 bits.
	SampleRate uint32 `json:"sample_rate" yaml:"sample_rate"`
	// Channels is the audio channel count.
	Channels uint8 `json:"channels" yaml:"channels"`
	// SampleCount is the number of audio samples.
	SampleCount uint32 `json:"sample_count" yaml:"sample_count"`
	// HeaderSize is the size of the original audio header.
	HeaderSize uint32 `json:"header_size" yaml:"header_size"`
	// VpkContentOffset is the offset of the audio data within its archive.
	// Records are matched to directory entries by this value.
	VpkContentOffset uint64 `json:"vpk_content_offset" yaml:"vpk_content_offset"`
}

// readFrom decodes one fixed-size CAM record.
func (e *CamEntry) readFrom(r *reader) (err error) {
	if e.Magic, err = r.u32(); err != nil {
		return fmt.Errorf("read magic: %w", err)
	}
	if e.OriginalSize, err = r.u32(); err != nil {
		return fmt.Errorf("read original size: %w", err)
	}
	if e.CompressedSize, err = r.u32(); err != nil {
		return fmt.Errorf("read compressed size: %w", err)
	}
	if e.SampleRate, err = r.u24(); err != nil {
		return fmt.Errorf("read sample rate: %w", err)
	}
	if e.Channels, err = r.u8(); err != nil {
		return fmt.Errorf("read channel count: %w", err)
	}
	if e.SampleCount, err = r.u32(); err != nil {
		return fmt.Errorf("read sample count: %w", err)
	}
	if e.HeaderSize, err = r.u32(); err != nil {
		return fmt.Errorf("read header size: %w", err)
	}
	if e.VpkContentOffset, err = r.u64(); err != nil {
		return fmt.Errorf("read content offset: %w", err)
	}

	return nil
}

// DefaultCamEntry synthesizes CAM metadata for an audio entry that has no
// sidecar record: 16-bit mono PCM at 44100 Hz with a standard 44 byte header.
func DefaultCamEntry(entry *RespawnEntry) CamEntry {
	var originalSize, compressedSize uint64
	for i := range entry.FileParts {
		originalSize += entry.FileParts[i].EntryLengthUncompressed
		compressedSize += entry.FileParts[i].EntryLength
	}

	var contentOffset uint64
	if len(entry.FileParts) > 0 {
		contentOffset = entry.FileParts[0].EntryOffset
	}

	return CamEntry{
		Magic:            camEntryMagic,
		OriginalSize:     uint32(originalSize),
		CompressedSize:   uint32(compressedSize),
		SampleRate:       defaultWavSampleRate,
		Channels:         defaultWavChannels,
		SampleCount:      (uint32(originalSize) - defaultWavHeaderSize + 8) / 2,
		HeaderSize:       defaultWavHeaderSize,
		VpkContentOffset: contentOffset,
	}
}

// createWAVHeader builds a 44 byte RIFF/WAVE header for 16-bit PCM audio
// described by a CAM record.
func createWAVHeader(e *CamEntry) []byte {
	const bitsPerSample = 16

	fileLen := 2 * e.SampleCount * uint32(e.Channels)
	byteRate := e.SampleRate * bitsPerSample * uint32(e.Channels) / 8
	blockAlign := bitsPerSample * uint16(e.Channels) / 8

	header := make([]byte, 0, defaultWavHeaderSize)
	header = append(header, "RIFF"...)
	header = binary.LittleEndian.AppendUint32(header, fileLen-8+defaultWavHeaderSize)
	header = append(header, "WAVE"...)
	header = append(header, "fmt "...)
	header = binary.LittleEndian.AppendUint32(header, 16)
	header = binary.LittleEndian.AppendUint16(header, 1)
	header = binary.LittleEndian.AppendUint16(header, uint16(e.Channels))
	header = binary.LittleEndian.AppendUint32(header, e.SampleRate)
	header = binary.LittleEndian.AppendUint32(header, byteRate)
	header = binary.LittleEndian.AppendUint16(header, blockAlign)
	header = binary.LittleEndian.AppendUint16(header, bitsPerSample)
	header = append(header, "data"...)
	header = binary.LittleEndian.AppendUint32(header, fileLen)

	return header
}

// Cam is a parsed CAM audio-metadata sidecar.
type Cam struct {
	// Entries maps archive content offsets to their records. A later record
	// with the same offset replaces an earlier one.
	Entries map[uint64]CamEntry `json:"entries" yaml:"entries"`
}

// ParseCam reads CAM records from the stream until end of file. Records with
// an unexpected magic are discarded.
func ParseCam(src io.Reader) (*Cam, error) {
	r := newReader(src, 0)
	cam := &Cam{Entries: make(map[uint64]CamEntry)}

	for {
		var e CamEntry
		if err := e.readFrom(r); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return nil, fmt.Errorf("parse CAM record: %w", err)
		}

		if e.Magic != camEntryMagic {
			continue
		}

		cam.Entries[e.VpkContentOffset] = e
	}

	return cam, nil
}

// LoadCam parses a CAM sidecar file from disk.
func LoadCam(path string) (*Cam, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CAM file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseCam(f)
}

// Find returns the record for an archive content offset, or nil.
func (c *Cam) Find(contentOffset uint64) *CamEntry {
	if e, ok := c.Entries[contentOffset]; ok {
		return &e
	}

	return nil
}

// CamCache shares parsed CAM sidecars between concurrent readers of the
// same VPK set, keyed by file path.
type CamCache struct {
	mu   sync.RWMutex
	cams map[string]*Cam
}

// NewCamCache returns an empty cache ready for use.
func NewCamCache() *CamCache {
	return &CamCache{cams: make(map[string]*Cam)}
}

// Load returns the cached CAM for a path, parsing and inserting it on first
// use. The sidecar is parsed under the write lock after a re-check, so
// concurrent first loads of the same path parse it once.
func (c *CamCache) Load(path string) (*Cam, error) {
	c.mu.RLock()
	cam, ok := c.cams[path]
	c.mu.RUnlock()
	if ok {
		return cam, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.cams[path]; ok {
		return cached, nil
	}

	cam, err := LoadCam(path)
	if err != nil {
		return nil, err
	}

	c.cams[path] = cam
	return cam, nil
}

// skipStoredWavHeader advances the stream past the stored 44 byte audio
// header and the filler run that follows it, returning the number of bytes
// skipped. The stream must be positioned at the fragment start.
func skipStoredWavHeader(f *os.File) (uint64, error) {
	if _, err := f.Seek(int64(defaultWavHeaderSize), io.SeekCurrent); err != nil {
		return 0, fmt.Errorf("seek past stored header: %w", err)
	}

	skipped := uint64(defaultWavHeaderSize)
	b := make([]byte, 1)
	for {
		if _, err := f.Read(b); err != nil {
			if errors.Is(err, io.EOF) {
				return skipped, nil
			}

			return 0, fmt.Errorf("scan filler bytes: %w", err)
		}

		if b[0] != wavFillerByte {
			if _, err := f.Seek(-1, io.SeekCurrent); err != nil {
				return 0, fmt.Errorf("rewind to sample data: %w", err)
			}

			return skipped, nil
		}

		skipped++
	}
}

// skipStoredWavHeaderMapped is skipStoredWavHeader over a mapped archive.
func skipStoredWavHeaderMapped(m []byte, offset uint64) (uint64, error) {
	pos := offset + uint64(defaultWavHeaderSize)
	if pos > uint64(len(m)) {
		return 0, fmt.Errorf("%w: stored header exceeds mapped archive bounds", ErrBadData)
	}

	for pos < uint64(len(m)) && m[pos] == wavFillerByte {
		pos++
	}

	return pos - offset, nil
}
