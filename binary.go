// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"
)

// readBufferSize is the sequential parse buffer for directory files.
const readBufferSize = 64 * 1024

// reader is a little-endian sequential decoder with an absolute position and
// an optional byte bound. The directory tree parser relies on the bound: the
// outermost tree level has no terminator byte, the declared tree size is the
// only stop condition.
type reader struct {
	br    *bufio.Reader
	pos   int64
	limit int64
}

// newReader wraps src in a buffered little-endian decoder anchored at the
// given absolute stream offset.
func newReader(src io.Reader, start int64) *reader {
	return &reader{
		br:    bufio.NewReaderSize(src, readBufferSize),
		pos:   start,
		limit: -1,
	}
}

// bound sets the absolute offset the reader must not parse past.
func (r *reader) bound(limit int64) {
	r.limit = limit
}

// offset returns the current absolute stream offset.
func (r *reader) offset() int64 {
	return r.pos
}

// exhausted reports whether the bounded region is fully consumed.
func (r *reader) exhausted() bool {
	return r.limit >= 0 && r.pos >= r.limit
}

// overran reports whether the cursor moved past the bounded region.
func (r *reader) overran() bool {
	return r.limit >= 0 && r.pos > r.limit
}

// fill reads exactly len(dst) bytes and advances the position.
func (r *reader) fill(dst []byte) error {
	n, err := io.ReadFull(r.br, dst)
	r.pos += int64(n)
	if err != nil {
		return err
	}

	return nil
}

// u8 reads one byte.
func (r *reader) u8() (uint8, error) {
	var b [1]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}

	return b[0], nil
}

// u16 reads a little-endian 16-bit value.
func (r *reader) u16() (uint16, error) {
	var b [2]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}

	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// u24 reads a little-endian 24-bit value into a uint32.
func (r *reader) u24() (uint32, error) {
	var b [3]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}

	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// u32 reads a little-endian 32-bit value.
func (r *reader) u32() (uint32, error) {
	var b [4]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}

	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// u64 reads a little-endian 64-bit value.
func (r *reader) u64() (uint64, error) {
	var b [8]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}

	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56, nil
}

// bytesN reads exactly n bytes.
func (r *reader) bytesN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := r.fill(buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// str reads a null-terminated UTF-8 string.
func (r *reader) str() (string, error) {
	raw, err := r.br.ReadBytes(0)
	r.pos += int64(len(raw))
	if err != nil {
		return "", err
	}

	s := raw[:len(raw)-1]
	if !utf8.Valid(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidString, s)
	}

	return string(s), nil
}

// writer is the little-endian counterpart of reader.
type writer struct {
	bw  *bufio.Writer
	pos int64
}

// newWriter wraps dst in a buffered little-endian encoder.
func newWriter(dst io.Writer) *writer {
	return &writer{bw: bufio.NewWriterSize(dst, readBufferSize)}
}

// offset returns the number of bytes written so far.
func (w *writer) offset() int64 {
	return w.pos
}

// flush drains buffered output to the destination.
func (w *writer) flush() error {
	return w.bw.Flush()
}

// raw writes the bytes verbatim.
func (w *writer) raw(b []byte) error {
	n, err := w.bw.Write(b)
	w.pos += int64(n)
	if err != nil {
		return err
	}

	return nil
}

// u8 writes one byte.
func (w *writer) u8(v uint8) error {
	return w.raw([]byte{v})
}

// u16 writes a little-endian 16-bit value.
func (w *writer) u16(v uint16) error {
	return w.raw([]byte{byte(v), byte(v >> 8)})
}

// u24 writes the low 24 bits of v little-endian.
func (w *writer) u24(v uint32) error {
	return w.raw([]byte{byte(v), byte(v >> 8), byte(v >> 16)})
}

// u32 writes a little-endian 32-bit value.
func (w *writer) u32(v uint32) error {
	return w.raw([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// u64 writes a little-endian 64-bit value.
func (w *writer) u64(v uint64) error {
	return w.raw([]byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
		byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
	})
}

// str writes a null-terminated string.
func (w *writer) str(s string) error {
	if err := w.raw([]byte(s)); err != nil {
		return err
	}

	return w.u8(0)
}
