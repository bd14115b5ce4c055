package vpk

import (
	"bytes"
	"errors"
	"testing"
)

// TestReader_Primitives verifies little-endian decoding and offset tracking.
func TestReader_Primitives(t *testing.T) {
	src := []byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06,
		0x07, 0x08, 0x09, 0x0A,
		0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10, 0x11, 0x12,
	}
	r := newReader(bytes.NewReader(src), 0)

	if v, err := r.u8(); err != nil || v != 0x01 {
		t.Fatalf("u8: got %#x, err %v", v, err)
	}
	if v, err := r.u16(); err != nil || v != 0x0302 {
		t.Fatalf("u16: got %#x, err %v", v, err)
	}
	if v, err := r.u24(); err != nil || v != 0x060504 {
		t.Fatalf("u24: got %#x, err %v", v, err)
	}
	if v, err := r.u32(); err != nil || v != 0x0A090807 {
		t.Fatalf("u32: got %#x, err %v", v, err)
	}
	if v, err := r.u64(); err != nil || v != 0x1211100F0E0D0C0B {
		t.Fatalf("u64: got %#x, err %v", v, err)
	}
	if r.offset() != int64(len(src)) {
		t.Errorf("offset: got %d, want %d", r.offset(), len(src))
	}
}

// TestReader_Str verifies null-terminated string decoding and UTF-8 validation.
func TestReader_Str(t *testing.T) {
	r := newReader(bytes.NewReader([]byte("hello\x00\x00\xff\xfe\x00")), 0)

	s, err := r.str()
	if err != nil || s != "hello" {
		t.Fatalf("str: got %q, err %v", s, err)
	}
	if r.offset() != 6 {
		t.Errorf("offset after str: got %d, want 6", r.offset())
	}

	s, err = r.str()
	if err != nil || s != "" {
		t.Fatalf("empty str: got %q, err %v", s, err)
	}

	if _, err := r.str(); !errors.Is(err, ErrInvalidString) {
		t.Fatalf("invalid UTF-8: got %v, want ErrInvalidString", err)
	}
}

// TestReader_Bound verifies the exhausted and overran reports of a bounded region.
func TestReader_Bound(t *testing.T) {
	r := newReader(bytes.NewReader(make([]byte, 16)), 0)
	r.bound(4)

	if r.exhausted() {
		t.Fatal("exhausted before reading")
	}
	if _, err := r.u32(); err != nil {
		t.Fatal(err)
	}
	if !r.exhausted() {
		t.Error("not exhausted at bound")
	}
	if r.overran() {
		t.Error("overran at exact bound")
	}
	if _, err := r.u8(); err != nil {
		t.Fatal(err)
	}
	if !r.overran() {
		t.Error("not overran past bound")
	}
}

// TestWriter_RoundTrip verifies the writer's encoding decodes back unchanged.
func TestWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := newWriter(&buf)

	if err := w.u8(0x7F); err != nil {
		t.Fatal(err)
	}
	if err := w.u16(0xBEEF); err != nil {
		t.Fatal(err)
	}
	if err := w.u24(0xC0FFEE); err != nil {
		t.Fatal(err)
	}
	if err := w.u32(0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	if err := w.u64(0x0102030405060708); err != nil {
		t.Fatal(err)
	}
	if err := w.str("pak"); err != nil {
		t.Fatal(err)
	}
	if err := w.flush(); err != nil {
		t.Fatal(err)
	}

	r := newReader(bytes.NewReader(buf.Bytes()), 0)
	if v, _ := r.u8(); v != 0x7F {
		t.Errorf("u8: got %#x", v)
	}
	if v, _ := r.u16(); v != 0xBEEF {
		t.Errorf("u16: got %#x", v)
	}
	if v, _ := r.u24(); v != 0xC0FFEE {
		t.Errorf("u24: got %#x", v)
	}
	if v, _ := r.u32(); v != 0xDEADBEEF {
		t.Errorf("u32: got %#x", v)
	}
	if v, _ := r.u64(); v != 0x0102030405060708 {
		t.Errorf("u64: got %#x", v)
	}
	if s, _ := r.str(); s != "pak" {
		t.Errorf("str: got %q", s)
	}
	if w.offset() != r.offset() {
		t.Errorf("offsets differ: writer %d reader %d", w.offset(), r.offset())
	}
}
