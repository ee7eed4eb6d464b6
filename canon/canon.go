// Package canon implements the canonical binary serialization shared by fingerprinting, the
// ASCII wire codec, and the on-disk database: little-endian integers, u32-length-prefixed
// variable-length byte strings, and fixed-size images for scalars and points. It is the one
// encoding every other serialization in this module builds on.
package canon

import (
	"encoding/binary"
	"fmt"
)

// Writer accumulates a canonical byte image.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated image.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(b byte) {
	w.buf = append(w.buf, b)
}

// WriteU32 appends n as 4 little-endian bytes.
func (w *Writer) WriteU32(n uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], n)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteI64 appends n as 8 little-endian bytes.
func (w *Writer) WriteI64(n int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(n))
	w.buf = append(w.buf, tmp[:]...)
}

// WriteFixed appends b verbatim, with no length prefix. Use it only for fields whose length is
// already fixed and known to the reader (32-byte scalar and point images).
func (w *Writer) WriteFixed(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteBytes appends a u32_le length prefix followed by b.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteU32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteString appends a u32_le length prefix followed by s's UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

// Reader consumes a canonical byte image produced by Writer, in order.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining reports how many unread bytes remain.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// AtEnd reports whether every byte has been consumed.
func (r *Reader) AtEnd() bool {
	return r.pos == len(r.buf)
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("canon: unexpected end of input wanting %d bytes, have %d", n, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU32 reads 4 little-endian bytes.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI64 reads 8 little-endian bytes.
func (r *Reader) ReadI64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// ReadFixed reads exactly n bytes verbatim, with no length prefix.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadBytes reads a u32_le length prefix followed by that many bytes.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// ReadString reads a u32_le length prefix followed by that many UTF-8 bytes.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
