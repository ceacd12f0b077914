// Copyright (C) 2024 The a2s Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wire implements the little-endian byte cursor used to encode
// and decode A2S wire primitives.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// A Buffer is a seekable, growable byte container with a read/write
// cursor over little-endian wire primitives.
//
// A zero Buffer is ready for writing. Use [NewReader] to read existing
// bytes.
type Buffer struct {
	b   []byte
	pos int
}

// NewReader returns a Buffer positioned at the start of b for reading.
// b is not copied; callers must not mutate it while the Buffer is in use.
func NewReader(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Len returns the number of bytes currently held.
func (buf *Buffer) Len() int { return len(buf.b) }

// Pos returns the current cursor position.
func (buf *Buffer) Pos() int { return buf.pos }

// Seek moves the cursor to an absolute offset.
func (buf *Buffer) Seek(pos int) {
	buf.pos = pos
}

// Remaining returns the number of unread bytes from the cursor to the end.
func (buf *Buffer) Remaining() int {
	n := len(buf.b) - buf.pos
	if n < 0 {
		return 0
	}
	return n
}

// Bytes returns the whole backing slice, ignoring the cursor.
func (buf *Buffer) Bytes() []byte { return buf.b }

// errShort is returned by the read methods when fewer bytes remain than
// the primitive requires.
type errShort struct {
	op   string
	want int
	have int
}

func (e *errShort) Error() string {
	return fmt.Sprintf("wire: %s: need %d bytes, have %d", e.op, e.want, e.have)
}

func (buf *Buffer) need(op string, n int) error {
	if buf.Remaining() < n {
		return &errShort{op: op, want: n, have: buf.Remaining()}
	}
	return nil
}

// WriteByte appends a single byte. It implements io.ByteWriter.
func (buf *Buffer) WriteByte(v byte) error {
	buf.b = append(buf.b, v)
	return nil
}

// WriteShort appends a little-endian int16.
func (buf *Buffer) WriteShort(v int16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], uint16(v))
	buf.b = append(buf.b, tmp[:]...)
}

// WriteLong appends a little-endian int32.
func (buf *Buffer) WriteLong(v int32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	buf.b = append(buf.b, tmp[:]...)
}

// WriteLongLong appends a little-endian uint64.
func (buf *Buffer) WriteLongLong(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.b = append(buf.b, tmp[:]...)
}

// WriteFloat appends a little-endian IEEE-754 float32.
func (buf *Buffer) WriteFloat(v float32) {
	buf.WriteLong(int32(math.Float32bits(v)))
}

// WriteString appends s followed by a single NUL terminator.
func (buf *Buffer) WriteString(s string) {
	buf.b = append(buf.b, s...)
	buf.b = append(buf.b, 0)
}

// ReadByte reads a single byte. It implements io.ByteReader.
func (buf *Buffer) ReadByte() (byte, error) {
	if err := buf.need("read_byte", 1); err != nil {
		return 0, err
	}
	v := buf.b[buf.pos]
	buf.pos++
	return v, nil
}

// ReadShort reads a little-endian int16.
func (buf *Buffer) ReadShort() (int16, error) {
	if err := buf.need("read_short", 2); err != nil {
		return 0, err
	}
	v := int16(binary.LittleEndian.Uint16(buf.b[buf.pos:]))
	buf.pos += 2
	return v, nil
}

// ReadLong reads a little-endian int32.
func (buf *Buffer) ReadLong() (int32, error) {
	if err := buf.need("read_long", 4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(buf.b[buf.pos:]))
	buf.pos += 4
	return v, nil
}

// ReadLongLong reads a little-endian uint64.
func (buf *Buffer) ReadLongLong() (uint64, error) {
	if err := buf.need("read_long_long", 8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(buf.b[buf.pos:])
	buf.pos += 8
	return v, nil
}

// ReadFloat reads a little-endian IEEE-754 float32.
func (buf *Buffer) ReadFloat() (float32, error) {
	v, err := buf.ReadLong()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

// ReadString reads bytes up to the next NUL terminator and advances past
// it, lossily decoding them as UTF-8 (invalid byte sequences are
// dropped, not reported as an error).
//
// If no terminator is found before the end of the buffer, ReadString
// returns everything from the cursor to the end and advances the cursor
// to the end; this tolerates servers that truncate a reply mid-string.
func (buf *Buffer) ReadString() string {
	rest := buf.b[buf.pos:]
	i := bytes.IndexByte(rest, 0)
	if i < 0 {
		buf.pos = len(buf.b)
		return lossyUTF8(rest)
	}
	s := lossyUTF8(rest[:i])
	buf.pos += i + 1
	return s
}

// lossyUTF8 decodes b as UTF-8, dropping invalid byte sequences rather
// than substituting the replacement character.
func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			b = b[1:]
			continue
		}
		out = append(out, b[:size]...)
		b = b[size:]
	}
	return string(out)
}
