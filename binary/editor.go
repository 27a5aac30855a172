// Package binary provides a bounds-checked, big-endian cursor over a
// mutable byte buffer, with OpenType-aware helpers for editing loca/CFF
// glyph-offset arrays and hmtx/vmtx side bearings in place.
//
// The cursor idiom (seek/tell/typed getters, a position-tagged error
// method) follows seehuhn.de/go/pdf's sfnt/parser.Parser, extended here
// from read-only to read-write because the incremental font engine patches
// a live buffer rather than streaming a file.
package binary

import (
	"github.com/Shea690901/TachyFont/tferr"
)

// Editor is a stateful cursor over a mutable byte buffer.
type Editor struct {
	buf []byte
	pos int
}

// NewEditor wraps buf. The buffer is not copied; all writes through the
// Editor mutate buf in place.
func NewEditor(buf []byte) *Editor {
	return &Editor{buf: buf}
}

// Bytes returns the underlying buffer.
func (e *Editor) Bytes() []byte { return e.buf }

// Len returns the length of the underlying buffer.
func (e *Editor) Len() int { return len(e.buf) }

// Tell returns the current cursor position.
func (e *Editor) Tell() int { return e.pos }

// Seek moves the cursor to an absolute position.
func (e *Editor) Seek(abs int) error {
	if abs < 0 || abs > len(e.buf) {
		return tferr.CorruptFont("seek to %d out of range [0, %d]", abs, len(e.buf))
	}
	e.pos = abs
	return nil
}

// Skip advances the cursor by n bytes (n may be negative).
func (e *Editor) Skip(n int) error {
	return e.Seek(e.pos + n)
}

func (e *Editor) checkRange(start, n int) error {
	if start < 0 || n < 0 || start+n > len(e.buf) {
		return tferr.CorruptFont("access [%d, %d) out of range [0, %d)", start, start+n, len(e.buf))
	}
	return nil
}

// --- unsigned getters/setters ---

// GetUint8 reads a uint8 at the current position and advances the cursor.
func (e *Editor) GetUint8() (uint8, error) {
	if err := e.checkRange(e.pos, 1); err != nil {
		return 0, err
	}
	v := e.buf[e.pos]
	e.pos++
	return v, nil
}

// SetUint8 writes a uint8 at the current position and advances the cursor.
func (e *Editor) SetUint8(v uint8) error {
	if err := e.checkRange(e.pos, 1); err != nil {
		return err
	}
	e.buf[e.pos] = v
	e.pos++
	return nil
}

// GetUint16 reads a big-endian uint16 at the current position.
func (e *Editor) GetUint16() (uint16, error) {
	if err := e.checkRange(e.pos, 2); err != nil {
		return 0, err
	}
	v := uint16(e.buf[e.pos])<<8 | uint16(e.buf[e.pos+1])
	e.pos += 2
	return v, nil
}

// SetUint16 writes a big-endian uint16 at the current position.
func (e *Editor) SetUint16(v uint16) error {
	if err := e.checkRange(e.pos, 2); err != nil {
		return err
	}
	e.buf[e.pos] = byte(v >> 8)
	e.buf[e.pos+1] = byte(v)
	e.pos += 2
	return nil
}

// GetUint32 reads a big-endian uint32 at the current position.
func (e *Editor) GetUint32() (uint32, error) {
	if err := e.checkRange(e.pos, 4); err != nil {
		return 0, err
	}
	v := uint32(e.buf[e.pos])<<24 | uint32(e.buf[e.pos+1])<<16 |
		uint32(e.buf[e.pos+2])<<8 | uint32(e.buf[e.pos+3])
	e.pos += 4
	return v, nil
}

// SetUint32 writes a big-endian uint32 at the current position.
func (e *Editor) SetUint32(v uint32) error {
	if err := e.checkRange(e.pos, 4); err != nil {
		return err
	}
	e.buf[e.pos] = byte(v >> 24)
	e.buf[e.pos+1] = byte(v >> 16)
	e.buf[e.pos+2] = byte(v >> 8)
	e.buf[e.pos+3] = byte(v)
	e.pos += 4
	return nil
}

// --- signed getters/setters ---

// GetInt8 reads a signed int8 at the current position.
func (e *Editor) GetInt8() (int8, error) {
	v, err := e.GetUint8()
	return int8(v), err
}

// SetInt8 writes a signed int8 at the current position.
func (e *Editor) SetInt8(v int8) error {
	return e.SetUint8(uint8(v))
}

// GetInt16 reads a signed big-endian int16 at the current position.
func (e *Editor) GetInt16() (int16, error) {
	v, err := e.GetUint16()
	return int16(v), err
}

// SetInt16 writes a signed big-endian int16 at the current position.
func (e *Editor) SetInt16(v int16) error {
	return e.SetUint16(uint16(v))
}

// GetInt32 reads a signed big-endian int32 at the current position.
func (e *Editor) GetInt32() (int32, error) {
	v, err := e.GetUint32()
	return int32(v), err
}

// SetInt32 writes a signed big-endian int32 at the current position.
func (e *Editor) SetInt32(v int32) error {
	return e.SetUint32(uint32(v))
}

// --- array helpers ---

// GetBytes returns a copy of n bytes at the current position and advances
// the cursor. The returned slice does not alias the underlying buffer.
func (e *Editor) GetBytes(n int) ([]byte, error) {
	if err := e.checkRange(e.pos, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, e.buf[e.pos:e.pos+n])
	e.pos += n
	return out, nil
}

// SetBytes writes data at the current position and advances the cursor.
func (e *Editor) SetBytes(data []byte) error {
	if err := e.checkRange(e.pos, len(data)); err != nil {
		return err
	}
	copy(e.buf[e.pos:], data)
	e.pos += len(data)
	return nil
}

// PeekUint32At reads a big-endian uint32 at an absolute offset without
// moving the cursor.
func (e *Editor) PeekUint32At(offset int) (uint32, error) {
	if err := e.checkRange(offset, 4); err != nil {
		return 0, err
	}
	return uint32(e.buf[offset])<<24 | uint32(e.buf[offset+1])<<16 |
		uint32(e.buf[offset+2])<<8 | uint32(e.buf[offset+3]), nil
}

// --- OpenType-aware helpers ---

// GetGlyphDataOffset reads entry glyphID from a loca-style offset table
// (TrueType) or a CharStrings-style offset array (CFF, offsetSize == 4 and
// values not pre-divided), starting at tableOffset. offsetSize is 2 for
// short loca (values are word-divided) or 4 for long loca / CFF offsets.
func (e *Editor) GetGlyphDataOffset(tableOffset, offsetSize, glyphID int) (uint32, error) {
	switch offsetSize {
	case 2:
		pos := tableOffset + 2*glyphID
		if err := e.checkRange(pos, 2); err != nil {
			return 0, err
		}
		v := uint16(e.buf[pos])<<8 | uint16(e.buf[pos+1])
		return uint32(v), nil
	case 4:
		pos := tableOffset + 4*glyphID
		if err := e.checkRange(pos, 4); err != nil {
			return 0, err
		}
		return uint32(e.buf[pos])<<24 | uint32(e.buf[pos+1])<<16 |
			uint32(e.buf[pos+2])<<8 | uint32(e.buf[pos+3]), nil
	default:
		return 0, tferr.CorruptFont("unsupported offset size %d", offsetSize)
	}
}

// SetGlyphDataOffset writes entry glyphID of a loca-style or CharStrings-
// style offset table. See GetGlyphDataOffset for offsetSize semantics.
func (e *Editor) SetGlyphDataOffset(tableOffset, offsetSize, glyphID int, value uint32) error {
	switch offsetSize {
	case 2:
		pos := tableOffset + 2*glyphID
		if err := e.checkRange(pos, 2); err != nil {
			return err
		}
		if value > 0xFFFF {
			return tferr.CorruptFont("short loca offset %d overflows 16 bits", value)
		}
		e.buf[pos] = byte(value >> 8)
		e.buf[pos+1] = byte(value)
		return nil
	case 4:
		pos := tableOffset + 4*glyphID
		if err := e.checkRange(pos, 4); err != nil {
			return err
		}
		e.buf[pos] = byte(value >> 24)
		e.buf[pos+1] = byte(value >> 16)
		e.buf[pos+2] = byte(value >> 8)
		e.buf[pos+3] = byte(value)
		return nil
	default:
		return tferr.CorruptFont("unsupported offset size %d", offsetSize)
	}
}

// SetMtxSideBearing writes the 16-bit side bearing for glyphID into an
// hmtx/vmtx table at tableOffset. Glyphs below longMetricCount have a full
// 4-byte (advance, side-bearing) record; glyphs at or beyond it share the
// final advance width and have only a 2-byte side-bearing record.
func (e *Editor) SetMtxSideBearing(tableOffset, longMetricCount, glyphID int, value int16) error {
	var pos int
	if glyphID < longMetricCount {
		pos = tableOffset + 4*glyphID + 2
	} else {
		pos = tableOffset + 4*longMetricCount + 2*(glyphID-longMetricCount)
	}
	if err := e.checkRange(pos, 2); err != nil {
		return err
	}
	e.buf[pos] = byte(uint16(value) >> 8)
	e.buf[pos+1] = byte(uint16(value))
	return nil
}
