// Package inject implements the Glyph Injector: given a Bundle, it
// rewrites loca (TrueType) or CFF CharStrings INDEX offsets, copies glyph
// bytes into the glyph region, fixes metrics, and drives the Cmap Manager
// to expose the new glyphs.
package inject

import (
	"github.com/Shea690901/TachyFont/binary"
	"github.com/Shea690901/TachyFont/tferr"
)

// BundleFlags is the bitmask carried in a Bundle's header.
type BundleFlags uint16

const (
	HasHmtx BundleFlags = 1 << 0
	HasVmtx BundleFlags = 1 << 1
	HasCFF  BundleFlags = 1 << 2
)

// BundleRecord is one glyph delivered by the backend.
type BundleRecord struct {
	GlyphID uint16
	Hmtx    *uint16
	Vmtx    *uint16
	Offset  uint32
	Length  uint16
	Bytes   []byte
}

// Bundle is a decoded backend response (spec.md §3, §6).
type Bundle struct {
	Flags      BundleFlags
	GlyphCount uint16
	Records    []BundleRecord
}

// DecodeBundle parses the wire format:
//
//	u16 flags; u16 glyphCount;
//	repeat glyphCount: { u16 glyphId; [u16 hmtx]; [u16 vmtx]; u32 offset; u16 length; u8 bytes[length] }
func DecodeBundle(data []byte) (*Bundle, error) {
	e := binary.NewEditor(data)

	flags, err := e.GetUint16()
	if err != nil {
		return nil, tferr.CorruptFont("bundle: reading flags: %v", err)
	}
	count, err := e.GetUint16()
	if err != nil {
		return nil, tferr.CorruptFont("bundle: reading glyphCount: %v", err)
	}

	b := &Bundle{Flags: BundleFlags(flags), GlyphCount: count}
	b.Records = make([]BundleRecord, count)

	for i := 0; i < int(count); i++ {
		var rec BundleRecord

		gid, err := e.GetUint16()
		if err != nil {
			return nil, tferr.CorruptFont("bundle: record %d: reading glyphId: %v", i, err)
		}
		rec.GlyphID = gid

		if b.Flags&HasHmtx != 0 {
			v, err := e.GetUint16()
			if err != nil {
				return nil, tferr.CorruptFont("bundle: record %d: reading hmtx: %v", i, err)
			}
			rec.Hmtx = &v
		}
		if b.Flags&HasVmtx != 0 {
			v, err := e.GetUint16()
			if err != nil {
				return nil, tferr.CorruptFont("bundle: record %d: reading vmtx: %v", i, err)
			}
			rec.Vmtx = &v
		}

		offset, err := e.GetUint32()
		if err != nil {
			return nil, tferr.CorruptFont("bundle: record %d: reading offset: %v", i, err)
		}
		rec.Offset = offset

		length, err := e.GetUint16()
		if err != nil {
			return nil, tferr.CorruptFont("bundle: record %d: reading length: %v", i, err)
		}
		rec.Length = length

		if length > 0 {
			bytes, err := e.GetBytes(int(length))
			if err != nil {
				return nil, tferr.CorruptFont("bundle: record %d: reading %d glyph bytes: %v", i, length, err)
			}
			rec.Bytes = bytes
		}

		b.Records[i] = rec
	}

	return b, nil
}

// EncodeBundle serializes a Bundle back to wire format. Not used by the
// runtime engine (the backend owns encoding) but exists so tests can build
// fixtures without hand-rolling the layout, mirroring header.Encode.
func EncodeBundle(b *Bundle) []byte {
	buf := make([]byte, 0, 64)
	putU16 := func(v uint16) { buf = append(buf, byte(v>>8), byte(v)) }
	putU32 := func(v uint32) { buf = append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }

	putU16(uint16(b.Flags))
	putU16(uint16(len(b.Records)))
	for _, rec := range b.Records {
		putU16(rec.GlyphID)
		if b.Flags&HasHmtx != 0 && rec.Hmtx != nil {
			putU16(*rec.Hmtx)
		}
		if b.Flags&HasVmtx != 0 && rec.Vmtx != nil {
			putU16(*rec.Vmtx)
		}
		putU32(rec.Offset)
		putU16(rec.Length)
		buf = append(buf, rec.Bytes...)
	}
	return buf
}
