// Package header parses the TachyFont header prefix: a build-tool-defined
// preamble prepended to every RLE-compressed base and to every base
// persisted to the store. The header is input-only — parsed once at load,
// consulted by every later table write, never mutated. PersistState (base
// dirty / char list dirty) is deliberately kept out of FileInfo so the
// header stays a pure parse result, per the design note in spec.md §9.
//
// The parsing idiom (bounds-checked big-endian cursor, position-tagged
// errors) follows seehuhn.de/go/pdf's sfnt/parser.Parser.
package header

import (
	"github.com/Shea690901/TachyFont/binary"
	"github.com/Shea690901/TachyFont/tferr"
)

// Magic identifies a TachyFont base header.
const Magic = uint32(0x54464248) // "TFBH"

const version1 = uint16(1)

// Cmap4Region locates the cmap format 4 subtable within the base buffer.
type Cmap4Region struct {
	Offset uint32
	Length uint32
}

// Cmap12Region locates the cmap format 12 subtable within the base buffer.
type Cmap12Region struct {
	Offset  uint32
	NGroups uint32
}

// CharsetFmtRegion locates the CFF charset, carrying the build step's
// opaque glyph-id-ordering segments (gos) alongside it. This engine does
// not interpret charset segments beyond carrying them through for
// completeness; only the CharStrings INDEX is patched on injection.
type CharsetFmtRegion struct {
	Offset   uint32
	GosType  uint8
	GosBytes []byte
}

// Cmap4CompactSeg is one authoritative, compact cmap4 segment produced by
// the build step.
type Cmap4CompactSeg struct {
	StartCode     uint16
	EndCode       uint16
	IDDelta       int16
	IDRangeOffset uint16
}

// Cmap12CompactSeg is one authoritative, compact cmap12 segment produced
// by the build step.
type Cmap12CompactSeg struct {
	StartCode    uint32
	Length       uint32
	StartGlyphID uint32
}

// CompactGOS holds the compact, authoritative cmap segment descriptors the
// build step emits alongside the font, plus the parallel glyphIdArray for
// cmap4 segments that use indirect glyph ids (IDRangeOffset != 0).
type CompactGOS struct {
	Cmap4        []Cmap4CompactSeg
	GlyphIDArray []uint16
	Cmap12       []Cmap12CompactSeg
}

// FileInfo is the parsed header prefix (spec.md §3 "File Info (Header)").
type FileInfo struct {
	HeaderSize      uint32
	IsTTF           bool
	GlyphOffset     uint32
	GlyphDataOffset uint32
	OffsetSize      uint8
	NumGlyphs       uint16
	HmtxOffset      uint32
	HmetricCount    uint16
	VmtxOffset      uint32
	VmetricCount    uint16

	Cmap4  *Cmap4Region
	Cmap12 *Cmap12Region

	CharsetFmt *CharsetFmtRegion

	CompactGOS CompactGOS

	// HasOneCharPerSeg is derived, not stored: true iff every cmap4
	// segment is a single code point with no indirect glyph id array,
	// and every cmap12 segment covers exactly one code point.
	HasOneCharPerSeg bool
}

const (
	flagIsTTF       uint16 = 1 << 0
	flagHasCmap4    uint16 = 1 << 1
	flagHasCmap12   uint16 = 1 << 2
	flagHasCharset  uint16 = 1 << 3
)

// Parse reads the header prefix starting at the beginning of data and
// returns the parsed FileInfo together with the number of bytes consumed
// (== FileInfo.HeaderSize). data must contain at least the header; any
// RLE-compressed or already-expanded font body may follow.
func Parse(data []byte) (*FileInfo, int, error) {
	e := binary.NewEditor(data)

	magic, err := e.GetUint32()
	if err != nil {
		return nil, 0, tferr.CorruptFont("reading header magic: %v", err)
	}
	if magic != Magic {
		return nil, 0, tferr.CorruptFont("bad header magic 0x%08X", magic)
	}

	ver, err := e.GetUint16()
	if err != nil {
		return nil, 0, tferr.CorruptFont("reading header version: %v", err)
	}
	if ver != version1 {
		return nil, 0, tferr.CorruptFont("unsupported header version %d", ver)
	}

	flags, err := e.GetUint16()
	if err != nil {
		return nil, 0, tferr.CorruptFont("reading header flags: %v", err)
	}

	fi := &FileInfo{IsTTF: flags&flagIsTTF != 0}

	fields := []*uint32{&fi.GlyphOffset, &fi.GlyphDataOffset}
	for _, f := range fields {
		v, err := e.GetUint32()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading header field: %v", err)
		}
		*f = v
	}

	offsetSize, err := e.GetUint8()
	if err != nil {
		return nil, 0, tferr.CorruptFont("reading offsetSize: %v", err)
	}
	if offsetSize != 2 && offsetSize != 4 {
		return nil, 0, tferr.CorruptFont("invalid offsetSize %d", offsetSize)
	}
	fi.OffsetSize = offsetSize

	numGlyphs, err := e.GetUint16()
	if err != nil {
		return nil, 0, tferr.CorruptFont("reading numGlyphs: %v", err)
	}
	fi.NumGlyphs = numGlyphs

	if fi.HmtxOffset, err = e.GetUint32(); err != nil {
		return nil, 0, tferr.CorruptFont("reading hmtxOffset: %v", err)
	}
	if fi.HmetricCount, err = e.GetUint16(); err != nil {
		return nil, 0, tferr.CorruptFont("reading hmetricCount: %v", err)
	}
	if fi.VmtxOffset, err = e.GetUint32(); err != nil {
		return nil, 0, tferr.CorruptFont("reading vmtxOffset: %v", err)
	}
	if fi.VmetricCount, err = e.GetUint16(); err != nil {
		return nil, 0, tferr.CorruptFont("reading vmetricCount: %v", err)
	}

	if flags&flagHasCmap4 != 0 {
		off, err := e.GetUint32()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading cmap4 offset: %v", err)
		}
		length, err := e.GetUint32()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading cmap4 length: %v", err)
		}
		fi.Cmap4 = &Cmap4Region{Offset: off, Length: length}
	}

	if flags&flagHasCmap12 != 0 {
		off, err := e.GetUint32()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading cmap12 offset: %v", err)
		}
		nGroups, err := e.GetUint32()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading cmap12 nGroups: %v", err)
		}
		fi.Cmap12 = &Cmap12Region{Offset: off, NGroups: nGroups}
	}

	if flags&flagHasCharset != 0 {
		off, err := e.GetUint32()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading charset offset: %v", err)
		}
		gosType, err := e.GetUint8()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading charset gos type: %v", err)
		}
		gosLen, err := e.GetUint32()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading charset gos length: %v", err)
		}
		gosBytes, err := e.GetBytes(int(gosLen))
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading charset gos bytes: %v", err)
		}
		fi.CharsetFmt = &CharsetFmtRegion{Offset: off, GosType: gosType, GosBytes: gosBytes}
	}

	cmap4Count, err := e.GetUint16()
	if err != nil {
		return nil, 0, tferr.CorruptFont("reading cmap4 compact segment count: %v", err)
	}
	cmap4Segs := make([]Cmap4CompactSeg, cmap4Count)
	for i := range cmap4Segs {
		var seg Cmap4CompactSeg
		v, err := e.GetUint16()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading cmap4 seg %d startCode: %v", i, err)
		}
		seg.StartCode = v
		if v, err = e.GetUint16(); err != nil {
			return nil, 0, tferr.CorruptFont("reading cmap4 seg %d endCode: %v", i, err)
		}
		seg.EndCode = v
		id, err := e.GetInt16()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading cmap4 seg %d idDelta: %v", i, err)
		}
		seg.IDDelta = id
		if v, err = e.GetUint16(); err != nil {
			return nil, 0, tferr.CorruptFont("reading cmap4 seg %d idRangeOffset: %v", i, err)
		}
		seg.IDRangeOffset = v
		cmap4Segs[i] = seg
	}
	fi.CompactGOS.Cmap4 = cmap4Segs

	glyphIDArrayLen, err := e.GetUint16()
	if err != nil {
		return nil, 0, tferr.CorruptFont("reading glyphIdArray length: %v", err)
	}
	glyphIDArray := make([]uint16, glyphIDArrayLen)
	for i := range glyphIDArray {
		v, err := e.GetUint16()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading glyphIdArray[%d]: %v", i, err)
		}
		glyphIDArray[i] = v
	}
	fi.CompactGOS.GlyphIDArray = glyphIDArray

	cmap12Count, err := e.GetUint32()
	if err != nil {
		return nil, 0, tferr.CorruptFont("reading cmap12 compact segment count: %v", err)
	}
	cmap12Segs := make([]Cmap12CompactSeg, cmap12Count)
	for i := range cmap12Segs {
		var seg Cmap12CompactSeg
		v, err := e.GetUint32()
		if err != nil {
			return nil, 0, tferr.CorruptFont("reading cmap12 seg %d startCode: %v", i, err)
		}
		seg.StartCode = v
		if v, err = e.GetUint32(); err != nil {
			return nil, 0, tferr.CorruptFont("reading cmap12 seg %d length: %v", i, err)
		}
		seg.Length = v
		if v, err = e.GetUint32(); err != nil {
			return nil, 0, tferr.CorruptFont("reading cmap12 seg %d startGlyphId: %v", i, err)
		}
		seg.StartGlyphID = v
		cmap12Segs[i] = seg
	}
	fi.CompactGOS.Cmap12 = cmap12Segs

	fi.HeaderSize = uint32(e.Tell())
	fi.HasOneCharPerSeg = computeHasOneCharPerSeg(&fi.CompactGOS)

	return fi, e.Tell(), nil
}

func computeHasOneCharPerSeg(gos *CompactGOS) bool {
	for _, seg := range gos.Cmap4 {
		if seg.StartCode != seg.EndCode || seg.IDRangeOffset != 0 {
			return false
		}
	}
	for _, seg := range gos.Cmap12 {
		if seg.Length != 1 {
			return false
		}
	}
	return true
}
