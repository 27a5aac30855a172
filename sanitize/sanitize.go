// Package sanitize installs sentinel glyphs into a freshly RLE-expanded
// base so that OTS (OpenType Sanitizer) accepts a font whose glyph table
// is mostly empty. Every LOCA_BLOCK_SIZE-th TrueType glyph slot, or every
// collapsed CFF CharStrings entry, gets the shortest possible valid glyph
// body instead of zero bytes.
//
// Table-walk idiom (binary.Editor cursor, glyph-id indexed offset arrays)
// follows the same OpenType table layout seehuhn.de/go/pdf's
// sfnt/glyf.Outlines and font/cff index codec operate on.
package sanitize

import (
	"github.com/sirupsen/logrus"

	"github.com/Shea690901/TachyFont/binary"
	"github.com/Shea690901/TachyFont/header"
)

// LocaBlockSize is the spacing between TrueType sentinel glyphs.
const LocaBlockSize = 64

// cffEndchar is the CFF Type 2 charstring "endchar" operator, the shortest
// possible valid charstring.
const cffEndchar = byte(14)

// Sanitize walks buf's glyph table according to fi and installs sentinel
// glyphs, per spec.md §4.3. It returns only an error and marks nothing
// dirty itself; after a successful return the caller marks the base dirty
// in its PersistState (header itself carries no dirty bit, per the design
// note in spec.md §9).
func Sanitize(log *logrus.Entry, fi *header.FileInfo, buf []byte) error {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	e := binary.NewEditor(buf)
	if fi.IsTTF {
		return sanitizeTrueType(log, e, fi)
	}
	return sanitizeCFF(log, e, fi)
}

func sanitizeTrueType(log *logrus.Entry, e *binary.Editor, fi *header.FileInfo) error {
	locaOffset := int(fi.GlyphOffset)
	offsetSize := int(fi.OffsetSize)
	offsetDivisor := uint32(1)
	if offsetSize == 2 {
		offsetDivisor = 2
	}
	count := 0

	for gid := 0; gid < int(fi.NumGlyphs); gid += LocaBlockSize {
		start, err := e.GetGlyphDataOffset(locaOffset, offsetSize, gid)
		if err != nil {
			return err
		}
		end, err := e.GetGlyphDataOffset(locaOffset, offsetSize, gid+1)
		if err != nil {
			return err
		}
		size := int(end) - int(start)
		if size == 0 {
			continue
		}

		pos := int(fi.GlyphDataOffset) + int(start*offsetDivisor)
		if err := e.Seek(pos); err != nil {
			return err
		}
		if err := e.SetInt16(-1); err != nil {
			return err
		}
		count++
	}

	log.WithFields(logrus.Fields{
		"component": "sanitize",
		"kind":      "truetype",
		"sentinels": count,
	}).Debug("installed sentinel glyphs")
	return nil
}

func sanitizeCFF(log *logrus.Entry, e *binary.Editor, fi *header.FileInfo) error {
	csOffset := int(fi.GlyphOffset)
	numGlyphs := int(fi.NumGlyphs)

	delta := uint32(0)
	prev, err := e.GetGlyphDataOffset(csOffset, 4, 0)
	if err != nil {
		return err
	}
	count := 0

	for gid := 1; gid <= numGlyphs; gid++ {
		cur, err := e.GetGlyphDataOffset(csOffset, 4, gid)
		if err != nil {
			return err
		}

		newCur := cur + delta
		if newCur == prev {
			// collapsed entry: bump by one and write an endchar there.
			newCur = prev + 1
			delta++

			pos := int(fi.GlyphDataOffset) + int(prev)
			if err := e.Seek(pos); err != nil {
				return err
			}
			if err := e.SetUint8(cffEndchar); err != nil {
				return err
			}
			count++
		}

		if delta != 0 {
			if err := e.SetGlyphDataOffset(csOffset, 4, gid, newCur); err != nil {
				return err
			}
		}
		prev = newCur
	}

	log.WithFields(logrus.Fields{
		"component": "sanitize",
		"kind":      "cff",
		"sentinels": count,
	}).Debug("installed sentinel charstrings")
	return nil
}
