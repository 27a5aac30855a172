// Package cmap writes, validates, and per-glyph activates entries in the
// base font's cmap format 4 and format 12 subtables.
//
// Subtable layout constants follow the OpenType cmap spec as decoded by
// seehuhn.de/go/pdf's sfnt/cmap.Decode (format dispatch, segment array
// shapes); this package specializes that general decode/encode idiom to
// the two formats the TachyFont base ever carries and to in-place
// patching rather than full re-encoding.
package cmap

import (
	"github.com/sirupsen/logrus"

	"github.com/Shea690901/TachyFont/binary"
	"github.com/Shea690901/TachyFont/header"
	"github.com/Shea690901/TachyFont/tferr"
)

// CharCmapInfo records how a single code point resolves into the base's
// cmap subtables. Provided by the build step's CmapMapping, never mutated
// by this engine.
type CharCmapInfo struct {
	CodePoint   rune
	GlyphID     uint16
	Format4Seg  *int // index into FileInfo.CompactGOS.Cmap4, nil if none
	Format12Seg *int // index into FileInfo.CompactGOS.Cmap12, nil if none
}

// Mapping is the build-step-provided codepoint -> CharCmapInfo table,
// loaded once per font and never mutated (spec.md §3 "Cmap Mapping").
type Mapping map[rune]CharCmapInfo

const (
	cmap12GroupSize  = 12
	cmap12HeaderSize = 16 // format,reserved,length,language,nGroups
)

// Manager mutates the cmap4/cmap12 subtables of a base buffer according to
// a FileInfo's compact segment descriptors.
type Manager struct {
	fi  *header.FileInfo
	ed  *binary.Editor
	log *logrus.Entry

	cmap4SegCount int
}

// New creates a Manager bound to buf (mutated in place) and fi.
func New(fi *header.FileInfo, buf []byte, log *logrus.Entry) (*Manager, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	m := &Manager{fi: fi, ed: binary.NewEditor(buf), log: log}

	if fi.Cmap4 != nil {
		segCount, err := m.readCmap4SegCount()
		if err != nil {
			return nil, err
		}
		if segCount != len(fi.CompactGOS.Cmap4) {
			return nil, tferr.CorruptFont(
				"cmap4 segCount %d disagrees with compact_gos.cmap4 length %d",
				segCount, len(fi.CompactGOS.Cmap4))
		}
		m.cmap4SegCount = segCount
	}

	return m, nil
}

func (m *Manager) readCmap4SegCount() (int, error) {
	segCountX2, err := m.peekUint16(int(m.fi.Cmap4.Offset) + 6)
	if err != nil {
		return 0, err
	}
	return int(segCountX2) / 2, nil
}

func (m *Manager) peekUint16(pos int) (uint16, error) {
	save := m.ed.Tell()
	if err := m.ed.Seek(pos); err != nil {
		return 0, err
	}
	v, err := m.ed.GetUint16()
	if err != nil {
		return 0, err
	}
	if err := m.ed.Seek(save); err != nil {
		return 0, err
	}
	return v, nil
}

// cmap4 field offsets, as absolute positions in the buffer (the subtable
// starts at fi.Cmap4.Offset), for a table with cmap4SegCount segments.
func (m *Manager) cmap4EndCodeOffset() int    { return int(m.fi.Cmap4.Offset) + 14 }
func (m *Manager) cmap4ReservedPadOffset() int {
	return m.cmap4EndCodeOffset() + 2*m.cmap4SegCount
}
func (m *Manager) cmap4StartCodeOffset() int { return m.cmap4ReservedPadOffset() + 2 }
func (m *Manager) cmap4IDDeltaOffset() int   { return m.cmap4StartCodeOffset() + 2*m.cmap4SegCount }
func (m *Manager) cmap4IDRangeOffsetOffset() int {
	return m.cmap4IDDeltaOffset() + 2*m.cmap4SegCount
}
func (m *Manager) cmap4GlyphIDArrayOffset() int {
	return m.cmap4IDRangeOffsetOffset() + 2*m.cmap4SegCount
}

// WriteCmap4 performs the initial, full overwrite of the cmap4 payload
// from fi.CompactGOS.Cmap4, per spec.md §4.4.1.
func (m *Manager) WriteCmap4() error {
	if m.fi.Cmap4 == nil {
		return nil
	}
	segs := m.fi.CompactGOS.Cmap4

	if err := m.ed.Seek(m.cmap4EndCodeOffset()); err != nil {
		return err
	}
	for _, seg := range segs {
		if err := m.ed.SetUint16(seg.EndCode); err != nil {
			return err
		}
	}

	if err := m.ed.Seek(m.cmap4ReservedPadOffset()); err != nil {
		return err
	}
	if err := m.ed.SetUint16(0); err != nil {
		return err
	}

	if err := m.ed.Seek(m.cmap4StartCodeOffset()); err != nil {
		return err
	}
	for _, seg := range segs {
		if err := m.ed.SetUint16(seg.StartCode); err != nil {
			return err
		}
	}

	if err := m.ed.Seek(m.cmap4IDDeltaOffset()); err != nil {
		return err
	}
	for _, seg := range segs {
		delta := seg.IDDelta
		if m.fi.HasOneCharPerSeg {
			delta = int16(uint16(0x10000-uint32(seg.StartCode)) & 0xFFFF)
		}
		if err := m.ed.SetInt16(delta); err != nil {
			return err
		}
	}

	if err := m.ed.Seek(m.cmap4IDRangeOffsetOffset()); err != nil {
		return err
	}
	for _, seg := range segs {
		if err := m.ed.SetUint16(seg.IDRangeOffset); err != nil {
			return err
		}
	}

	// glyphIdArray is written with the source array's own length, per the
	// Open Question in spec.md §9 resolved literally in DESIGN.md.
	if err := m.ed.Seek(m.cmap4GlyphIDArrayOffset()); err != nil {
		return err
	}
	for _, v := range m.fi.CompactGOS.GlyphIDArray {
		if err := m.ed.SetUint16(v); err != nil {
			return err
		}
	}

	m.log.WithFields(logrus.Fields{
		"component": "cmap",
		"table":     "cmap4",
		"segments":  len(segs),
	}).Debug("wrote initial cmap4 payload")
	return nil
}

func (m *Manager) cmap12GroupOffset(idx int) int {
	return int(m.fi.Cmap12.Offset) + cmap12HeaderSize + idx*cmap12GroupSize
}

// WriteCmap12 performs the initial, full overwrite of the cmap12 group
// array from fi.CompactGOS.Cmap12, per spec.md §4.4.1.
func (m *Manager) WriteCmap12() error {
	if m.fi.Cmap12 == nil {
		return nil
	}
	segs := m.fi.CompactGOS.Cmap12
	if uint32(len(segs)) != m.fi.Cmap12.NGroups {
		return tferr.CorruptFont(
			"cmap12 nGroups %d disagrees with compact_gos.cmap12 length %d",
			m.fi.Cmap12.NGroups, len(segs))
	}

	for i, seg := range segs {
		startGlyphID := seg.StartGlyphID
		if m.fi.HasOneCharPerSeg {
			startGlyphID = 0
		}
		endCode := seg.StartCode + seg.Length - 1

		if err := m.ed.Seek(m.cmap12GroupOffset(i)); err != nil {
			return err
		}
		if err := m.ed.SetUint32(seg.StartCode); err != nil {
			return err
		}
		if err := m.ed.SetUint32(endCode); err != nil {
			return err
		}
		if err := m.ed.SetUint32(startGlyphID); err != nil {
			return err
		}
	}

	m.log.WithFields(logrus.Fields{
		"component": "cmap",
		"table":     "cmap12",
		"segments":  len(segs),
	}).Debug("wrote initial cmap12 payload")
	return nil
}

// ActivateGlyph exposes the glyph for codePoint through the cmap, per
// spec.md §4.4.2. When fi.HasOneCharPerSeg is set, it returns a
// *tferr.MappingMissError (non-fatal; the caller should log and continue)
// if codePoint has no entry in mapping, and a *tferr.CorruptFontError if
// codePoint is in the BMP but has no format4Seg recorded (inconsistent
// build metadata). When HasOneCharPerSeg is clear it is a no-op and
// returns nil without consulting mapping.
func (m *Manager) ActivateGlyph(mapping Mapping, codePoint rune) error {
	if err := m.ActivateCmap12(mapping, codePoint); err != nil {
		return err
	}
	return m.ActivateCmap4(mapping, codePoint)
}

// ActivateCmap12 exposes codePoint's glyph through the cmap12 subtable
// only, per the format-12-then-format-4 ordering of spec.md §4.5's
// post-injection activation pass. When HasOneCharPerSeg is set, returns
// *tferr.MappingMissError if codePoint has no entry in mapping; otherwise
// it is a no-op.
func (m *Manager) ActivateCmap12(mapping Mapping, codePoint rune) error {
	if !m.fi.HasOneCharPerSeg {
		return nil
	}
	info, ok := mapping[codePoint]
	if !ok {
		return tferr.MappingMiss(codePoint)
	}
	if info.Format12Seg == nil || m.fi.Cmap12 == nil {
		return nil
	}

	seg := m.fi.CompactGOS.Cmap12[*info.Format12Seg]
	pos := m.cmap12GroupOffset(*info.Format12Seg) + 8
	if err := m.ed.Seek(pos); err != nil {
		return err
	}
	return m.ed.SetUint32(seg.StartGlyphID)
}

// ActivateCmap4 exposes codePoint's glyph through the cmap4 subtable only.
// When HasOneCharPerSeg is set, returns *tferr.MappingMissError if
// codePoint has no entry in mapping, and a *tferr.CorruptFontError if
// codePoint is in the BMP but has no format4Seg recorded (inconsistent
// build metadata); otherwise it is a no-op.
func (m *Manager) ActivateCmap4(mapping Mapping, codePoint rune) error {
	if !m.fi.HasOneCharPerSeg {
		// cmap is already fully populated from the build step; per-glyph
		// activation is a no-op, per spec.md §4.4.2.
		return nil
	}

	info, ok := mapping[codePoint]
	if !ok {
		return tferr.MappingMiss(codePoint)
	}

	if info.Format4Seg == nil {
		if codePoint <= 0xFFFF {
			return tferr.CorruptFont(
				"code point U+%04X has no cmap4 segment (inconsistent build metadata)", codePoint)
		}
		return nil // outside BMP: cmap4 cannot represent it, silently skip.
	}

	seg := m.fi.CompactGOS.Cmap4[*info.Format4Seg]
	pos := m.cmap4IDDeltaOffset() + 2*(*info.Format4Seg)
	if err := m.ed.Seek(pos); err != nil {
		return err
	}
	if err := m.ed.SetInt16(seg.IDDelta); err != nil {
		return err
	}

	m.log.WithFields(logrus.Fields{
		"component": "cmap",
		"codePoint": codePoint,
		"glyphID":   info.GlyphID,
	}).Debug("activated glyph")
	return nil
}
