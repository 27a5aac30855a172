package inject

import (
	"errors"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/Shea690901/TachyFont/binary"
	"github.com/Shea690901/TachyFont/cmap"
	"github.com/Shea690901/TachyFont/header"
	"github.com/Shea690901/TachyFont/tferr"
)

// Injector mutates a base buffer in place as bundles of new glyphs arrive.
type Injector struct {
	fi  *header.FileInfo
	ed  *binary.Editor
	cm  *cmap.Manager
	log *logrus.Entry
}

// New creates an Injector bound to buf (mutated in place).
func New(fi *header.FileInfo, buf []byte, log *logrus.Entry) (*Injector, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	cm, err := cmap.New(fi, buf, log)
	if err != nil {
		return nil, err
	}
	return &Injector{fi: fi, ed: binary.NewEditor(buf), cm: cm, log: log}, nil
}

// Inject splices every record of bundle into the base buffer, then
// activates the cmap for every (glyphId, codePoint) pair recorded in
// glyphToCodeMap, per spec.md §4.5. Records are processed in the order
// they appear in bundle.Records; when two records affect overlapping
// offset ranges the later one wins (defensive — the build step guarantees
// non-overlapping allocations).
//
// A *tferr.MappingMissError from cmap activation for an individual code
// point is logged and skipped rather than aborting the whole call, since
// spec.md §7 classifies MappingMiss as non-fatal. Any other error aborts
// immediately.
func (inj *Injector) Inject(bundle *Bundle, mapping cmap.Mapping, glyphToCodeMap map[uint16]rune) error {
	for _, rec := range bundle.Records {
		if err := inj.injectRecord(bundle.Flags, rec); err != nil {
			return err
		}
	}

	codePoints := make([]rune, 0, len(glyphToCodeMap))
	for _, cp := range glyphToCodeMap {
		codePoints = append(codePoints, cp)
	}
	sort.Slice(codePoints, func(i, j int) bool { return codePoints[i] < codePoints[j] })

	for _, cp := range codePoints {
		if err := inj.cm.ActivateCmap12(mapping, cp); err != nil {
			if !inj.logAndSkipMappingMiss(cp, err) {
				return err
			}
		}
	}
	for _, cp := range codePoints {
		if err := inj.cm.ActivateCmap4(mapping, cp); err != nil {
			if !inj.logAndSkipMappingMiss(cp, err) {
				return err
			}
		}
	}

	inj.log.WithFields(logrus.Fields{
		"component": "inject",
		"glyphs":    len(bundle.Records),
		"activated": len(codePoints),
	}).Debug("injected bundle")
	return nil
}

func (inj *Injector) logAndSkipMappingMiss(cp rune, err error) bool {
	var mmErr *tferr.MappingMissError
	if !errors.As(err, &mmErr) {
		return false
	}
	inj.log.WithFields(logrus.Fields{
		"component": "inject",
		"codePoint": cp,
	}).Warn("glyph delivered with no cmap mapping; bytes injected, cmap activation skipped")
	return true
}

func (inj *Injector) injectRecord(flags BundleFlags, rec BundleRecord) error {
	if flags&HasHmtx != 0 && rec.Hmtx != nil {
		if err := inj.ed.SetMtxSideBearing(
			int(inj.fi.HmtxOffset), int(inj.fi.HmetricCount), int(rec.GlyphID), int16(*rec.Hmtx)); err != nil {
			return err
		}
	}
	if flags&HasVmtx != 0 && rec.Vmtx != nil {
		if err := inj.ed.SetMtxSideBearing(
			int(inj.fi.VmtxOffset), int(inj.fi.VmetricCount), int(rec.GlyphID), int16(*rec.Vmtx)); err != nil {
			return err
		}
	}

	if inj.fi.IsTTF {
		if err := inj.injectTrueType(rec); err != nil {
			return err
		}
	} else {
		if err := inj.injectCFF(rec); err != nil {
			return err
		}
	}

	if rec.Length > 0 {
		pos := int(inj.fi.GlyphDataOffset) + int(rec.Offset)
		if err := inj.ed.Seek(pos); err != nil {
			return err
		}
		if err := inj.ed.SetBytes(rec.Bytes); err != nil {
			return err
		}
	}

	return nil
}

func (inj *Injector) injectTrueType(rec BundleRecord) error {
	fi := inj.fi
	id := int(rec.GlyphID)
	offset, length := rec.Offset, uint32(rec.Length)
	tableOffset := int(fi.GlyphOffset)
	offsetSize := int(fi.OffsetSize)

	offsetDivisor := uint32(1)
	if fi.OffsetSize == 2 {
		offsetDivisor = 2
	}

	if err := inj.ed.SetGlyphDataOffset(tableOffset, offsetSize, id, offset/offsetDivisor); err != nil {
		return err
	}

	oldNextOne, err := inj.ed.GetGlyphDataOffset(tableOffset, offsetSize, id+1)
	if err != nil {
		return err
	}
	if err := inj.ed.SetGlyphDataOffset(tableOffset, offsetSize, id+1, (offset+length)/offsetDivisor); err != nil {
		return err
	}

	// backward fixup
	j := id
	for j-1 >= 0 {
		prev, err := inj.ed.GetGlyphDataOffset(tableOffset, offsetSize, j-1)
		if err != nil {
			return err
		}
		if prev*offsetDivisor <= offset {
			break
		}
		if err := inj.ed.SetGlyphDataOffset(tableOffset, offsetSize, j-1, offset/offsetDivisor); err != nil {
			return err
		}
		j--
	}

	// forward fixup
	if oldNextOne*offsetDivisor != offset+length && id+1 < int(fi.NumGlyphs) {
		pos := int(fi.GlyphDataOffset) + int(offset+length)
		if length > 0 {
			if err := inj.ed.Seek(pos); err != nil {
				return err
			}
			if err := inj.ed.SetInt16(-1); err != nil {
				return err
			}
		} else {
			w1, err := inj.ed.PeekUint32At(pos)
			if err != nil {
				return err
			}
			w2, err := inj.ed.PeekUint32At(pos + 4)
			if err != nil {
				return err
			}
			if w1 == 0 && w2 == 0 {
				if err := inj.ed.Seek(pos); err != nil {
					return err
				}
				if err := inj.ed.SetInt16(-1); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (inj *Injector) injectCFF(rec BundleRecord) error {
	fi := inj.fi
	id := int(rec.GlyphID)
	offset, length := rec.Offset, uint32(rec.Length)
	tableOffset := int(fi.GlyphOffset)

	if err := inj.ed.SetGlyphDataOffset(tableOffset, 4, id, offset); err != nil {
		return err
	}

	oldNextOne, err := inj.ed.GetGlyphDataOffset(tableOffset, 4, id+1)
	if err != nil {
		return err
	}
	current := offset + length
	if err := inj.ed.SetGlyphDataOffset(tableOffset, 4, id+1, current); err != nil {
		return err
	}

	if oldNextOne < current && id+1 < int(fi.NumGlyphs) {
		pos := int(fi.GlyphDataOffset) + int(current)
		if err := inj.ed.Seek(pos); err != nil {
			return err
		}
		if err := inj.ed.SetUint8(14); err != nil {
			return err
		}
	}

	nextID := id + 2
	for nextID <= int(fi.NumGlyphs) {
		csNext, err := inj.ed.GetGlyphDataOffset(tableOffset, 4, nextID)
		if err != nil {
			return err
		}
		if csNext > current {
			break
		}

		oldCurrent := current
		current++
		if err := inj.ed.SetGlyphDataOffset(tableOffset, 4, nextID, current); err != nil {
			return err
		}
		if nextID < int(fi.NumGlyphs) {
			pos := int(fi.GlyphDataOffset) + int(oldCurrent)
			if err := inj.ed.Seek(pos); err != nil {
				return err
			}
			if err := inj.ed.SetUint8(14); err != nil {
				return err
			}
		}
		nextID++
	}

	return nil
}
