package inject

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shea690901/TachyFont/binary"
	"github.com/Shea690901/TachyFont/cmap"
	"github.com/Shea690901/TachyFont/header"
)

func TestInjectTrueTypeBackwardAndForwardFixup(t *testing.T) {
	const tableOffset = 0
	const glyphDataOffset = 20
	buf := make([]byte, 64)
	e := binary.NewEditor(buf)

	// initial loca, in word units: glyph0's stale sentinel sits far ahead
	// at word 10 (byte 20), as if a LOCA_BLOCK_SIZE sentinel from an
	// earlier sanitize pass; glyphs 1-2 share its end, glyph3 trails off.
	initial := []uint32{10, 10, 10, 10, 12}
	for i, v := range initial {
		require.NoError(t, e.SetGlyphDataOffset(tableOffset, 2, i, v))
	}

	fi := &header.FileInfo{
		IsTTF:           true,
		GlyphOffset:     tableOffset,
		GlyphDataOffset: glyphDataOffset,
		OffsetSize:      2,
		NumGlyphs:       4,
	}

	inj, err := New(fi, buf, nil)
	require.NoError(t, err)

	rec := BundleRecord{GlyphID: 1, Offset: 2, Length: 2, Bytes: []byte{0xAA, 0xBB}}
	require.NoError(t, inj.injectTrueType(rec))

	got := func(gid int) uint32 {
		v, err := e.GetGlyphDataOffset(tableOffset, 2, gid)
		require.NoError(t, err)
		return v
	}
	require.Equal(t, uint32(1), got(0)) // pulled back by backward fixup
	require.Equal(t, uint32(1), got(1)) // new start
	require.Equal(t, uint32(2), got(2)) // new end
	require.Equal(t, uint32(10), got(3))
	require.Equal(t, uint32(12), got(4))

	sentinel, err := e.PeekUint32At(glyphDataOffset + 4)
	require.NoError(t, err)
	require.Equal(t, uint32(0xFFFF0000), sentinel&0xFFFF0000)
}

func TestInjectCFFForwardFixupCascades(t *testing.T) {
	const tableOffset = 0
	const glyphDataOffset = 30
	buf := make([]byte, 64)
	e := binary.NewEditor(buf)

	initial := []uint32{0, 0, 0, 0, 0, 0}
	for i, v := range initial {
		require.NoError(t, e.SetGlyphDataOffset(tableOffset, 4, i, v))
	}

	fi := &header.FileInfo{
		IsTTF:           false,
		GlyphOffset:     tableOffset,
		GlyphDataOffset: glyphDataOffset,
		NumGlyphs:       5,
	}

	inj, err := New(fi, buf, nil)
	require.NoError(t, err)

	rec := BundleRecord{GlyphID: 1, Offset: 10, Length: 5, Bytes: make([]byte, 5)}
	require.NoError(t, inj.injectCFF(rec))

	got := func(gid int) uint32 {
		v, err := e.GetGlyphDataOffset(tableOffset, 4, gid)
		require.NoError(t, err)
		return v
	}
	require.Equal(t, uint32(0), got(0))
	require.Equal(t, uint32(10), got(1))
	require.Equal(t, uint32(15), got(2))
	require.Equal(t, uint32(16), got(3))
	require.Equal(t, uint32(17), got(4))
	require.Equal(t, uint32(18), got(5))

	endcharAt := func(pos int) byte {
		save := e.Tell()
		require.NoError(t, e.Seek(pos))
		b, err := e.GetUint8()
		require.NoError(t, err)
		require.NoError(t, e.Seek(save))
		return b
	}
	require.Equal(t, byte(14), endcharAt(glyphDataOffset+15))
	require.Equal(t, byte(14), endcharAt(glyphDataOffset+16))
	// the final cs entry (index == numGlyphs) is a sentinel, not a real
	// charstring, so no endchar is written at glyphDataOffset+17.
	require.Zero(t, endcharAt(glyphDataOffset+17))
}

func TestInjectSkipsCmapActivationOnMappingMiss(t *testing.T) {
	buf := make([]byte, 64)
	for i := 0; i < 5; i++ {
		require.NoError(t, binary.NewEditor(buf).SetGlyphDataOffset(0, 4, i, 0))
	}

	fi := &header.FileInfo{
		IsTTF:            false,
		GlyphOffset:      0,
		GlyphDataOffset:  20,
		NumGlyphs:        4,
		HasOneCharPerSeg: true,
	}

	inj, err := New(fi, buf, nil)
	require.NoError(t, err)

	bundle := &Bundle{
		Records: []BundleRecord{
			{GlyphID: 1, Offset: 0, Length: 3, Bytes: []byte{1, 2, 3}},
		},
	}

	// glyphToCodeMap names a code point that isn't present in mapping: the
	// MappingMiss case, where bytes are injected but cmap activation is
	// skipped.
	glyphToCodeMap := map[uint16]rune{1: 0x4E2D}
	err = inj.Inject(bundle, cmap.Mapping{}, glyphToCodeMap)
	require.NoError(t, err)

	readBack := binary.NewEditor(buf)
	require.NoError(t, readBack.Seek(20))
	got, err := readBack.GetBytes(3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)
}
