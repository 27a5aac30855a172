package binary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEditorGetSetRoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	e := NewEditor(buf)

	require.NoError(t, e.SetUint32(0xDEADBEEF))
	require.NoError(t, e.Seek(0))
	v, err := e.GetUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), v)

	require.NoError(t, e.Seek(4))
	require.NoError(t, e.SetUint16(0xABCD))
	require.NoError(t, e.Seek(4))
	v16, err := e.GetUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0xABCD), v16)
}

func TestEditorBoundsChecked(t *testing.T) {
	e := NewEditor(make([]byte, 4))
	require.NoError(t, e.Seek(3))
	_, err := e.GetUint32()
	require.Error(t, err)

	require.Error(t, e.Seek(-1))
	require.Error(t, e.Seek(5))
}

func TestGlyphDataOffsetShortLoca(t *testing.T) {
	// short loca: 3 glyphs -> 4 entries, values word-divided.
	buf := make([]byte, 8)
	e := NewEditor(buf)
	require.NoError(t, e.SetGlyphDataOffset(0, 2, 0, 0))
	require.NoError(t, e.SetGlyphDataOffset(0, 2, 1, 10))
	require.NoError(t, e.SetGlyphDataOffset(0, 2, 2, 20))
	require.NoError(t, e.SetGlyphDataOffset(0, 2, 3, 20))

	v, err := e.GetGlyphDataOffset(0, 2, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(10), v)
}

func TestGlyphDataOffsetLongLoca(t *testing.T) {
	buf := make([]byte, 16)
	e := NewEditor(buf)
	require.NoError(t, e.SetGlyphDataOffset(0, 4, 0, 0))
	require.NoError(t, e.SetGlyphDataOffset(0, 4, 1, 1000))
	require.NoError(t, e.SetGlyphDataOffset(0, 4, 2, 2000))
	require.NoError(t, e.SetGlyphDataOffset(0, 4, 3, 2000))

	v, err := e.GetGlyphDataOffset(0, 4, 2)
	require.NoError(t, err)
	require.Equal(t, uint32(2000), v)
}

func TestSetMtxSideBearing(t *testing.T) {
	// 2 long metrics (4 bytes each), then short records (2 bytes each).
	buf := make([]byte, 4*2+2*3)
	e := NewEditor(buf)

	require.NoError(t, e.SetMtxSideBearing(0, 2, 0, 5))
	require.NoError(t, e.SetMtxSideBearing(0, 2, 1, -5))
	require.NoError(t, e.SetMtxSideBearing(0, 2, 2, 7))  // short record 0
	require.NoError(t, e.SetMtxSideBearing(0, 2, 4, -3)) // short record 2

	require.NoError(t, e.Seek(2))
	v, err := e.GetInt16()
	require.NoError(t, err)
	require.Equal(t, int16(5), v)

	require.NoError(t, e.Seek(4*2))
	v, err = e.GetInt16()
	require.NoError(t, err)
	require.Equal(t, int16(7), v)
}
