package header

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	in := EncodeInput{
		IsTTF:           true,
		GlyphOffset:     100,
		GlyphDataOffset: 200,
		OffsetSize:      2,
		NumGlyphs:       10,
		HmtxOffset:      300,
		HmetricCount:    8,
		VmtxOffset:      0,
		VmetricCount:    0,
		Cmap4:           &Cmap4Region{Offset: 10, Length: 64},
		Cmap12:          &Cmap12Region{Offset: 80, NGroups: 3},
		CompactGOS: CompactGOS{
			Cmap4: []Cmap4CompactSeg{
				{StartCode: 0x61, EndCode: 0x61, IDDelta: 1, IDRangeOffset: 0},
				{StartCode: 0x62, EndCode: 0x62, IDDelta: 2, IDRangeOffset: 0},
			},
			Cmap12: []Cmap12CompactSeg{
				{StartCode: 0x61, Length: 1, StartGlyphID: 1},
				{StartCode: 0x62, Length: 1, StartGlyphID: 2},
			},
		},
	}

	data := Encode(in)
	fi, n, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, uint32(100), fi.GlyphOffset)
	require.Equal(t, uint32(200), fi.GlyphDataOffset)
	require.True(t, fi.IsTTF)
	require.Equal(t, uint16(10), fi.NumGlyphs)
	require.NotNil(t, fi.Cmap4)
	require.Equal(t, uint32(64), fi.Cmap4.Length)
	require.NotNil(t, fi.Cmap12)
	require.Len(t, fi.CompactGOS.Cmap4, 2)
	require.True(t, fi.HasOneCharPerSeg)
}

func TestHasOneCharPerSegFalseWhenSegmentSpansRange(t *testing.T) {
	in := EncodeInput{
		IsTTF:      true,
		OffsetSize: 2,
		CompactGOS: CompactGOS{
			Cmap4: []Cmap4CompactSeg{
				{StartCode: 0x61, EndCode: 0x7A, IDDelta: 1, IDRangeOffset: 0},
			},
		},
	}
	data := Encode(in)
	fi, _, err := Parse(data)
	require.NoError(t, err)
	require.False(t, fi.HasOneCharPerSeg)
}

func TestParseRejectsBadMagic(t *testing.T) {
	_, _, err := Parse([]byte{0, 0, 0, 0})
	require.Error(t, err)
}

func TestParseRejectsTruncated(t *testing.T) {
	data := Encode(EncodeInput{OffsetSize: 2})
	_, _, err := Parse(data[:len(data)-2])
	require.Error(t, err)
}
