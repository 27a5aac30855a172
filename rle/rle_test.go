package rle

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0},
		{1, 2, 3, 4, 5},
		{7, 7, 7, 7, 7, 7, 7, 7},
		bytes.Repeat([]byte{0}, 1000),
		append(append([]byte{1, 2}, bytes.Repeat([]byte{9}, 200)...), 3, 4, 5),
	}
	for _, c := range cases {
		enc := Encode(c)
		dec, err := Decode(bytes.NewReader(enc))
		require.NoError(t, err)
		require.Equal(t, c, dec)
	}
}

func TestDecodeLiteralAndFillOpcodes(t *testing.T) {
	// literal run of 3 bytes: c = 257-3 = 254
	stream := []byte{254, 'a', 'b', 'c', 0}
	out, err := Decode(bytes.NewReader(stream))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), out)

	// fill run of 5 'x's: c = 5
	stream = []byte{5, 'x', 0}
	out, err = Decode(bytes.NewReader(stream))
	require.NoError(t, err)
	require.Equal(t, []byte("xxxxx"), out)
}

func TestDecodeUnterminatedStream(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{5, 'x'}))
	require.Error(t, err)
}

func TestDecodeTruncatedLiteral(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{254, 'a', 'b'}))
	require.Error(t, err)
}

func TestDecodeBasePrependsHeaderVerbatim(t *testing.T) {
	header := []byte{0xAA, 0xBB, 0xCC}
	body := Encode([]byte{1, 2, 3})
	out, err := DecodeBase(header, bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, append(append([]byte{}, header...), 1, 2, 3), out)
}
