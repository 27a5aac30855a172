package inject

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBundleRoundTrip(t *testing.T) {
	hmtx := uint16(500)
	vmtx := uint16(1000)
	b := &Bundle{
		Flags:      HasHmtx | HasVmtx,
		GlyphCount: 2,
		Records: []BundleRecord{
			{GlyphID: 1, Hmtx: &hmtx, Vmtx: &vmtx, Offset: 10, Length: 3, Bytes: []byte{1, 2, 3}},
			{GlyphID: 5, Hmtx: &hmtx, Vmtx: &vmtx, Offset: 13, Length: 0, Bytes: nil},
		},
	}

	encoded := EncodeBundle(b)
	decoded, err := DecodeBundle(encoded)
	require.NoError(t, err)

	if diff := cmp.Diff(b, decoded); diff != "" {
		t.Errorf("decoded bundle does not match original (-want +got):\n%s", diff)
	}
}

func TestDecodeBundleTruncatedFails(t *testing.T) {
	b := &Bundle{
		Records: []BundleRecord{{GlyphID: 2, Offset: 0, Length: 4, Bytes: []byte{1, 2, 3, 4}}},
	}
	encoded := EncodeBundle(b)
	_, err := DecodeBundle(encoded[:len(encoded)-2])
	require.Error(t, err)
}

func TestDecodeBundleNoFlagsOmitsMetrics(t *testing.T) {
	b := &Bundle{
		Records: []BundleRecord{{GlyphID: 9, Offset: 0, Length: 2, Bytes: []byte{0xAA, 0xBB}}},
	}
	encoded := EncodeBundle(b)
	decoded, err := DecodeBundle(encoded)
	require.NoError(t, err)
	require.Nil(t, decoded.Records[0].Hmtx)
	require.Nil(t, decoded.Records[0].Vmtx)
}
