package header

// EncodeInput is the set of fields needed to synthesize a header prefix.
// Only used by tests and by the build-tool-facing side of this package;
// the runtime engine never re-encodes a header.
type EncodeInput struct {
	IsTTF           bool
	GlyphOffset     uint32
	GlyphDataOffset uint32
	OffsetSize      uint8
	NumGlyphs       uint16
	HmtxOffset      uint32
	HmetricCount    uint16
	VmtxOffset      uint32
	VmetricCount    uint16
	Cmap4           *Cmap4Region
	Cmap12          *Cmap12Region
	CharsetFmt      *CharsetFmtRegion
	CompactGOS      CompactGOS
}

// Encode serializes in into a header prefix byte slice that Parse can
// read back. It exists so tests can build fixtures without hand-rolling
// the binary layout.
func Encode(in EncodeInput) []byte {
	var flags uint16
	if in.IsTTF {
		flags |= flagIsTTF
	}
	if in.Cmap4 != nil {
		flags |= flagHasCmap4
	}
	if in.Cmap12 != nil {
		flags |= flagHasCmap12
	}
	if in.CharsetFmt != nil {
		flags |= flagHasCharset
	}

	buf := make([]byte, 0, 256)
	putU32 := func(v uint32) { buf = append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }
	putU16 := func(v uint16) { buf = append(buf, byte(v>>8), byte(v)) }
	putU8 := func(v uint8) { buf = append(buf, v) }
	putI16 := func(v int16) { putU16(uint16(v)) }

	putU32(Magic)
	putU16(version1)
	putU16(flags)
	putU32(in.GlyphOffset)
	putU32(in.GlyphDataOffset)
	putU8(in.OffsetSize)
	putU16(in.NumGlyphs)
	putU32(in.HmtxOffset)
	putU16(in.HmetricCount)
	putU32(in.VmtxOffset)
	putU16(in.VmetricCount)

	if in.Cmap4 != nil {
		putU32(in.Cmap4.Offset)
		putU32(in.Cmap4.Length)
	}
	if in.Cmap12 != nil {
		putU32(in.Cmap12.Offset)
		putU32(in.Cmap12.NGroups)
	}
	if in.CharsetFmt != nil {
		putU32(in.CharsetFmt.Offset)
		putU8(in.CharsetFmt.GosType)
		putU32(uint32(len(in.CharsetFmt.GosBytes)))
		buf = append(buf, in.CharsetFmt.GosBytes...)
	}

	putU16(uint16(len(in.CompactGOS.Cmap4)))
	for _, seg := range in.CompactGOS.Cmap4 {
		putU16(seg.StartCode)
		putU16(seg.EndCode)
		putI16(seg.IDDelta)
		putU16(seg.IDRangeOffset)
	}

	putU16(uint16(len(in.CompactGOS.GlyphIDArray)))
	for _, v := range in.CompactGOS.GlyphIDArray {
		putU16(v)
	}

	putU32(uint32(len(in.CompactGOS.Cmap12)))
	for _, seg := range in.CompactGOS.Cmap12 {
		putU32(seg.StartCode)
		putU32(seg.Length)
		putU32(seg.StartGlyphID)
	}

	return buf
}
