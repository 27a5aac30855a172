package rle

import "bytes"

// Encode produces an RLE stream decodable by Decode. It is not part of the
// client engine's runtime surface (the backend and build tool own
// encoding) but exists so tests can construct fixtures without hand
// assembling opcode bytes, mirroring how
// seehuhn-go-pdf/internal/filter/runlength pairs Encode with Decode for
// its own tests.
func Encode(data []byte) []byte {
	var out bytes.Buffer
	var literal []byte

	flushLiteral := func() {
		for len(literal) > 0 {
			switch {
			case len(literal) == 1:
				out.WriteByte(1)
				out.WriteByte(literal[0])
				literal = nil
			default:
				n := len(literal)
				if n > 129 {
					n = 129
				}
				out.WriteByte(byte(257 - n))
				out.Write(literal[:n])
				literal = literal[n:]
			}
		}
	}

	i := 0
	for i < len(data) {
		runLen := 1
		for i+runLen < len(data) && data[i+runLen] == data[i] && runLen < 127 {
			runLen++
		}

		if runLen >= 2 {
			flushLiteral()
			out.WriteByte(byte(runLen))
			out.WriteByte(data[i])
			i += runLen
			continue
		}

		literal = append(literal, data[i])
		i++
	}
	flushLiteral()

	out.WriteByte(0)
	return out.Bytes()
}
