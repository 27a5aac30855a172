// Package rle expands the run-length-encoded base font payload that the
// backend serves into raw, addressable font bytes.
//
// Decoder shape (bufio.Reader over the input, a small internal run/literal
// state machine) follows seehuhn.de/go/pdf's internal/filter/runlength
// package, which implements the same family of PackBits-style codec for
// the PDF RunLengthDecode filter. The opcode assignment below is this
// module's own documented choice (see DESIGN.md) since the original
// TachyFont RLE opcode stream is not present anywhere in the retrieved
// reference material.
package rle

import (
	"bufio"
	"io"

	"github.com/Shea690901/TachyFont/tferr"
)

// Decode expands an RLE-compressed byte stream read from r into raw bytes.
//
// Opcode stream, one control byte c per operation:
//
//	c == 0:          end of stream.
//	1 <= c <= 127:   fill run — read one value byte v, emit v repeated c times.
//	128 <= c <= 255: literal run — emit the following (257-c) bytes verbatim
//	                 (257-c ranges over 2..129).
func Decode(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	out := []byte{}

	for {
		c, err := br.ReadByte()
		if err == io.EOF {
			return nil, tferr.CorruptRle("unterminated stream (missing end-of-stream opcode)")
		}
		if err != nil {
			return nil, tferr.CorruptRle("reading opcode: %v", err)
		}

		switch {
		case c == 0:
			return out, nil

		case c <= 127:
			v, err := br.ReadByte()
			if err != nil {
				return nil, tferr.CorruptRle("fill run missing value byte: %v", err)
			}
			for i := 0; i < int(c); i++ {
				out = append(out, v)
			}

		default: // 128..255
			n := 257 - int(c)
			buf := make([]byte, n)
			if _, err := io.ReadFull(br, buf); err != nil {
				return nil, tferr.CorruptRle("literal run of %d bytes truncated: %v", n, err)
			}
			out = append(out, buf...)
		}
	}
}

// DecodeBase expands a header-prefixed RLE base: headerPrefix is copied
// verbatim, followed by the expansion of the RLE-compressed body read from
// r. This matches spec.md §4.2: offsets recorded in FileInfo index into
// the expanded font bytes, not the RLE stream, and the header prefix
// itself is never RLE-compressed.
func DecodeBase(headerPrefix []byte, body io.Reader) ([]byte, error) {
	expanded, err := Decode(body)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(headerPrefix)+len(expanded))
	copy(out, headerPrefix)
	copy(out[len(headerPrefix):], expanded)
	return out, nil
}
