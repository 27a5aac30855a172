package manager

import (
	"bytes"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Shea690901/TachyFont/tferr"
)

// CharList is the set of code points known present in the base, per
// spec.md §3.
type CharList map[rune]struct{}

// PersistState records which persisted slot has been mutated since the
// last successful save, lifted out of FileInfo per the design note in
// spec.md §9.
type PersistState struct {
	BaseDirty     bool
	CharListDirty bool
}

// EncodeCharList serializes a CharList as its code points' UTF-8 bytes,
// sorted ascending, with no separators — codepoints are self-delimiting
// UTF-8 sequences. This is the "opaque serialization of the char-set"
// spec.md §6 leaves to the persistence layer.
func EncodeCharList(cl CharList) []byte {
	runes := make([]rune, 0, len(cl))
	for c := range cl {
		runes = append(runes, c)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

	buf := make([]byte, 0, len(runes)*2)
	var tmp [utf8.UTFMax]byte
	for _, c := range runes {
		n := utf8.EncodeRune(tmp[:], c)
		buf = append(buf, tmp[:n]...)
	}
	return buf
}

// DecodeCharList parses the format EncodeCharList produces. The bytes
// are first passed through golang.org/x/text/encoding/unicode's UTF-8
// decoder as a validity gate — a persisted blob from an incompatible
// schema version or a corrupted store entry fails here as CorruptFont
// rather than silently decoding garbage code points.
func DecodeCharList(data []byte) (CharList, error) {
	validated, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), data)
	if err != nil {
		return nil, tferr.CorruptFont("charlist: invalid utf-8: %v", err)
	}
	if !bytes.Equal(validated, data) {
		// The decoder replaces invalid sequences with U+FFFD rather than
		// failing, so any change to the bytes marks invalid input.
		return nil, tferr.CorruptFont("charlist: invalid utf-8")
	}

	cl := make(CharList)
	for len(validated) > 0 {
		c, size := utf8.DecodeRune(validated)
		if c == utf8.RuneError && size <= 1 {
			return nil, tferr.CorruptFont("charlist: invalid rune at byte %d", len(data)-len(validated))
		}
		cl[c] = struct{}{}
		validated = validated[size:]
	}
	return cl, nil
}
