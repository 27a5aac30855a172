// Package tferr defines the error taxonomy shared by the incremental font
// engine's components. Every fatal and recoverable error the engine raises
// is one of these types, so callers can use errors.As instead of string
// matching.
package tferr

import "fmt"

// CorruptFontError indicates a header inconsistency, a cmap segCount
// mismatch, or an out-of-bounds access into a base font buffer. Fatal for
// the font that raised it.
type CorruptFontError struct {
	Reason string
}

func (err *CorruptFontError) Error() string {
	return "tachyfont: corrupt font: " + err.Reason
}

// CorruptFont constructs a CorruptFontError.
func CorruptFont(format string, a ...interface{}) error {
	return &CorruptFontError{Reason: fmt.Sprintf(format, a...)}
}

// CorruptRleError indicates the RLE-compressed base payload is malformed.
type CorruptRleError struct {
	Reason string
}

func (err *CorruptRleError) Error() string {
	return "tachyfont: corrupt rle stream: " + err.Reason
}

// CorruptRle constructs a CorruptRleError.
func CorruptRle(format string, a ...interface{}) error {
	return &CorruptRleError{Reason: fmt.Sprintf(format, a...)}
}

// PersistMissError indicates a persisted slot was expected but is empty.
// Recoverable: the caller should fall back to the backend.
type PersistMissError struct {
	Slot string
}

func (err *PersistMissError) Error() string {
	return "tachyfont: persisted slot not found: " + err.Slot
}

// PersistMiss constructs a PersistMissError.
func PersistMiss(slot string) error {
	return &PersistMissError{Slot: slot}
}

// PersistIoError indicates a persistent-store read or write failed.
// Recoverable: dirty flags remain set so a later persist retries.
type PersistIoError struct {
	Slot string
	Err  error
}

func (err *PersistIoError) Error() string {
	return fmt.Sprintf("tachyfont: persist io error on slot %s: %v", err.Slot, err.Err)
}

func (err *PersistIoError) Unwrap() error { return err.Err }

// PersistIo constructs a PersistIoError.
func PersistIo(slot string, cause error) error {
	return &PersistIoError{Slot: slot, Err: cause}
}

// BackendError indicates a backend fetch failed. Surfaced to the caller of
// loadChars; charList is not updated so the next loadChars retries.
type BackendError struct {
	Op  string
	Err error
}

func (err *BackendError) Error() string {
	return fmt.Sprintf("tachyfont: backend error during %s: %v", err.Op, err.Err)
}

func (err *BackendError) Unwrap() error { return err.Err }

// Backend constructs a BackendError.
func Backend(op string, cause error) error {
	return &BackendError{Op: op, Err: cause}
}

// MappingMissError indicates a bundle delivered a glyph whose code point is
// absent from the cmap mapping. Non-fatal: glyph bytes are still injected,
// cmap activation is simply skipped for that glyph.
type MappingMissError struct {
	CodePoint rune
}

func (err *MappingMissError) Error() string {
	return fmt.Sprintf("tachyfont: no cmap mapping for code point U+%04X", err.CodePoint)
}

// MappingMiss constructs a MappingMissError.
func MappingMiss(codePoint rune) error {
	return &MappingMissError{CodePoint: codePoint}
}
