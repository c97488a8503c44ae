package ir

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DecodeError reports a fixed buffer that does not hold valid UTF-8 text.
type DecodeError struct {
	// Field names the buffer (e.g. "device_path_name"); empty when decoding
	// a bare buffer.
	Field string

	// Offset is the byte index of the first invalid sequence.
	Offset int
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode %s: invalid UTF-8 at byte %d", e.Field, e.Offset)
	}
	return fmt.Sprintf("decode fixed buffer: invalid UTF-8 at byte %d", e.Offset)
}

// DecodeFixed converts a NUL-terminated fixed-capacity buffer to a string.
//
// The text ends at the first NUL byte, or at the end of the buffer when no
// NUL is present. Invalid UTF-8 is rejected with a *DecodeError instead of
// being replaced, so corrupted runtime text never reaches a caller. Accepted
// text is NFC normalized.
func DecodeFixed(buf []byte) (string, error) {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	if !utf8.Valid(buf) {
		return "", &DecodeError{Offset: firstInvalid(buf)}
	}
	return norm.NFC.String(string(buf)), nil
}

func firstInvalid(buf []byte) int {
	for i := 0; i < len(buf); {
		r, size := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(buf)
}
