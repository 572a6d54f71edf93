package codec

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// StringEncoding names a FieldEncoding attribute value (§6.1).
type StringEncoding int

const (
	ASCII StringEncoding = iota
	Windows1252
	UTF8
	UTF16LE
	UTF16BE
)

// TerminatorWidth is the octet width of the implicit null terminator used
// when a string has no FieldLength/FieldCount/parent length binding.
func (e StringEncoding) TerminatorWidth() int {
	switch e {
	case UTF16LE, UTF16BE:
		return 2
	default:
		return 1
	}
}

// isASCII reports whether every byte in b is a 7-bit ASCII octet, matching
// the teacher's fast-path check before falling back to a charmap decoder.
func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7F {
			return false
		}
	}
	return true
}

// EncodeString renders s per the given encoding, without any terminator or
// length padding; that is the value graph walker's responsibility.
func EncodeString(s string, enc StringEncoding) ([]byte, error) {
	switch enc {
	case ASCII, UTF8:
		return []byte(s), nil
	case Windows1252:
		return charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	default:
		return nil, fmt.Errorf("codec: unsupported string encoding %d", enc)
	}
}

// DecodeString parses b per the given encoding.
func DecodeString(b []byte, enc StringEncoding) (string, error) {
	switch enc {
	case ASCII:
		if isASCII(b) {
			return string(b), nil
		}
		// Fast path failed; treat stray high bytes as Windows-1252, same as
		// the raw-name decoder this is modeled on.
		return DecodeString(b, Windows1252)
	case UTF8:
		return string(b), nil
	case Windows1252:
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("codec: windows-1252 decode: %w", err)
		}
		return string(decoded), nil
	case UTF16LE:
		if len(b)%2 != 0 {
			return "", fmt.Errorf("codec: utf-16le input has odd length")
		}
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("codec: utf-16le decode: %w", err)
		}
		return string(decoded), nil
	case UTF16BE:
		if len(b)%2 != 0 {
			return "", fmt.Errorf("codec: utf-16be input has odd length")
		}
		decoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("codec: utf-16be decode: %w", err)
		}
		return string(decoded), nil
	default:
		return "", fmt.Errorf("codec: unsupported string encoding %d", enc)
	}
}
