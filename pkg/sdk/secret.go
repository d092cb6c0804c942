package sdk

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"
)

// Secret is a byte buffer decoded from a JSON string without passing through
// an immutable Go string, so it can be wiped after use.
type Secret []byte

// UnmarshalJSON decodes a JSON string literal into the buffer.
func (s *Secret) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	out, err := unquoteBytes(data)
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// Wipe zeroes the buffer.
func (s Secret) Wipe() {
	wipe(s)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

var errBadSecret = errors.New("secret must be a JSON string")

func unquoteBytes(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return nil, errBadSecret
	}
	data = data[1 : len(data)-1]
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c != '\\' {
			if c < 0x20 || c == '"' {
				return nil, errBadSecret
			}
			out = append(out, c)
			continue
		}
		i++
		if i >= len(data) {
			return nil, errBadSecret
		}
		switch data[i] {
		case '"', '\\', '/':
			out = append(out, data[i])
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			r, ok := hex4(data[i+1:])
			if !ok {
				return nil, errBadSecret
			}
			i += 4
			if utf16.IsSurrogate(r) {
				if i+6 < len(data) && data[i+1] == '\\' && data[i+2] == 'u' {
					if r2, ok := hex4(data[i+3:]); ok {
						if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
							r = dec
							i += 6
						}
					}
				}
				if utf16.IsSurrogate(r) {
					r = utf8.RuneError
				}
			}
			out = utf8.AppendRune(out, r)
		default:
			return nil, errBadSecret
		}
	}
	return out, nil
}

func hex4(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}
	var r rune
	for _, c := range b[:4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			r |= rune(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return r, true
}

const hexDigits = "0123456789abcdef"

// appendJSONString appends src to dst as a quoted JSON string.
func appendJSONString(dst, src []byte) []byte {
	dst = append(dst, '"')
	for _, c := range src {
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', c)
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}
