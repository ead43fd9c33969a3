package jsmodule

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeEscapes converts the raw text between the quotes of a JavaScript
// string (or a template chunk) into its value. Template chunks reject legacy
// octal escapes and normalize CR/CRLF line terminators, matching the cooked
// value of a template element.
func decodeEscapes(raw string, template bool) (string, bool) {
	if !strings.ContainsAny(raw, "\\\r") {
		return raw, true
	}

	var b strings.Builder
	b.Grow(len(raw))

	for i := 0; i < len(raw); {
		c := raw[i]
		if c == '\r' && template {
			b.WriteByte('\n')
			i++
			if i < len(raw) && raw[i] == '\n' {
				i++
			}
			continue
		}
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}

		i++
		if i >= len(raw) {
			return "", false
		}
		c = raw[i]
		switch c {
		case 'n':
			b.WriteByte('\n')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'v':
			b.WriteByte('\v')
			i++
		case '\r':
			// line continuation
			i++
			if i < len(raw) && raw[i] == '\n' {
				i++
			}
		case '\n':
			i++
		case 'x':
			if i+3 > len(raw) {
				return "", false
			}
			v, err := strconv.ParseUint(raw[i+1:i+3], 16, 8)
			if err != nil {
				return "", false
			}
			b.WriteRune(rune(v))
			i += 3
		case 'u':
			r, n, ok := decodeUnicodeEscape(raw[i+1:])
			if !ok {
				return "", false
			}
			i += 1 + n
			if utf16.IsSurrogate(r) && strings.HasPrefix(raw[i:], "\\u") {
				if low, m, ok := decodeUnicodeEscape(raw[i+2:]); ok {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						i += 2 + m
					}
				}
			}
			b.WriteRune(r)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(raw) && j < i+3 && raw[j] >= '0' && raw[j] <= '7' {
				j++
			}
			if c == '0' && j == i+1 {
				b.WriteByte(0)
				i++
				continue
			}
			if template {
				return "", false
			}
			v, _ := strconv.ParseUint(raw[i:j], 8, 16)
			if v > 0xff {
				j--
				v, _ = strconv.ParseUint(raw[i:j], 8, 16)
			}
			b.WriteRune(rune(v))
			i = j
		default:
			r, size := utf8.DecodeRuneInString(raw[i:])
			if r == '\u2028' || r == '\u2029' {
				i += size
				continue
			}
			b.WriteRune(r)
			i += size
		}
	}

	return b.String(), true
}

// decodeUnicodeEscape decodes the part after "\u": either four hex digits or
// a braced code point. It returns the rune and the number of bytes consumed.
func decodeUnicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, false
		}
		return rune(v), end + 1, true
	}
	if len(s) < 4 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), 4, true
}
