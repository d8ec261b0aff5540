package pathid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
)

// MaxLength is the longest identifier Encode returns before it falls back to
// a hashed form.
const MaxLength = 200

const hashPrefix = "cred_"

var translit = map[rune]string{
	// Polish diacritics fold to their base letter.
	'ą': "a", 'ć': "c", 'ę': "e", 'ł': "l", 'ń': "n", 'ó': "o", 'ś': "s", 'ź': "z", 'ż': "z",
	'Ą': "a", 'Ć': "c", 'Ę': "e", 'Ł': "l", 'Ń': "n", 'Ó': "o", 'Ś': "s", 'Ź': "z", 'Ż': "z",

	'@':  "_at_",
	'.':  "_dot_",
	':':  "_colon_",
	'+':  "_plus_",
	'=':  "_eq_",
	'/':  "_slash_",
	'\\': "_backslash_",
	'&':  "_and_",
	'%':  "_percent_",
	'#':  "_hash_",
	'!':  "_excl_",
	'?':  "_q_",
	'*':  "_star_",
	'<':  "_lt_",
	'>':  "_gt_",
	'|':  "_pipe_",
	'~':  "_tilde_",

	' ': "_", '(': "_", ')': "_", '-': "_", ',': "_", ';': "_",
	'\'': "_", '"': "_", '[': "_", ']': "_", '{': "_", '}': "_", '`': "_",
}

// Encode maps a credential name to a path segment made only of [a-z0-9_].
//
// The mapping is deterministic and total. Names whose encoding would exceed
// MaxLength collapse to "cred_" followed by the first 16 hex digits of the
// SHA-256 of the original name.
func Encode(name string) string {
	if name == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			if s, ok := translit[r]; ok {
				b.WriteString(s)
				continue
			}
			if r < 0x80 {
				b.WriteByte('_')
				continue
			}
			writeUnicode(&b, r)
		}
	}

	out := b.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "c" + out
	}

	if len(out) > MaxLength {
		sum := sha256.Sum256([]byte(name))
		out = hashPrefix + hex.EncodeToString(sum[:])[:16]
	}

	return out
}

// writeUnicode emits one _uXXXX group per UTF-16 code unit.
func writeUnicode(b *strings.Builder, r rune) {
	if r1, r2 := utf16.EncodeRune(r); r1 != unicode.ReplacementChar || r2 != unicode.ReplacementChar {
		fmt.Fprintf(b, "_u%04x_u%04x", r1, r2)
		return
	}
	fmt.Fprintf(b, "_u%04x", r)
}
