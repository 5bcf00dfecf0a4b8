package turn

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds a line of player input, in bytes.
const DefaultMaxInputSize = 4096

// SanitizeInput never rejects input. Invalid UTF-8 sequences become U+FFFD,
// control characters other than newline, tab and carriage return are
// stripped, and the result is cut to at most limit bytes on a rune boundary.
// A zero limit disables the cut.
func SanitizeInput(input string, limit int) string {
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, string(utf8.RuneError))
	}

	if strings.IndexFunc(input, unsafeControl) >= 0 {
		var b strings.Builder
		b.Grow(len(input))
		for _, r := range input {
			if !unsafeControl(r) {
				b.WriteRune(r)
			}
		}
		input = b.String()
	}

	if limit > 0 && len(input) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(input[cut]) {
			cut--
		}
		input = input[:cut]
	}
	return input
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
