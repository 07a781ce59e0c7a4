package normalize

import (
	"strings"
	"unicode/utf8"
)

// control reports runes a stored payload must not carry: C0 controls other
// than tab, CR and LF, DEL and the C1 block
func control(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 0x20, r == 0x7F:
		return true
	default:
		return r >= 0x80 && r <= 0x9F
	}
}

// Sanitize drops invalid UTF-8 and control runes Postgres text columns or a
// subscriber record should never see. Clean input is returned as is
func Sanitize(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, control) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if control(r) {
			return -1
		}
		return r
	}, strings.ToValidUTF8(s, ""))
}
