package shared

import (
	"strings"

	"golang.org/x/net/html"
)

// Sanitize strips markup from s and escapes the remaining HTML-significant
// characters. Character references already present are kept, so applying
// Sanitize twice yields the same text as applying it once.
func Sanitize(s string) string {
	return EscapeHTML(StripTags(s))
}

// StripTags removes tags, comments and doctype declarations and keeps the
// raw text between them.
func StripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

// EscapeHTML escapes <, >, &, " and ' using the entity forms PHP-era
// clients of this API expect. An ampersand that already starts a character
// reference is left alone.
func EscapeHTML(s string) string {
	if !strings.ContainsAny(s, `<>&"'`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#039;")
		case '&':
			if n := referenceLen(s[i:]); n > 0 {
				b.WriteString(s[i : i+n])
				i += n - 1
				continue
			}
			b.WriteString("&amp;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// referenceLen returns the length of the character reference at the start
// of s (&name; &#123; &#x1F;), or 0 when s does not start with one.
func referenceLen(s string) int {
	if len(s) < 3 || s[0] != '&' {
		return 0
	}
	i := 1
	switch {
	case s[i] == '#':
		i++
		hex := false
		if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
			hex = true
			i++
		}
		start := i
		for i < len(s) && (isDigit(s[i]) || (hex && isHexLetter(s[i]))) {
			i++
		}
		if i == start {
			return 0
		}
	case isLetter(s[i]):
		for i < len(s) && (isLetter(s[i]) || isDigit(s[i])) {
			i++
		}
	default:
		return 0
	}
	if i >= len(s) || s[i] != ';' {
		return 0
	}
	return i + 1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isHexLetter(c byte) bool { return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
