package pdf

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
)

// literalStringRe matches PDF literal strings in parentheses: (text here)
var literalStringRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)

// extractStreamText scans a decoded page content stream for text-showing
// operators and reconstructs the page's text in drawing order. This covers
// the common Tj/TJ/'/" operators plus the positioning operators that imply
// line or word breaks. Hex strings and CID-encoded fonts are not decoded;
// pages relying on them yield partial or empty text and typically fall
// through to OCR instead.
func extractStreamText(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")) || bytes.HasSuffix(line, []byte("TJ")):
			writeLiterals(&sb, line, false)

		case bytes.HasSuffix(line, []byte("'")) || bytes.HasSuffix(line, []byte(`"`)):
			// Move to next line, then show text.
			writeLiterals(&sb, line, true)

		case bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}

		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return normalizeText(sb.String())
}

// writeLiterals decodes every literal string on the line into sb.
func writeLiterals(sb *strings.Builder, line []byte, newline bool) {
	for _, m := range literalStringRe.FindAllSubmatch(line, -1) {
		text := decodeLiteralString(m[1])
		if text == "" {
			continue
		}
		if newline {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
}

// decodeLiteralString resolves PDF escape sequences inside a literal string.
func decodeLiteralString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
			// Backspace and form feed carry no text.
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				// Octal escape, up to three digits.
				val := int(raw[i] - '0')
				for d := 0; d < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; d++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// normalizeText collapses whitespace runs while preserving line breaks, and
// drops unprintable characters left over from font encodings.
func normalizeText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			sb.WriteByte('\n')
			prevSpace = true
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
