package service

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFileNameLength = 255

// sanitizeText drops invalid UTF-8 and control characters other than tab and
// newline. PostgreSQL rejects both in text columns.
func sanitizeText(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, isStrippedControl) < 0 {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if isStrippedControl(r) {
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}

func isStrippedControl(r rune) bool {
	return unicode.IsControl(r) && r != '\t' && r != '\n'
}

// sanitizeFileName keeps only the base name of an uploaded file, cleaned and
// capped in length.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.TrimSpace(sanitizeText(name))
	if name == "." || name == "/" || name == "" {
		return "statement.csv"
	}
	if utf8.RuneCountInString(name) > maxFileNameLength {
		name = string([]rune(name)[:maxFileNameLength])
	}
	return name
}
