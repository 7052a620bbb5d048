package assembler

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	filenamePrefix = "Employee_Assessment_Report_"
	defaultName    = "Employee"
)

// Filename derives the output file name from the subject's display name.
// Whitespace runs collapse to one underscore, diacritics are folded and
// characters that are unsafe in paths become '-'.
func Filename(name string) string {
	fields := strings.Fields(foldDiacritics(name))
	if len(fields) == 0 {
		return filenamePrefix + defaultName + ".pdf"
	}
	return filenamePrefix + strings.Map(pathSafe, strings.Join(fields, "_")) + ".pdf"
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func pathSafe(r rune) rune {
	switch {
	case strings.ContainsRune(`/\:*?"<>|`, r), unicode.IsControl(r):
		return '-'
	default:
		return r
	}
}
