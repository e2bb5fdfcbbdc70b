package fsutil

import (
	"strings"
	"unicode"
)

// CleanFilename normalizes a derived output name so it can be compared
// against (and written into) the target folder. The same normalization must
// run on both sides of the skip-vs-fetch comparison or the decision is
// unsound: a name is stripped of filesystem-unsafe and non-printable runes
// and symbol characters, double spaces are collapsed, and leading/trailing
// spaces and dots are trimmed.
func CleanFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if !unicode.IsPrint(r) || unicode.Is(unicode.So, r) {
			continue
		}
		if strings.ContainsRune(`<>:"/\|?*⧸©`, r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.ReplaceAll(b.String(), "  ", " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, ".")
	return cleaned
}
