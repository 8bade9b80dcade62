package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// parentheticalPattern matches parenthetical release markers such as
// "(2025)", "(Season 2)", or "(Part 3)" that libraries append to titles
// but remote catalogs usually omit.
var parentheticalPattern = regexp.MustCompile(`(?i)\(\s*(?:(?:19|20)\d{2}|season\s*\d+|part\s*\d+)\s*\)`)

// foldTransformer decomposes to NFKD, drops combining marks, and folds
// half/full width forms so CJK punctuation variants compare equal.
var foldTransformer = transform.Chain(
	width.Fold,
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
)

// NormalizeTitle reduces a show title to a canonical comparison form:
// width/diacritic folding, case folding, removal of parenthetical
// year/season markers, punctuation replaced by spaces, whitespace
// collapsed. Two titles that normalize identically are considered an
// exact match by the fuzzy matcher.
func NormalizeTitle(title string) string {
	folded, _, err := transform.String(foldTransformer, title)
	if err != nil {
		folded = title
	}
	folded = strings.ToLower(folded)
	folded = parentheticalPattern.ReplaceAllString(folded, " ")

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
