package users

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldUsername returns the comparison key for a username: combining marks
// stripped and case folded, so "Zoë", "ZOE" and "zoe" share one key.
// Base letters stay distinct.
func FoldUsername(username string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	folded, _, err := transform.String(t, username)
	if err != nil {
		return strings.ToLower(username)
	}
	return folded
}
