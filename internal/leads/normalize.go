package leads

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are trailing tokens dropped when deriving a domain from a
// free-text organization name.
var legalSuffixes = map[string]bool{
	"inc": true, "incorporated": true,
	"corp": true, "corporation": true,
	"ltd": true, "limited": true,
	"llc": true, "llp": true, "lp": true,
	"co": true, "company": true,
	"plc": true, "gmbh": true, "ag": true, "sa": true,
}

// Fold lower-cases s and strips diacritics, so "Lufthansa Téchnik" folds to
// "lufthansa technik".
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// tokens splits a folded name on anything that is not a letter or digit.
func tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !isSlugRune(r)
	})
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// slug keeps only [a-z0-9] from the folded form of s.
func slug(s string) string {
	var b strings.Builder
	for _, r := range Fold(s) {
		if isSlugRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DomainStem derives the bare domain label for an organization name:
// trailing legal suffix tokens are dropped, the rest is concatenated and
// truncated to maxLen. It returns "" when nothing usable remains.
func DomainStem(organization string, maxLen int) string {
	toks := tokens(organization)
	for len(toks) > 1 && legalSuffixes[toks[len(toks)-1]] {
		toks = toks[:len(toks)-1]
	}
	if len(toks) == 1 && legalSuffixes[toks[0]] {
		toks = nil
	}

	stem := strings.Join(toks, "")
	if maxLen > 0 && len(stem) > maxLen {
		stem = stem[:maxLen]
	}
	return stem
}
