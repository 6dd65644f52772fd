package category

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rule maps text containing every keyword to Key.
type Rule struct {
	Keywords []string
	Key      string
}

// RuleSet is an ordered rule table; the first matching rule wins.
type RuleSet struct {
	Version int
	Rules   []Rule
}

// DefaultRules is the rule table used by Normalize.
var DefaultRules = RuleSet{
	Version: 2,
	Rules: []Rule{
		{Keywords: []string{"panader", "cereal"}, Key: PanaderiaCereales},
		{Keywords: []string{"alimentos", "fresco"}, Key: AlimentosFrescos},
		{Keywords: []string{"despensa"}, Key: Despensa},
		{Keywords: []string{"lacteo"}, Key: Lacteos},
		{Keywords: []string{"proteina"}, Key: Proteina},
		{Keywords: []string{"aseo"}, Key: Aseo},
		{Keywords: []string{"limpieza", "hogar"}, Key: LimpiezaHogar},
		{Keywords: []string{"bebida"}, Key: Bebidas},
		{Keywords: []string{"congel"}, Key: Congelados},
		{Keywords: []string{"agotad"}, Key: Agotados},
	},
}

// Normalize maps raw to a canonical key using DefaultRules.
func Normalize(raw string) string {
	return DefaultRules.Normalize(raw)
}

// Normalize maps raw to the key of the first matching rule. Unmatched input
// falls back to a slug of ASCII letters, digits and single underscores, and to
// otros when nothing survives. It never fails and Normalize(Normalize(s)) ==
// Normalize(s) for every s.
func (rs RuleSet) Normalize(raw string) string {
	text := clean(raw)
	if text == "" {
		return Otros
	}
	for _, r := range rs.Rules {
		if r.matches(text) {
			return r.Key
		}
	}
	return strings.ReplaceAll(text, " ", "_")
}

func (r Rule) matches(text string) bool {
	for _, kw := range r.Keywords {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return len(r.Keywords) > 0
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// clean lowercases raw, strips diacritics, drops every rune that is not an
// ASCII letter, digit, space, hyphen or underscore, turns hyphens and
// underscores into spaces and collapses whitespace. Rules and the slug both
// see this text, so letters with no ASCII base (ß, Ø, 日) are dropped before
// matching.
func clean(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '-' || r == '_':
			return ' '
		case unicode.IsSpace(r):
			return ' '
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
