package facility

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Facility categories.
const (
	CategoryPreschool     = "przedszkole"
	CategoryPrimarySchool = "szkola_podstawowa"
	CategoryComplex       = "zespol_szkolno_przedszkolny"
	CategoryNursery       = "zlobek"
	CategoryOther         = "inne"
)

// Identity is the comparison form of a facility display name.
type Identity struct {
	RawName    string `json:"raw_name"`
	Key        string `json:"key"`
	Category   string `json:"category"`
	Identifier string `json:"identifier,omitempty"`
}

// Pattern maps keys matching Match (and not matching Exclude) to a
// category. When Match has a capture group its first group is the
// identifier.
type Pattern struct {
	Category string
	Match    *regexp.Regexp
	Exclude  *regexp.Regexp
}

// complexLead matches keys that start with the complex phrase. Component
// units mention their complex after their own kind ("przedszkole nr 20 w
// zespole szkolno przedszkolnym nr 3") and keep their own category.
const complexLead = `^(?:(?:miejski|gminny|publiczny|samorzadowy) )?zespol\w* szkolno przedszkoln\w*`

var complexName = regexp.MustCompile(complexLead)

// DefaultPatterns is the classification catalog in priority order.
var DefaultPatterns = []Pattern{
	{Category: CategoryPreschool, Match: regexp.MustCompile(`\bprzedszkole\b.*?\bnr (\d+)\b`), Exclude: complexName},
	{Category: CategoryPrimarySchool, Match: regexp.MustCompile(`\bszkola podstawowa\b.*?\bnr (\d+)\b`), Exclude: complexName},
	{Category: CategoryComplex, Match: regexp.MustCompile(complexLead + `.*?\bnr (\d+)\b`)},
	{Category: CategoryNursery, Match: regexp.MustCompile(`\bzlob`)},
}

var polishLetters = strings.NewReplacer(
	"ą", "a", "ć", "c", "ę", "e", "ł", "l", "ń", "n", "ó", "o", "ś", "s", "ź", "z", "ż", "z",
	"Ą", "A", "Ć", "C", "Ę", "E", "Ł", "L", "Ń", "N", "Ó", "O", "Ś", "S", "Ź", "Z", "Ż", "Z",
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeKey folds a display name to lowercase ASCII words separated by
// single spaces. Characters without an ASCII form are dropped.
func NormalizeKey(name string) string {
	s := polishLetters.Replace(name)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(s)
}

// Classify derives the identity of name using DefaultPatterns.
func Classify(name string) Identity {
	return ClassifyWith(name, DefaultPatterns)
}

// ClassifyWith derives the identity of name; the first matching pattern
// wins and unmatched names fall into CategoryOther.
func ClassifyWith(name string, patterns []Pattern) Identity {
	id := Identity{RawName: name, Key: NormalizeKey(name), Category: CategoryOther}
	for _, p := range patterns {
		if p.Exclude != nil && p.Exclude.MatchString(id.Key) {
			continue
		}
		m := p.Match.FindStringSubmatch(id.Key)
		if m == nil {
			continue
		}
		id.Category = p.Category
		if len(m) > 1 {
			id.Identifier = m[1]
		}
		return id
	}
	return id
}

// LookupKey is the registry index key of the identity.
func (id Identity) LookupKey() string {
	return id.Category + "|" + id.Identifier
}
