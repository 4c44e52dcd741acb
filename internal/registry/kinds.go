package registry

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Register kinds derived from "Typ podmiotu".
const (
	KindNursery     = "zlobek"
	KindPreschool   = "przedszkole"
	KindPrimary     = "szkola_podstawowa"
	KindSecondary   = "szkola_ponadpodstawowa"
	KindSchoolGroup = "zespol_szkol"
	KindOther       = "inne"
)

// KindRule assigns Kind when any keyword occurs in the lowercased type.
type KindRule struct {
	Kind     string
	Keywords []string
}

// DefaultKindRules in priority order.
var DefaultKindRules = []KindRule{
	{Kind: KindNursery, Keywords: []string{"żłob", "zlob"}},
	{Kind: KindPreschool, Keywords: []string{"przedszk", "punkt przedszkolny"}},
	{Kind: KindPrimary, Keywords: []string{"szkoła podstawowa", "szkola podstawowa"}},
	{Kind: KindSecondary, Keywords: []string{"liceum", "technikum", "branż", "policealn"}},
	{Kind: KindSchoolGroup, Keywords: []string{"zespół szkół", "zespół szk", "zespól"}},
}

// KindClassifier matches all keywords of all rules in one pass.
type KindClassifier struct {
	matcher *ahocorasick.Matcher
	rank    []int // keyword index -> rule index
	rules   []KindRule
}

// NewKindClassifier builds a classifier; earlier rules win.
func NewKindClassifier(rules []KindRule) *KindClassifier {
	c := &KindClassifier{rules: rules}
	var patterns [][]byte
	for i, r := range rules {
		for _, kw := range r.Keywords {
			patterns = append(patterns, []byte(strings.ToLower(kw)))
			c.rank = append(c.rank, i)
		}
	}
	if len(patterns) > 0 {
		c.matcher = ahocorasick.NewMatcher(patterns)
	}
	return c
}

// Kind returns the kind of a "Typ podmiotu" value.
func (c *KindClassifier) Kind(entityType string) string {
	if c.matcher == nil || strings.TrimSpace(entityType) == "" {
		return KindOther
	}
	best := -1
	for _, idx := range c.matcher.Match([]byte(strings.ToLower(entityType))) {
		if r := c.rank[idx]; best < 0 || r < best {
			best = r
		}
	}
	if best < 0 {
		return KindOther
	}
	return c.rules[best].Kind
}

var defaultKinds = NewKindClassifier(DefaultKindRules)

// KindOf classifies with DefaultKindRules.
func KindOf(entityType string) string {
	return defaultKinds.Kind(entityType)
}
