package registry

import (
	"sort"
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
)

// KindSummary aggregates the register rows of one kind in one area.
type KindSummary struct {
	Area          string  `json:"obszar"`
	Kind          string  `json:"rodzaj_kategorii"`
	Facilities    int     `json:"liczba_placowek"`
	Students      float64 `json:"sum_ucz_ogolem"`
	Girls         float64 `json:"sum_ucz_dziewczeta"`
	PreschoolDept float64 `json:"sum_w_oddz_przedszk"`
	Classes       float64 `json:"sum_lb_oddz"`
}

// Summarize groups rows by KindOf(EntityType), sorted by kind. Rows
// without a name are not counted as facilities but their numbers are
// still summed.
func Summarize(rows []Row, area string) []KindSummary {
	byKind := make(map[string]*KindSummary)
	for _, r := range rows {
		kind := KindOf(r.EntityType)
		s, ok := byKind[kind]
		if !ok {
			s = &KindSummary{Area: area, Kind: kind}
			byKind[kind] = s
		}
		if strings.TrimSpace(r.Name) != "" {
			s.Facilities++
		}
		s.Students += valueOrZero(r.Students.Value)
		s.Girls += valueOrZero(r.Girls.Value)
		s.PreschoolDept += valueOrZero(r.PreschoolDept.Value)
		s.Classes += valueOrZero(r.Classes.Value)
	}

	out := make([]KindSummary, 0, len(byKind))
	for _, s := range byKind {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

func valueOrZero(v ledger.Value) float64 {
	if n, ok := v.Get(); ok {
		return n
	}
	return 0
}

// Area is a named register subset.
type Area struct {
	Slug  string // sheet name prefix
	Label string
	Rows  []Row
}

// Areas splits the register into the county and the city selected by f.
func Areas(rows []Row, f Filter) []Area {
	county := f.PowiatOnly().Apply(rows)
	return []Area{
		{Slug: "powiat_raciborski", Label: "Powiat raciborski", Rows: county},
		{Slug: "miasto_raciborz", Label: "Miasto Racibórz", Rows: f.Apply(county)},
	}
}
