// Package registry loads the national register of schools and educational
// facilities (Wykaz szkół i placówek oświatowych) and answers enrollment
// lookups for facility names.
package registry

import (
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/dgallion1/edufin/internal/parser"
)

// Header of the facility name column; it marks the header row.
const NameColumn = "Nazwa placówki"

// Row is one register entry. Columns missing from the source stay empty.
type Row struct {
	ID          string `csv:"idPodmiotGlowny" json:"id"`
	ParentID    string `csv:"idPodmiotNadrzedny" json:"parent_id,omitempty"`
	Name        string `csv:"Nazwa placówki" json:"name"`
	EntityType  string `csv:"Typ podmiotu" json:"entity_type"`
	SchoolKind  string `csv:"Rodzaj szkoły/placówki" json:"school_kind,omitempty"`
	Powiat      string `csv:"Powiat" json:"powiat"`
	Gmina       string `csv:"Gmina" json:"gmina"`
	Town        string `csv:"Miejscowość" json:"town"`
	Street      string `csv:"Ulica" json:"-"`
	HouseNumber string `csv:"Numer domu" json:"-"`
	FlatNumber  string `csv:"Numer lokalu" json:"-"`
	PostalCode  string `csv:"Kod pocztowy" json:"-"`
	PostOffice  string `csv:"Poczta" json:"-"`

	Students      Count `csv:"ucz_ogolem" json:"ucz_ogolem"`
	Girls         Count `csv:"w tym_ucz_dziewczeta" json:"ucz_dziewczeta"`
	PreschoolDept Count `csv:"w tym_w oddz_przedszk" json:"w_oddz_przedszk"`
	Classes       Count `csv:"lb_oddz" json:"lb_oddz"`
}

// Count is a register number that may be empty, NaN or text.
type Count struct {
	ledger.Value
}

// UnmarshalCSV never fails; anything that is not a number is absent.
func (c *Count) UnmarshalCSV(s string) error {
	c.Value = parser.ParseNumber(strings.TrimSpace(s))
	return nil
}

// Enrollment is the total number of pupils or children.
func (r Row) Enrollment() ledger.Value {
	return r.Students.Value
}

// Address joins street, number and post office the way the register
// prints them: "Ulica 3/4 - 47-400 Racibórz".
func (r Row) Address() string {
	street := strings.TrimSpace(r.Street)
	number := strings.TrimSpace(r.HouseNumber)
	if flat := strings.TrimSpace(r.FlatNumber); flat != "" {
		number += "/" + flat
	}
	addr := joinNonEmpty(" ", street, number)
	post := joinNonEmpty(" ", strings.TrimSpace(r.PostalCode), strings.TrimSpace(r.PostOffice))
	if post == "" {
		return addr
	}
	if addr == "" {
		return post
	}
	return addr + " - " + post
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// Filter keeps rows whose Powiat and Gmina contain the given fragments,
// case-insensitively. Empty fragments match everything.
type Filter struct {
	Powiat string
	Gmina  string
}

// DefaultFilter selects the city of Racibórz.
var DefaultFilter = Filter{Powiat: "raciborsk", Gmina: "Racibórz"}

// Apply returns the matching rows in input order.
func (f Filter) Apply(rows []Row) []Row {
	var out []Row
	for _, r := range rows {
		if containsFold(r.Powiat, f.Powiat) && containsFold(r.Gmina, f.Gmina) {
			out = append(out, r)
		}
	}
	return out
}

// PowiatOnly drops the Gmina constraint.
func (f Filter) PowiatOnly() Filter {
	return Filter{Powiat: f.Powiat}
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
