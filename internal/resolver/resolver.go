package resolver

import (
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
)

// FindFirst returns the values of the first record whose label starts with
// prefix. The match is exact and case-sensitive.
func FindFirst(records []ledger.Record, prefix string) (prior, current ledger.Value) {
	for _, r := range records {
		if strings.HasPrefix(r.Label, prefix) {
			return r.Prior, r.Current
		}
	}
	return ledger.None, ledger.None
}

// BuildSummary resolves every catalog entry against the full record
// sequence and keeps the current-period value. The caller sets Facility.
func BuildSummary(records []ledger.Record, catalog Catalog) ledger.Summary {
	s := ledger.Summary{
		Fields: catalog.Fields(),
		Values: make(map[string]ledger.Value, len(catalog)),
	}
	for _, e := range catalog {
		_, current := FindFirst(records, e.Prefix)
		s.Values[e.Field] = current
	}
	return s
}
