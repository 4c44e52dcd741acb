package resolver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry binds a summary field to the label prefix of its statement line.
type Entry struct {
	Field  string `yaml:"field"`
	Prefix string `yaml:"prefix"`
}

// Catalog is the ordered list of line items resolved into a summary.
type Catalog []Entry

// DefaultCatalog covers the budget-unit profit and loss statement
// (rachunek zysków i strat jednostki, wariant porównawczy).
func DefaultCatalog() Catalog {
	return Catalog{
		{Field: "przychody_netto", Prefix: "A. Przychody netto z podstawowej działalności operacyjnej"},
		{Field: "dotacje_podstawowe", Prefix: "A.V. Dotacje na finansowanie działalności podstawowej"},
		{Field: "przychody_budzetowe", Prefix: "A.VI. Przychody z tytułu dochodów budżetowych"},
		{Field: "koszty_operacyjne", Prefix: "B. Koszty działalności operacyjnej"},
		{Field: "amortyzacja", Prefix: "B.I. Amortyzacja"},
		{Field: "materialy_i_energia", Prefix: "B.II. Zużycie materiałów i energii"},
		{Field: "uslugi_obce", Prefix: "B.III. Usługi obce"},
		{Field: "podatki_i_oplaty", Prefix: "B.IV. Podatki i opłaty"},
		{Field: "wynagrodzenia", Prefix: "B.V. Wynagrodzenia"},
		{Field: "ubezpieczenia_i_swiadczenia", Prefix: "B.VI. Ubezpieczenia społeczne i inne świadczenia dla pracowników"},
		{Field: "pozostale_koszty_rodzajowe", Prefix: "B.VII. Pozostałe koszty rodzajowe"},
		{Field: "pozostale_przychody_operacyjne", Prefix: "D. Pozostałe przychody operacyjne"},
		{Field: "pozostale_koszty_operacyjne", Prefix: "E. Pozostałe koszty operacyjne"},
		{Field: "zysk_strata_netto", Prefix: "L. Zysk (strata) netto"},
	}
}

// Fields returns the field names in catalog order.
func (c Catalog) Fields() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Field
	}
	return out
}

// Validate rejects empty or duplicated fields and empty prefixes.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	seen := make(map[string]bool, len(c))
	for i, e := range c {
		if e.Field == "" {
			return fmt.Errorf("catalog entry %d: field is required", i)
		}
		if e.Prefix == "" {
			return fmt.Errorf("catalog entry %q: prefix is required", e.Field)
		}
		if seen[e.Field] {
			return fmt.Errorf("catalog entry %q: duplicate field", e.Field)
		}
		seen[e.Field] = true
	}
	return nil
}

type catalogFile struct {
	Version string  `yaml:"version"`
	Items   Catalog `yaml:"items"`
}

// LoadCatalog reads a YAML catalog:
//
//	version: "2024"
//	items:
//	  - field: przychody_netto
//	    prefix: "A. Przychody netto z podstawowej działalności operacyjnej"
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := cf.Items.Validate(); err != nil {
		return nil, err
	}
	return cf.Items, nil
}

// CatalogOrDefault loads path when set and falls back to DefaultCatalog.
func CatalogOrDefault(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	return LoadCatalog(path)
}
