package ledger

import (
	"encoding/json"
	"strconv"
)

// Document is the table content decoded from one statement file.
type Document struct {
	Title string  // Statement title (from metadata or filename)
	Pages []*Page // Pages in document order
}

// Page holds the tables found on one page, in reading order.
type Page struct {
	Number int // 1-indexed (0 if the format has no pages)
	Tables []Table
}

// Table is a grid of raw cells. Absent cells are empty strings.
type Table struct {
	Rows [][]string
}

// TableCount returns the number of tables across all pages.
func (d *Document) TableCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Tables)
	}
	return n
}

// Value is a number that may be absent.
type Value struct {
	V     float64
	Valid bool
}

// Some returns a present value.
func Some(v float64) Value {
	return Value{V: v, Valid: true}
}

// None is the absent value.
var None = Value{}

// Get returns the number and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.V, v.Valid
}

// NonZero reports whether the value is present and different from zero.
func (v Value) NonZero() bool {
	return v.Valid && v.V != 0
}

func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.V, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// Record is one labeled statement row.
type Record struct {
	Label   string `json:"label"`
	Prior   Value  `json:"prev_year"`
	Current Value  `json:"current_year"`
}

// Summary field names used outside the line-item catalog.
const (
	FieldNetSales         = "przychody_netto"
	FieldOperatingCosts   = "koszty_operacyjne"
	FieldOtherCostsNature = "pozostale_koszty_rodzajowe"
	FieldOtherOpCosts     = "pozostale_koszty_operacyjne"
	FieldNetResult        = "zysk_strata_netto"
	FieldEnrollment       = "liczba_uczniow"
	FieldCostPerEnrolled  = "koszt_na_ucznia"
	FieldFacilityType     = "facility_type"
)

// Summary is the per-facility financial summary. Fields lists the
// catalog field names in catalog order.
type Summary struct {
	Facility        string           `json:"placowka"`
	FacilityType    string           `json:"facility_type"`
	Fields          []string         `json:"-"`
	Values          map[string]Value `json:"values"`
	Enrollment      Value            `json:"liczba_uczniow"`
	CostPerEnrolled Value            `json:"koszt_na_ucznia"`
}

// Get returns a catalog field value; unknown fields are absent.
func (s Summary) Get(field string) Value {
	switch field {
	case FieldEnrollment:
		return s.Enrollment
	case FieldCostPerEnrolled:
		return s.CostPerEnrolled
	}
	return s.Values[field]
}

// WithEnrollment returns a copy carrying the enrollment-dependent fields.
func (s Summary) WithEnrollment(enrollment, costPerEnrolled Value) Summary {
	out := s
	out.Values = make(map[string]Value, len(s.Values))
	for k, v := range s.Values {
		out.Values[k] = v
	}
	out.Fields = append([]string(nil), s.Fields...)
	out.Enrollment = enrollment
	out.CostPerEnrolled = costPerEnrolled
	return out
}

// FacilityReport is everything produced for one facility: the summary,
// the statement records it was resolved from and the findings.
type FacilityReport struct {
	Summary Summary  `json:"summary"`
	Records []Record `json:"records,omitempty"`
	Issues  []string `json:"issues"`
	Source  string   `json:"source,omitempty"`
}
