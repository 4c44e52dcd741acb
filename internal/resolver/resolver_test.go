package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(label string, prior, current float64) ledger.Record {
	return ledger.Record{Label: label, Prior: ledger.Some(prior), Current: ledger.Some(current)}
}

func TestFindFirst_FirstMatchWins(t *testing.T) {
	records := []ledger.Record{
		rec("B. Koszty działalności operacyjnej", 100, 200),
		rec("B. Koszty działalności operacyjnej (korekta)", 1, 2),
	}
	prior, current := FindFirst(records, "B. Koszty działalności operacyjnej")
	assert.Equal(t, ledger.Some(100), prior)
	assert.Equal(t, ledger.Some(200), current)
}

func TestFindFirst_CaseSensitive(t *testing.T) {
	records := []ledger.Record{rec("b. koszty działalności operacyjnej", 1, 2)}
	prior, current := FindFirst(records, "B. Koszty działalności operacyjnej")
	assert.False(t, prior.Valid)
	assert.False(t, current.Valid)
}

func TestFindFirst_PrefixDoesNotMatchSubsection(t *testing.T) {
	// "B.I." must not satisfy the "B. " prefix.
	records := []ledger.Record{rec("B.I. Amortyzacja", 5, 6)}
	_, current := FindFirst(records, "B. Koszty")
	assert.False(t, current.Valid)
}

func TestFindFirst_KeepsAbsentValues(t *testing.T) {
	records := []ledger.Record{{Label: "E. Pozostałe koszty operacyjne"}}
	_, current := FindFirst(records, "E. Pozostałe koszty operacyjne")
	assert.False(t, current.Valid)
}

func TestBuildSummary(t *testing.T) {
	records := []ledger.Record{
		{Label: "Wyszczególnienie"},
		rec("A. Przychody netto z podstawowej działalności operacyjnej", 900, 1000),
		rec("B. Koszty działalności operacyjnej", 800, 1200),
		rec("B.VII. Pozostałe koszty rodzajowe", 0, 10),
		rec("L. Zysk (strata) netto", 50, -200),
	}
	s := BuildSummary(records, DefaultCatalog())

	assert.Len(t, s.Values, len(DefaultCatalog()))
	assert.Equal(t, DefaultCatalog().Fields(), s.Fields)
	assert.Equal(t, ledger.Some(1000), s.Get(ledger.FieldNetSales))
	assert.Equal(t, ledger.Some(1200), s.Get(ledger.FieldOperatingCosts))
	assert.Equal(t, ledger.Some(10), s.Get(ledger.FieldOtherCostsNature))
	assert.Equal(t, ledger.Some(-200), s.Get(ledger.FieldNetResult))
	assert.False(t, s.Get("amortyzacja").Valid)
	assert.False(t, s.Get(ledger.FieldOtherOpCosts).Valid)
}

func TestBuildSummary_EmptyRecords(t *testing.T) {
	s := BuildSummary(nil, DefaultCatalog())
	for _, f := range s.Fields {
		assert.False(t, s.Get(f).Valid, f)
	}
}

func TestDefaultCatalog_Valid(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate())
	assert.Len(t, c, 14)
	assert.Equal(t, "przychody_netto", c[0].Field)
	assert.Equal(t, "zysk_strata_netto", c[len(c)-1].Field)
}

func TestParseCatalog(t *testing.T) {
	data := []byte(`version: "2024"
items:
  - field: przychody_netto
    prefix: "A. Przychody netto"
  - field: zysk_strata_netto
    prefix: "L. Zysk (strata) netto"
`)
	c, err := ParseCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, Catalog{
		{Field: "przychody_netto", Prefix: "A. Przychody netto"},
		{Field: "zysk_strata_netto", Prefix: "L. Zysk (strata) netto"},
	}, c)
}

func TestParseCatalog_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":     "items: []\n",
		"no prefix": "items:\n  - field: a\n",
		"duplicate": "items:\n  - {field: a, prefix: x}\n  - {field: a, prefix: y}\n",
		"bad yaml":  "items: [\n",
	}
	for name, data := range cases {
		_, err := ParseCatalog([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestCatalogOrDefault(t *testing.T) {
	c, err := CatalogOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), c)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - {field: wynagrodzenia, prefix: \"B.V. Wynagrodzenia\"}\n"), 0o644))
	c, err = CatalogOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"wynagrodzenia"}, c.Fields())

	_, err = CatalogOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
