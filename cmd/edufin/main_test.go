package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/edufin/internal/pipeline"
	"github.com/dgallion1/edufin/internal/report"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testRegistry = "idPodmiotGlowny;idPodmiotNadrzedny;Nazwa placówki;Typ podmiotu;Rodzaj szkoły/placówki;Powiat;Gmina;ucz_ogolem\n" +
	"1;;Przedszkole Miejskie nr 7;Przedszkole;;raciborski;Racibórz;50\n" +
	"2;;Zespół Szkolno-Przedszkolny nr 1;Zespół szkół;jednostka złożona;raciborski;Racibórz;140\n" +
	"3;2;Szkoła Podstawowa nr 1;Szkoła podstawowa;;raciborski;Racibórz;100\n" +
	"4;2;Przedszkole nr 1;Przedszkole;;raciborski;Racibórz;40\n"

func statement(costs, net string) string {
	return "Wyszczególnienie;Poprzedni;Bieżący\n" +
		"A. Przychody netto z podstawowej działalności operacyjnej;1000,00;1000,00\n" +
		"B. Koszty działalności operacyjnej;" + costs + ";" + costs + "\n" +
		"L. Zysk (strata) netto;" + net + ";" + net + "\n"
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "statements", "Przedszkole_nr_7", "rachunek_zyskow_2024.csv"), statement("900,00", "100,00"))
	writeFile(t, filepath.Join(dir, "statements", "Szkoa_Podstawowa_nr_4", "rachunek_zyskow_2024.csv"), statement("900,00", "-50,00"))
	writeFile(t, filepath.Join(dir, "statements", "Szkoa_Podstawowa_nr_4", "bilans_2024.csv"), statement("1,00", "1,00"))
	writeFile(t, filepath.Join(dir, "rspo.csv"), testRegistry)

	xlsx := filepath.Join(dir, "out.xlsx")
	docx := filepath.Join(dir, "out.docx")
	out, err := run(t, "analyze",
		"--dir", filepath.Join(dir, "statements"),
		"--registry", filepath.Join(dir, "rspo.csv"),
		"--year", "2024",
		"--out-xlsx", xlsx,
		"--out-docx", docx,
	)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Found 2 statements")
	assert.Contains(t, out, "Przedszkole nr 7")
	assert.Contains(t, out, "Szkola Podstawowa nr 4")
	assert.Contains(t, out, "Wynik netto ujemny (-50.00 PLN).")

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(report.SheetSummary)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	info, err := os.Stat(docx)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestAnalyzeCommand_NoStatements(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "analyze", "--dir", dir, "--registry", filepath.Join(dir, "missing.xlsx"),
		"--out-xlsx", filepath.Join(dir, "a.xlsx"), "--out-docx", filepath.Join(dir, "a.docx"))
	assert.ErrorIs(t, err, pipeline.ErrNoFacilities)
	_, statErr := os.Stat(filepath.Join(dir, "a.xlsx"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMatchCommand(t *testing.T) {
	dir := t.TempDir()
	reg := filepath.Join(dir, "rspo.csv")
	writeFile(t, reg, testRegistry)

	out, err := run(t, "match", "Przedszkole nr 7 w Raciborzu", "--registry", reg)
	require.NoError(t, err)
	assert.Contains(t, out, "category:   przedszkole")
	assert.Contains(t, out, "enrollment: 50")

	out, err = run(t, "match", "Przedszkole nr 9", "--registry", reg)
	require.NoError(t, err)
	assert.Contains(t, out, "not found")
}

func TestRegistryCommands(t *testing.T) {
	dir := t.TempDir()
	reg := filepath.Join(dir, "rspo.csv")
	writeFile(t, reg, testRegistry)

	summary := filepath.Join(dir, "summary.xlsx")
	out, err := run(t, "registry", "summary", "--registry", reg, "--out", summary)
	require.NoError(t, err)
	assert.Contains(t, out, "Miasto Racibórz (4)")
	assert.FileExists(t, summary)

	complexes := filepath.Join(dir, "complexes.xlsx")
	out, err = run(t, "registry", "complexes", "--registry", reg, "--out", complexes)
	require.NoError(t, err)
	assert.Contains(t, out, "Zespół Szkolno-Przedszkolny nr 1  2 składników, wyliczone 140")
	assert.Contains(t, out, "Saved 1 complexes")
	assert.FileExists(t, complexes)
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rachunek_2024.csv")
	writeFile(t, path, statement("900,00", "100,00"))

	out, err := run(t, "extract", path)
	require.NoError(t, err)
	assert.Contains(t, out, "B. Koszty działalności operacyjnej\t900\t900\n")

	out, err = run(t, "extract", path, "--summary")
	require.NoError(t, err)
	assert.Regexp(t, `koszty_operacyjne\s+900\.00`, out)

	_, err = run(t, "extract", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
