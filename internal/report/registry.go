package report

import (
	"fmt"

	"github.com/dgallion1/edufin/internal/registry"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the complexes workbook.
const (
	SheetComplexSummary = "podsumowanie_zespolow"
	SheetComplexDetails = "szczegoly_zrodlo"
)

var registryDetailColumns = []string{
	"idPodmiotGlowny", "idPodmiotNadrzedny", "Nazwa placówki", "Typ podmiotu",
	"Rodzaj szkoły/placówki", "Powiat", "Gmina", "Miejscowość", "adres",
	"ucz_ogolem", "w tym_ucz_dziewczeta", "w tym_w oddz_przedszk", "lb_oddz",
	"Rodzaj_kategorii",
}

var registrySummaryColumns = []string{
	"obszar", "Rodzaj_kategorii", "liczba_placowek",
	"sum_ucz_ogolem", "sum_w tym_ucz_dziewczeta", "sum_w tym_w oddz_przedszk", "sum_lb_oddz",
}

// RegistryWorkbook writes a detailed and a summary sheet per area.
func RegistryWorkbook(areas []registry.Area) (*excelize.File, error) {
	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRegistryAreas(f, st, areas); err != nil {
		f.Close()
		return nil, err
	}
	if len(areas) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeRegistryAreas(f *excelize.File, st styles, areas []registry.Area) error {
	for _, a := range areas {
		detailed := a.Slug + "_detailed"
		if _, err := f.NewSheet(detailed); err != nil {
			return err
		}
		if err := writeHeader(f, detailed, registryDetailColumns, st.header); err != nil {
			return err
		}
		for i, r := range a.Rows {
			values := []any{
				r.ID, r.ParentID, r.Name, r.EntityType, r.SchoolKind, r.Powiat, r.Gmina, r.Town, r.Address(),
				cellValue(r.Students.Value), cellValue(r.Girls.Value), cellValue(r.PreschoolDept.Value), cellValue(r.Classes.Value),
				registry.KindOf(r.EntityType),
			}
			if err := setRow(f, detailed, i+2, values); err != nil {
				return err
			}
		}
	}

	for _, a := range areas {
		summary := a.Slug + "_podsumowanie"
		if _, err := f.NewSheet(summary); err != nil {
			return err
		}
		if err := writeHeader(f, summary, registrySummaryColumns, st.header); err != nil {
			return err
		}
		for i, s := range registry.Summarize(a.Rows, a.Label) {
			values := []any{s.Area, s.Kind, s.Facilities, s.Students, s.Girls, s.PreschoolDept, s.Classes}
			if err := setRow(f, summary, i+2, values); err != nil {
				return err
			}
		}
	}
	return nil
}

var complexSummaryColumns = []string{
	"idPodmiotGlowny", "Nazwa placówki", "Miejscowość", "adres", "Typ podmiotu",
	"liczba_skladnikow",
	"powiazana_szkola", "dzieci_szkola", // G, H
	"powiazane_przedszkole", "dzieci_przedszkole", // I, J
	"dzieci_wyliczone", "dzieci_wyliczone_wartosc", "dzieci_z_danych",
}

var complexDetailColumns = []string{
	"typ_wiersza", "kategoria_powiazania", "idPodmiotGlowny", "idPodmiotNadrzedny",
	"Nazwa placówki", "Miejscowość", "adres", "Typ podmiotu", "Rodzaj szkoły/placówki",
	"dzieci_z_danych", "dzieci_wyliczone",
}

// ComplexesWorkbook writes the complex summary, with the computed total as
// a live =SUM(H,J) formula, and the source rows behind it.
func ComplexesWorkbook(complexes []registry.Complex) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetComplexSummary); err != nil {
		f.Close()
		return nil, err
	}
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := writeComplexes(f, st, complexes); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeComplexes(f *excelize.File, st styles, complexes []registry.Complex) error {
	if err := writeHeader(f, SheetComplexSummary, complexSummaryColumns, st.header); err != nil {
		return err
	}
	for i, c := range complexes {
		row := i + 2
		p := c.Parent
		values := []any{
			p.ID, p.Name, p.Town, p.Address(), p.EntityType,
			len(c.Components),
			c.SchoolNames, c.SchoolStudents,
			c.PreschoolNames, c.PreschoolStudents,
			nil, c.Computed(), cellValue(c.Reported()),
		}
		if err := setRow(f, SheetComplexSummary, row, values); err != nil {
			return err
		}
		if err := f.SetCellFormula(SheetComplexSummary, fmt.Sprintf("K%d", row), fmt.Sprintf("SUM(H%d,J%d)", row, row)); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SheetComplexDetails); err != nil {
		return err
	}
	if err := writeHeader(f, SheetComplexDetails, complexDetailColumns, st.header); err != nil {
		return err
	}
	row := 2
	for _, c := range complexes {
		p := c.Parent
		values := []any{
			"zespol", "", p.ID, p.ParentID, p.Name, p.Town, p.Address(), p.EntityType, p.SchoolKind,
			cellValue(c.Reported()), c.Computed(),
		}
		if err := setRow(f, SheetComplexDetails, row, values); err != nil {
			return err
		}
		row++
	}
	for _, c := range complexes {
		for _, comp := range c.Components {
			r := comp.Row
			values := []any{
				"skladnik", comp.Link, r.ID, r.ParentID, r.Name, r.Town, r.Address(), r.EntityType, r.SchoolKind,
				cellValue(r.Students.Value), cellValue(r.Students.Value),
			}
			if err := setRow(f, SheetComplexDetails, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
