// Package report renders analysis results as XLSX workbooks, a DOCX
// findings document and Markdown/HTML.
package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the analysis workbook.
const (
	SheetSummary = "Zbiorcze_porownanie"
	SheetPivot   = "Pivot_placowka"
	SheetCharts  = "Wykresy"
)

const (
	moneyFormat = "#,##0.00"
	countFormat = "0"
	maxSheetLen = 31
)

var pivotColumns = []string{
	"placowka",
	ledger.FieldOperatingCosts,
	ledger.FieldNetResult,
	ledger.FieldEnrollment,
	ledger.FieldCostPerEnrolled,
}

type styles struct {
	header int
	money  int
	count  int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	money, count := moneyFormat, countFormat
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err != nil {
		return s, err
	}
	if s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &money}); err != nil {
		return s, err
	}
	if s.count, err = f.NewStyle(&excelize.Style{CustomNumFmt: &count}); err != nil {
		return s, err
	}
	return s, nil
}

// Workbook builds the comparison workbook: the summary sheet, one sheet of
// records per facility, the pivot sheet and its charts. fields is the
// catalog order of summary columns.
func Workbook(facilities []ledger.FacilityReport, fields []string) (*excelize.File, error) {
	sorted := append([]ledger.FacilityReport(nil), facilities...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Summary.Facility < sorted[j].Summary.Facility
	})

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func() error{
		func() error { return writeSummarySheet(f, st, sorted, fields) },
		func() error { return writeFacilitySheets(f, st, sorted) },
		func() error { return writePivotSheet(f, st, sorted) },
		func() error { return writeCharts(f, len(sorted)) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSummarySheet(f *excelize.File, st styles, facilities []ledger.FacilityReport, fields []string) error {
	header := append([]string{"placowka"}, fields...)
	header = append(header, ledger.FieldEnrollment, ledger.FieldCostPerEnrolled)
	if err := writeHeader(f, SheetSummary, header, st.header); err != nil {
		return err
	}

	costCol := columnOf(header, ledger.FieldOperatingCosts)
	countCol := len(header) - 1
	for i, fr := range facilities {
		row := i + 2
		values := []any{fr.Summary.Facility}
		for _, field := range fields {
			values = append(values, cellValue(fr.Summary.Get(field)))
		}
		values = append(values, cellValue(fr.Summary.Enrollment))
		if err := setRow(f, SheetSummary, row, values); err != nil {
			return err
		}
		if err := setCostFormula(f, SheetSummary, row, costCol, countCol, len(header)); err != nil {
			return err
		}
	}

	last := len(facilities) + 1
	if err := styleRange(f, SheetSummary, 2, len(header), last, st.money); err != nil {
		return err
	}
	if err := styleRange(f, SheetSummary, countCol, countCol, last, st.count); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 45); err != nil {
		return err
	}
	endCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(SheetSummary, "B", endCol, 16); err != nil {
		return err
	}
	return f.AutoFilter(SheetSummary, fmt.Sprintf("A1:%s%d", endCol, last), nil)
}

// setCostFormula writes =IFERROR(cost/count,"") into column target when
// the cost column exists.
func setCostFormula(f *excelize.File, sheet string, row, costCol, countCol, target int) error {
	if costCol == 0 {
		return nil
	}
	cost, _ := excelize.CoordinatesToCellName(costCol, row)
	count, _ := excelize.CoordinatesToCellName(countCol, row)
	cell, _ := excelize.CoordinatesToCellName(target, row)
	return f.SetCellFormula(sheet, cell, fmt.Sprintf(`IFERROR(%s/%s,"")`, cost, count))
}

func writeFacilitySheets(f *excelize.File, st styles, facilities []ledger.FacilityReport) error {
	used := map[string]bool{SheetSummary: true, SheetPivot: true, SheetCharts: true}
	for _, fr := range facilities {
		name := SheetName(fr.Summary.Facility, used)
		used[name] = true
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeHeader(f, name, []string{"label", "prev_year", "current_year"}, st.header); err != nil {
			return err
		}
		for i, r := range fr.Records {
			if err := setRow(f, name, i+2, []any{r.Label, cellValue(r.Prior), cellValue(r.Current)}); err != nil {
				return err
			}
		}
		if err := styleRange(f, name, 2, 3, len(fr.Records)+1, st.money); err != nil {
			return err
		}
		if err := f.SetColWidth(name, "A", "A", 70); err != nil {
			return err
		}
	}
	return nil
}

var invalidSheetChars = regexp.MustCompile(`[\[\]:*?/\\]`)

// SheetName makes a valid, unused sheet name from a facility name.
func SheetName(name string, used map[string]bool) string {
	base := strings.Trim(invalidSheetChars.ReplaceAllString(name, " "), "' ")
	if base == "" {
		base = "placowka"
	}
	base = truncateRunes(base, maxSheetLen)
	if !used[base] {
		return base
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate := truncateRunes(base, maxSheetLen-len(suffix)) + suffix
		if !used[candidate] {
			return candidate
		}
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

// PivotOrder sorts by operating costs, largest first, absent last.
func PivotOrder(facilities []ledger.FacilityReport) []ledger.FacilityReport {
	out := append([]ledger.FacilityReport(nil), facilities...)
	sort.SliceStable(out, func(i, j int) bool {
		a, okA := out[i].Summary.Get(ledger.FieldOperatingCosts).Get()
		b, okB := out[j].Summary.Get(ledger.FieldOperatingCosts).Get()
		if okA != okB {
			return okA
		}
		return a > b
	})
	return out
}

func writePivotSheet(f *excelize.File, st styles, facilities []ledger.FacilityReport) error {
	if _, err := f.NewSheet(SheetPivot); err != nil {
		return err
	}
	if err := writeHeader(f, SheetPivot, pivotColumns, st.header); err != nil {
		return err
	}
	ordered := PivotOrder(facilities)
	for i, fr := range ordered {
		row := i + 2
		s := fr.Summary
		values := []any{
			s.Facility,
			cellValue(s.Get(ledger.FieldOperatingCosts)),
			cellValue(s.Get(ledger.FieldNetResult)),
			cellValue(s.Enrollment),
		}
		if err := setRow(f, SheetPivot, row, values); err != nil {
			return err
		}
		if err := setCostFormula(f, SheetPivot, row, 2, 4, 5); err != nil {
			return err
		}
	}
	last := len(ordered) + 1
	if err := styleRange(f, SheetPivot, 2, 5, last, st.money); err != nil {
		return err
	}
	if err := styleRange(f, SheetPivot, 4, 4, last, st.count); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetPivot, "A", "A", 45); err != nil {
		return err
	}
	return f.SetColWidth(SheetPivot, "B", "E", 18)
}

type chartSpec struct {
	anchor string
	column string
	title  string
	unit   string
}

var pivotCharts = []chartSpec{
	{anchor: "B2", column: "B", title: "Koszty operacyjne per placówka", unit: "PLN"},
	{anchor: "B22", column: "C", title: "Wynik netto per placówka", unit: "PLN"},
	{anchor: "B42", column: "E", title: "Koszt na ucznia per placówka", unit: "PLN/uczeń"},
}

func writeCharts(f *excelize.File, n int) error {
	if _, err := f.NewSheet(SheetCharts); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	last := n + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", SheetPivot, last)
	for _, c := range pivotCharts {
		chart := &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$%s$1", SheetPivot, c.column),
				Categories: categories,
				Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", SheetPivot, c.column, c.column, last),
			}},
			Title:     []excelize.RichTextRun{{Text: c.title}},
			Legend:    excelize.ChartLegend{Position: "none"},
			XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Placówka"}}},
			YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: c.unit}}},
			PlotArea:  excelize.ChartPlotArea{ShowVal: true},
			Dimension: excelize.ChartDimension{Width: 900, Height: 360},
		}
		if err := f.AddChart(SheetCharts, c.anchor, chart); err != nil {
			return fmt.Errorf("add chart %q: %w", c.title, err)
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	values := make([]any, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := setRow(f, sheet, 1, values); err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(len(header), 1)
	return f.SetCellStyle(sheet, "A1", end, style)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// styleRange styles data rows 2..lastRow of columns fromCol..toCol.
func styleRange(f *excelize.File, sheet string, fromCol, toCol, lastRow, style int) error {
	if lastRow < 2 || toCol < fromCol {
		return nil
	}
	start, _ := excelize.CoordinatesToCellName(fromCol, 2)
	end, _ := excelize.CoordinatesToCellName(toCol, lastRow)
	return f.SetCellStyle(sheet, start, end, style)
}

// cellValue leaves absent values as empty cells.
func cellValue(v ledger.Value) any {
	if n, ok := v.Get(); ok {
		return n
	}
	return nil
}

func columnOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i + 1
		}
	}
	return 0
}
