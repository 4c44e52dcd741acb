package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/edufin/internal/ledger"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
)

// PDFParser detects tables with tabula's geometric detector. When that
// finds nothing it can rebuild rows from ledongthuc/pdf text positions, and
// as a last resort split pdftotext -layout output into cells.
type PDFParser struct {
	FallbackRows      bool
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*ledger.Document, error) {
	// Both PDF libraries want a real file, so spool the upload.
	tmp, err := os.CreateTemp("", "edufin-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	var errs []error
	doc, err := extractTabulaTables(tmpPath)
	if err == nil && doc.TableCount() > 0 {
		doc.Title = trimExt(filename)
		return doc, nil
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("tabula: %w", err))
	}

	if p.FallbackRows {
		rowsDoc, rowsErr := extractPositionedRows(tmpPath)
		if rowsErr == nil && rowsDoc.TableCount() > 0 {
			rowsDoc.Title = trimExt(filename)
			return rowsDoc, nil
		}
		if rowsErr != nil {
			errs = append(errs, fmt.Errorf("rows: %w", rowsErr))
		} else if doc == nil {
			doc = rowsDoc
		}
	}

	if p.FallbackPdftotext {
		text, txtErr := extractPdftotext(tmpPath)
		if txtErr == nil {
			layoutDoc := layoutDocument(text)
			if layoutDoc.TableCount() > 0 {
				layoutDoc.Title = trimExt(filename)
				return layoutDoc, nil
			}
		} else {
			errs = append(errs, txtErr)
		}
	}

	// The file opened but holds no tables: that is an empty statement.
	if doc != nil {
		doc.Title = trimExt(filename)
		return doc, nil
	}
	return nil, fmt.Errorf("extract pdf tables: %w", errors.Join(errs...))
}

func extractTabulaTables(path string) (*ledger.Document, error) {
	rd, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	numPages, err := rd.PageCount()
	if err != nil {
		return nil, err
	}
	detector := tables.GetDetector("geometric")
	if detector == nil {
		return nil, errors.New("geometric table detector not registered")
	}

	doc := &ledger.Document{}
	for i := 0; i < numPages; i++ {
		page := &ledger.Page{Number: i + 1}
		doc.Pages = append(doc.Pages, page)

		pg, err := rd.GetPage(i)
		if err != nil {
			continue
		}
		fragments, err := rd.ExtractTextFragments(pg)
		if err != nil || len(fragments) == 0 {
			continue
		}

		width, _ := pg.Width()
		height, _ := pg.Height()
		mp := model.NewPage(width, height)
		mp.Number = i + 1
		for _, f := range fragments {
			mp.RawText = append(mp.RawText, model.TextFragment{
				Text:     f.Text,
				BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
				FontSize: f.FontSize,
				FontName: f.FontName,
			})
		}

		found, err := detector.Detect(mp)
		if err != nil {
			continue
		}
		for _, t := range found {
			page.Tables = append(page.Tables, tabulaTable(t))
		}
	}
	return doc, nil
}

func tabulaTable(t *model.Table) ledger.Table {
	out := ledger.Table{Rows: make([][]string, 0, len(t.Rows))}
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = c.Text
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// Horizontal gap, in points, that separates two cells of a rebuilt row.
const cellGap = 12.0

// Rough glyph advance used when the library reports no text width.
const glyphAdvance = 4.5

func extractPositionedRows(path string) (*ledger.Document, error) {
	f, rd, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc := &ledger.Document{}
	numPages := rd.NumPage()
	for i := 1; i <= numPages; i++ {
		page := &ledger.Page{Number: i}
		doc.Pages = append(doc.Pages, page)

		pg := rd.Page(i)
		if pg.V.IsNull() {
			continue
		}
		rows, err := pg.GetTextByRow()
		if err != nil {
			continue
		}

		var table ledger.Table
		for _, row := range rows {
			if cells := splitPositionedRow(row.Content); len(cells) > 0 {
				table.Rows = append(table.Rows, cells)
			}
		}
		if len(table.Rows) > 0 {
			page.Tables = append(page.Tables, table)
		}
	}
	return doc, nil
}

// splitPositionedRow joins text runs of one row into cells, starting a new
// cell wherever the horizontal gap exceeds cellGap. Runs arrive sorted by X.
func splitPositionedRow(runs pdflib.TextHorizontal) []string {
	var cells []string
	var current strings.Builder
	prevEnd := -1.0

	for _, run := range runs {
		if strings.TrimSpace(run.S) == "" && current.Len() == 0 {
			continue
		}
		if prevEnd >= 0 {
			gap := run.X - prevEnd
			switch {
			case gap > cellGap:
				cells = append(cells, strings.TrimSpace(current.String()))
				current.Reset()
			case gap > glyphAdvance/2 && !strings.HasSuffix(current.String(), " ") && !strings.HasPrefix(run.S, " "):
				current.WriteByte(' ')
			}
		}
		current.WriteString(run.S)

		width := run.W
		if width <= 0 {
			width = float64(utf8.RuneCountInString(run.S)) * glyphAdvance
		}
		prevEnd = run.X + width
	}
	if current.Len() > 0 {
		cells = append(cells, strings.TrimSpace(current.String()))
	}
	return cells
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
