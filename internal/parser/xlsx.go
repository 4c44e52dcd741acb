package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/xuri/excelize/v2"
)

// XLSXParser handles statements kept as spreadsheets. Each sheet is a page
// holding one table.
type XLSXParser struct{}

func (p *XLSXParser) Parse(r io.Reader, filename string) (*ledger.Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	doc := &ledger.Document{Title: trimExt(filename)}
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		page := &ledger.Page{Number: i + 1}
		if len(rows) > 0 {
			page.Tables = []ledger.Table{{Rows: rows}}
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}
