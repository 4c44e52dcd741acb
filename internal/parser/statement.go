package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/edufin/internal/ledger"
)

// ErrSourceUnreadable marks a statement that could not be opened or decoded.
var ErrSourceUnreadable = errors.New("statement source unreadable")

// ExtractStatement decodes a statement with p and returns its records in
// document order. A statement without tables yields no records and no error.
func ExtractStatement(p Parser, r io.Reader, filename string) ([]ledger.Record, error) {
	doc, err := p.Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, filename, err)
	}
	return Records(doc), nil
}

// ExtractFile picks the parser for filename and extracts its records.
func ExtractFile(r io.Reader, filename string, opts Options) ([]ledger.Record, error) {
	p, err := ForFileWith(filename, opts)
	if err != nil {
		return nil, err
	}
	return ExtractStatement(p, r, filename)
}

// Records walks pages, tables and rows in order and keeps every row that
// normalizes to a record.
func Records(doc *ledger.Document) []ledger.Record {
	if doc == nil {
		return nil
	}
	records := []ledger.Record{}
	for _, page := range doc.Pages {
		for _, table := range page.Tables {
			for _, row := range table.Rows {
				if rec, ok := NormalizeRow(row); ok {
					records = append(records, rec)
				}
			}
		}
	}
	return records
}
