package parser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
)

// CSVParser handles statements exported as CSV. The whole file is one table.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*ledger.Document, error) {
	br := bufio.NewReader(r)
	reader := csv.NewReader(br)
	reader.Comma = SniffDelimiter(br)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &ledger.Document{
		Title: trimExt(filename),
		Pages: []*ledger.Page{{Number: 1}},
	}
	if len(records) > 0 {
		doc.Pages[0].Tables = []ledger.Table{{Rows: records}}
	}
	return doc, nil
}

// SniffDelimiter peeks at the first line and picks ';' when it outnumbers
// ','. Polish exports use ';' because ',' is the decimal separator.
func SniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(4096)
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	if strings.Count(line, "\t") > strings.Count(line, ",") {
		return '\t'
	}
	return ','
}
