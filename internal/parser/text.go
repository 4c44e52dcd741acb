package parser

import (
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
)

// TextParser handles column-aligned plain text, such as pdftotext -layout
// output. Form feeds separate pages; blank lines separate tables.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*ledger.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := layoutDocument(string(data))
	doc.Title = trimExt(filename)
	return doc, nil
}

// Two or more spaces (or a tab) separate columns in layout text.
var columnGap = regexp.MustCompile(`\t+| {2,}`)

func layoutDocument(text string) *ledger.Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	doc := &ledger.Document{}
	for i, pageText := range strings.Split(text, "\f") {
		page := &ledger.Page{Number: i + 1}
		var current ledger.Table
		flush := func() {
			if len(current.Rows) > 0 {
				page.Tables = append(page.Tables, current)
				current = ledger.Table{}
			}
		}
		for _, line := range strings.Split(pageText, "\n") {
			if strings.TrimSpace(line) == "" {
				flush()
				continue
			}
			current.Rows = append(current.Rows, splitLayoutLine(line))
		}
		flush()
		if strings.TrimSpace(pageText) == "" && len(page.Tables) == 0 && i > 0 {
			continue
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

func splitLayoutLine(line string) []string {
	line = strings.ReplaceAll(line, "\u00a0", " ")
	parts := columnGap.Split(strings.TrimSpace(line), -1)
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}
