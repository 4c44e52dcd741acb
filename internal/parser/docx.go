package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles statements written as Word tables. A DOCX has no page
// model, so all tables land on page 1 in body order.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*ledger.Document, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "edufin-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	page := &ledger.Page{Number: 1}
	for _, item := range doc.Document.Body.Items {
		tbl, ok := item.(*docx.Table)
		if !ok {
			continue
		}
		page.Tables = append(page.Tables, docxTables(tbl)...)
	}

	return &ledger.Document{
		Title: trimExt(filename),
		Pages: []*ledger.Page{page},
	}, nil
}

// docxTables flattens a table and any tables nested in its cells, outer
// table first.
func docxTables(tbl *docx.Table) []ledger.Table {
	out := []ledger.Table{{}}
	var nested []ledger.Table
	for _, row := range tbl.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					parts = append(parts, t)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
			for _, inner := range cell.Tables {
				nested = append(nested, docxTables(inner)...)
			}
		}
		out[0].Rows = append(out[0].Rows, cells)
	}
	return append(out, nested...)
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
