package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles statements written as GFM pipe tables. A
// thematic break (---) starts a new page.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*ledger.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))

	doc := &ledger.Document{Title: trimExt(filename)}
	page := &ledger.Page{Number: 1}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 && doc.Title == trimExt(filename) {
				if t := extractText(node, src); t != "" {
					doc.Title = t
				}
			}
		case *ast.ThematicBreak:
			doc.Pages = append(doc.Pages, page)
			page = &ledger.Page{Number: page.Number + 1}
		case *east.Table:
			page.Tables = append(page.Tables, markdownTable(node, src))
		}
	}
	doc.Pages = append(doc.Pages, page)
	return doc, nil
}

func markdownTable(tbl *east.Table, src []byte) ledger.Table {
	var out ledger.Table
	for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
		switch row.(type) {
		case *east.TableHeader, *east.TableRow:
		default:
			continue
		}
		var cells []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			if _, ok := c.(*east.TableCell); ok {
				cells = append(cells, extractText(c, src))
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			// Recurse for nested inlines.
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
