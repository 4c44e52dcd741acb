package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
	"golang.org/x/net/html"
)

// HTMLParser handles statements published as HTML tables.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*ledger.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &ledger.Document{Title: trimExt(filename)}
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	page := &ledger.Page{Number: 1}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer":
				return
			case "table":
				// Nested tables are collected after their parent.
				t, inner := htmlTable(n)
				page.Tables = append(page.Tables, t)
				for _, in := range inner {
					walk(in)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	doc.Pages = []*ledger.Page{page}
	return doc, nil
}

// htmlTable collects the rows of a table and returns nested tables found in
// its cells separately.
func htmlTable(table *html.Node) (ledger.Table, []*html.Node) {
	var out ledger.Table
	var nested []*html.Node

	var rows func(*html.Node)
	rows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				rows(c)
			case "tr":
				var cells []string
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						cells = append(cells, cellText(cell, &nested))
					}
				}
				out.Rows = append(out.Rows, cells)
			}
		}
	}
	rows(table)
	return out, nested
}

// cellText returns the text of a cell, excluding nested tables, which are
// appended to nested instead.
func cellText(n *html.Node, nested *[]*html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			*nested = append(*nested, n)
			return
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte(' ')
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
