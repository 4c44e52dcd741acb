package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_PipeTable(t *testing.T) {
	input := `# Rachunek zysków i strat 2024

| Wyszczególnienie | Poprzedni | Bieżący |
|---|---:|---:|
| A. Przychody netto z podstawowej działalności operacyjnej | 1 000,00 | 2 000,00 |
| B. Koszty działalności operacyjnej | 900,00 | 2 500,00 |
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "rzis.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Rachunek zysków i strat 2024" {
		t.Errorf("expected title from h1, got %q", doc.Title)
	}
	if doc.TableCount() != 1 {
		t.Fatalf("expected 1 table, got %d", doc.TableCount())
	}

	rows := doc.Pages[0].Tables[0].Rows
	// Header row plus two body rows.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Wyszczególnienie" {
		t.Errorf("expected header cell %q, got %q", "Wyszczególnienie", rows[0][0])
	}
	if rows[2][0] != "B. Koszty działalności operacyjnej" {
		t.Errorf("unexpected label %q", rows[2][0])
	}
	if rows[2][2] != "2 500,00" {
		t.Errorf("expected %q, got %q", "2 500,00", rows[2][2])
	}
}

func TestMarkdownParser_ThematicBreakStartsPage(t *testing.T) {
	input := `| a | b |
|---|---|
| x | 1,00 |

---

| a | b |
|---|---|
| y | 2,00 |
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "two.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "two" {
		t.Errorf("expected title %q, got %q", "two", doc.Title)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if len(doc.Pages[1].Tables) != 1 {
		t.Fatalf("expected 1 table on page 2, got %d", len(doc.Pages[1].Tables))
	}
}

func TestMarkdownParser_NoTables(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader("Just prose, no tables."), "prose.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.TableCount() != 0 {
		t.Errorf("expected 0 tables, got %d", doc.TableCount())
	}
	if recs := Records(doc); len(recs) != 0 {
		t.Errorf("expected no records, got %d", len(recs))
	}
}
