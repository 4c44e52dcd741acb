package parser

import (
	"strings"
	"testing"
)

func TestTextParser_LayoutColumns(t *testing.T) {
	input := "Wyszczególnienie                         Poprzedni     Bieżący\n" +
		"A. Przychody netto z podstawowej działalności operacyjnej    1 000,00    2 000,00\n" +
		"B. Koszty działalności operacyjnej       900,50        1 950,25\n"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "rzis.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "rzis" {
		t.Errorf("expected title %q, got %q", "rzis", doc.Title)
	}
	if doc.TableCount() != 1 {
		t.Fatalf("expected 1 table, got %d", doc.TableCount())
	}
	rows := doc.Pages[0].Tables[0].Rows
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	want := []string{"B. Koszty działalności operacyjnej", "900,50", "1 950,25"}
	if len(rows[2]) != len(want) {
		t.Fatalf("expected %d cells, got %d: %q", len(want), len(rows[2]), rows[2])
	}
	for i, w := range want {
		if rows[2][i] != w {
			t.Errorf("cell[%d]: expected %q, got %q", i, w, rows[2][i])
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
	if doc.TableCount() != 0 {
		t.Errorf("expected 0 tables for empty input, got %d", doc.TableCount())
	}
}

func TestTextParser_BlankLinesSeparateTables(t *testing.T) {
	input := "A. Przychody  1,00  2,00\n\n\n\nB. Koszty  3,00  4,00"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.TableCount() != 2 {
		t.Fatalf("expected 2 tables, got %d", doc.TableCount())
	}
}

func TestTextParser_FormFeedStartsPage(t *testing.T) {
	input := "A. Przychody  1,00  2,00\fB. Koszty  3,00  4,00"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "pages.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if doc.Pages[1].Number != 2 {
		t.Errorf("expected second page number 2, got %d", doc.Pages[1].Number)
	}
}

func TestTextParser_NoBreakSpaceKeepsNumberTogether(t *testing.T) {
	input := "B.V. Wynagrodzenia   1\u00a0234,00   5\u00a0678,00"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "nbsp.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := doc.Pages[0].Tables[0].Rows[0]
	if len(row) != 3 {
		t.Fatalf("expected 3 cells, got %q", row)
	}
	if row[1] != "1 234,00" {
		t.Errorf("expected %q, got %q", "1 234,00", row[1])
	}
}
