package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dgallion1/edufin/internal/issues"
	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// IssuesTitle is the heading of the findings documents.
func IssuesTitle(year string) string {
	return "Uwagi i potencjalne nieprawidłowości, sprawozdania " + year
}

func byName(facilities []ledger.FacilityReport) []ledger.FacilityReport {
	out := append([]ledger.FacilityReport(nil), facilities...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Summary.Facility < out[j].Summary.Facility
	})
	return out
}

// WriteIssuesDOCX writes the findings as a Word document: a title, one
// heading per facility and one bullet per finding.
func WriteIssuesDOCX(w io.Writer, year string, facilities []ledger.FacilityReport) error {
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().Justification("center").AddText(IssuesTitle(year)).Size("32").Bold()

	for _, fr := range byName(facilities) {
		doc.AddParagraph().AddText(fr.Summary.Facility).Size("28").Bold()
		for _, item := range fr.Issues {
			doc.AddParagraph().AddText("• " + item)
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// IssuesMarkdown renders the findings and a short cost table as Markdown.
func IssuesMarkdown(year string, facilities []ledger.FacilityReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", IssuesTitle(year))

	sorted := byName(facilities)
	if len(sorted) > 0 {
		b.WriteString("| placowka | koszty_operacyjne | zysk_strata_netto | liczba_uczniow | koszt_na_ucznia |\n")
		b.WriteString("|---|---:|---:|---:|---:|\n")
		for _, fr := range sorted {
			s := fr.Summary
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				escapeCell(s.Facility),
				money(s.Get(ledger.FieldOperatingCosts)),
				money(s.Get(ledger.FieldNetResult)),
				s.Enrollment.String(),
				money(s.CostPerEnrolled),
			)
		}
		b.WriteString("\n")
	}

	for _, fr := range sorted {
		fmt.Fprintf(&b, "## %s\n\n", fr.Summary.Facility)
		if len(fr.Issues) == 0 {
			b.WriteString("Brak uwag.\n\n")
			continue
		}
		for _, item := range fr.Issues {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// IssuesHTML converts IssuesMarkdown to HTML.
func IssuesHTML(year string, facilities []ledger.FacilityReport) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(IssuesMarkdown(year, facilities)), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func money(v ledger.Value) string {
	if n, ok := v.Get(); ok {
		return issues.FormatAmount(n)
	}
	return ""
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
