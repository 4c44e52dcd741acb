package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/edufin/internal/facility"
	"github.com/dgallion1/edufin/internal/issues"
	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/dgallion1/edufin/internal/parser"
	"github.com/dgallion1/edufin/internal/pipeline"
	"github.com/dgallion1/edufin/internal/registry"
	"github.com/dgallion1/edufin/internal/report"
	"github.com/dgallion1/edufin/internal/resolver"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	dir         string
	year        string
	outXLSX     string
	outDOCX     string
	catalog     string
	concurrency int
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	o := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze every facility statement under a directory",
		Long: `Finds the profit and loss statements of each facility (files whose name
contains "rachunek" and the year), resolves the summary line items, matches
enrollment from the registry and writes the comparison workbook and the
findings document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), root, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.dir, "dir", ".", "root directory with one subdirectory per facility")
	f.StringVar(&o.year, "year", root.cfg.ReportYear, "statement year")
	f.StringVar(&o.outXLSX, "out-xlsx", "", "comparison workbook (default porownanie_placowek_<year>.xlsx)")
	f.StringVar(&o.outDOCX, "out-docx", "", "findings document (default uwagi_<year>.docx)")
	f.StringVar(&o.catalog, "catalog", root.cfg.CatalogFile, "YAML line-item catalog")
	f.IntVar(&o.concurrency, "concurrency", root.cfg.MaxConcurrentExtract, "statements extracted in parallel")
	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, root *rootOptions, o *analyzeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := root.logger()
	if o.outXLSX == "" {
		o.outXLSX = fmt.Sprintf("porownanie_placowek_%s.xlsx", o.year)
	}
	if o.outDOCX == "" {
		o.outDOCX = fmt.Sprintf("uwagi_%s.docx", o.year)
	}

	catalog, err := resolver.CatalogOrDefault(o.catalog)
	if err != nil {
		return err
	}
	statements, err := facility.FindStatements(o.dir, o.year)
	if err != nil {
		return err
	}
	idx, err := registry.LoadIndex(root.registry, root.filter(), log)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %d statements, %d registry entries\n", bold.Sprint("Found"), len(statements), idx.Len())

	inputs := make([]pipeline.Input, len(statements))
	for i, st := range statements {
		inputs[i] = pipeline.FromStatement(st)
	}
	res, err := pipeline.Analyze(ctx, inputs, pipeline.Options{
		Catalog: catalog,
		Rules:   issues.DefaultRules,
		Index:   idx,
		Parser: parser.Options{
			PDFFallbackRows:      root.cfg.PDFFallbackRows,
			PDFFallbackPdftotext: root.cfg.PDFFallbackPdftotext,
		},
		MaxConcurrent: o.concurrency,
		Log:           log,
	})
	if res != nil {
		for _, fe := range res.Errors {
			fmt.Fprintf(out, "%s %s\n", red.Sprint("FAILED"), fe.Error())
		}
	}
	if err != nil {
		return err
	}

	for _, fr := range res.Facilities {
		printFacility(out, fr)
	}

	wb, err := report.Workbook(res.Facilities, catalog.Fields())
	if err != nil {
		return err
	}
	defer wb.Close()
	if err := wb.SaveAs(o.outXLSX); err != nil {
		return fmt.Errorf("save %s: %w", o.outXLSX, err)
	}

	doc, err := os.Create(o.outDOCX)
	if err != nil {
		return err
	}
	if err := report.WriteIssuesDOCX(doc, o.year, res.Facilities); err != nil {
		doc.Close()
		return err
	}
	if err := doc.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s, %s\n", green.Sprint("Saved"), o.outXLSX, o.outDOCX)
	return nil
}

func printFacility(out io.Writer, fr ledger.FacilityReport) {
	s := fr.Summary
	fmt.Fprintf(out, "%s  %s\n", bold.Sprint(s.Facility), cyan.Sprint(s.FacilityType))
	fmt.Fprintf(out, "  koszty operacyjne: %s  wynik netto: %s  uczniowie: %s  koszt na ucznia: %s\n",
		amount(s.Get(ledger.FieldOperatingCosts)),
		amount(s.Get(ledger.FieldNetResult)),
		orDash(s.Enrollment.String()),
		amount(s.CostPerEnrolled),
	)
	if len(fr.Issues) == 0 {
		fmt.Fprintf(out, "  %s\n", green.Sprint("brak uwag"))
		return
	}
	for _, item := range fr.Issues {
		fmt.Fprintf(out, "  %s %s\n", yellow.Sprint("!"), item)
	}
}

func amount(v ledger.Value) string {
	if n, ok := v.Get(); ok {
		return issues.FormatAmount(n)
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
