// Package pipeline turns batches of facility statements into summaries,
// enrollment matches and findings, either directly through Analyze or as
// queued jobs run by an Orchestrator.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/edufin/internal/facility"
	"github.com/dgallion1/edufin/internal/issues"
	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/dgallion1/edufin/internal/parser"
	"github.com/dgallion1/edufin/internal/registry"
	"github.com/dgallion1/edufin/internal/resolver"
)

// ErrNoFacilities is returned when a batch produced no facility summary.
var ErrNoFacilities = errors.New("no processable facilities")

// Input is one facility statement. Data is used when set, otherwise the
// statement is read from Path.
type Input struct {
	Facility string
	Filename string
	Path     string
	Data     []byte
}

// FromStatement builds an Input for a statement found on disk.
func FromStatement(st facility.Statement) Input {
	return Input{Facility: st.Facility, Filename: filepath.Base(st.Path), Path: st.Path}
}

// FacilityError reports a facility whose statement could not be analyzed.
type FacilityError struct {
	Facility string
	File     string
	Err      error
}

func (e *FacilityError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Facility, e.File, e.Err)
}

func (e *FacilityError) Unwrap() error { return e.Err }

// Result is the outcome of a batch. Facilities are sorted by name.
type Result struct {
	Facilities []ledger.FacilityReport `json:"facilities"`
	Errors     []*FacilityError        `json:"-"`
}

// Find returns the report of the named facility.
func (r *Result) Find(name string) (ledger.FacilityReport, bool) {
	if r == nil {
		return ledger.FacilityReport{}, false
	}
	for _, fr := range r.Facilities {
		if fr.Summary.Facility == name {
			return fr, true
		}
	}
	return ledger.FacilityReport{}, false
}

// Options configure Analyze. An empty Catalog, nil Rules and a
// non-positive MaxConcurrent fall back to DefaultOptions; Parser is used as
// given.
type Options struct {
	Catalog       resolver.Catalog
	Rules         []issues.Rule
	Index         *registry.Index
	Parser        parser.Options
	MaxConcurrent int

	Log     *slog.Logger
	Stats   *ExtractionStats
	Metrics *Metrics

	// OnDone is called once per input after it has been processed.
	OnDone func(in Input, err error)
}

// DefaultOptions returns the built-in catalog and rules.
func DefaultOptions() Options {
	return Options{
		Catalog:       resolver.DefaultCatalog(),
		Rules:         issues.DefaultRules,
		Parser:        parser.DefaultOptions(),
		MaxConcurrent: 5,
	}
}

type outcome struct {
	report ledger.FacilityReport
	err    *FacilityError
}

// Analyze processes every input concurrently, bounded by MaxConcurrent.
// A failed statement only drops its own facility. When ctx is cancelled no
// further inputs are started and the partial result is returned with the
// context error. ErrNoFacilities is returned with the result when nothing
// succeeded.
func Analyze(ctx context.Context, inputs []Input, opts Options) (*Result, error) {
	if len(inputs) == 0 {
		return &Result{Facilities: []ledger.FacilityReport{}}, ErrNoFacilities
	}
	opts = withDefaults(opts)

	sem := make(chan struct{}, opts.MaxConcurrent)
	results := make(chan outcome, len(inputs))
	var wg sync.WaitGroup

schedule:
	for _, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break schedule
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(in Input) {
			defer wg.Done()
			defer func() { <-sem }()
			results <- analyzeOne(in, opts)
		}(in)
	}
	wg.Wait()
	close(results)

	res := &Result{Facilities: []ledger.FacilityReport{}}
	for o := range results {
		if o.err != nil {
			res.Errors = append(res.Errors, o.err)
			continue
		}
		res.Facilities = append(res.Facilities, o.report)
	}
	sort.SliceStable(res.Facilities, func(i, j int) bool {
		return res.Facilities[i].Summary.Facility < res.Facilities[j].Summary.Facility
	})
	sort.SliceStable(res.Errors, func(i, j int) bool {
		return res.Errors[i].Facility < res.Errors[j].Facility
	})

	opts.Log.Info("analysis finished",
		"inputs", len(inputs),
		"facilities", len(res.Facilities),
		"errors", len(res.Errors),
	)

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if len(res.Facilities) == 0 {
		return res, fmt.Errorf("%w: %d of %d statements failed", ErrNoFacilities, len(res.Errors), len(inputs))
	}
	return res, nil
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if len(opts.Catalog) == 0 {
		opts.Catalog = def.Catalog
	}
	if opts.Rules == nil {
		opts.Rules = def.Rules
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = def.MaxConcurrent
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return opts
}

func analyzeOne(in Input, opts Options) outcome {
	name := in.Facility
	if name == "" {
		name = strings.TrimSuffix(in.Filename, filepath.Ext(in.Filename))
	}
	log := opts.Log.With("facility", name, "file", in.Filename)

	report, err := buildReport(name, in, opts, log)
	opts.Metrics.facilityDone(err)
	if opts.OnDone != nil {
		opts.OnDone(in, err)
	}
	if err != nil {
		log.Warn("facility skipped", "error", err)
		return outcome{err: &FacilityError{Facility: name, File: in.Filename, Err: err}}
	}
	log.Debug("facility analyzed", "records", len(report.Records), "issues", len(report.Issues))
	return outcome{report: report}
}

func buildReport(name string, in Input, opts Options, log *slog.Logger) (ledger.FacilityReport, error) {
	data := in.Data
	if data == nil {
		b, err := os.ReadFile(in.Path)
		if err != nil {
			return ledger.FacilityReport{}, fmt.Errorf("%w: %v", parser.ErrSourceUnreadable, err)
		}
		data = b
	}

	start := time.Now()
	records, err := parser.ExtractFile(bytes.NewReader(data), in.Filename, opts.Parser)
	elapsed := time.Since(start)
	format := strings.ToLower(filepath.Ext(in.Filename))
	if opts.Stats != nil {
		opts.Stats.Record(format, elapsed)
	}
	opts.Metrics.extracted(format, elapsed)
	if err != nil {
		return ledger.FacilityReport{}, err
	}
	log.Debug("statement extracted", "records", len(records), "duration_ms", elapsed.Milliseconds())

	summary := resolver.BuildSummary(records, opts.Catalog)
	summary.Facility = name
	summary.FacilityType = facility.Classify(name).Category

	enrollment := opts.Index.Match(name)
	cost := issues.CostPerEnrolled(summary.Get(ledger.FieldOperatingCosts), enrollment)
	summary = summary.WithEnrollment(enrollment, cost)

	return ledger.FacilityReport{
		Summary: summary,
		Records: records,
		Issues:  issues.Detect(summary, enrollment, opts.Rules),
		Source:  in.Filename,
	}, nil
}
