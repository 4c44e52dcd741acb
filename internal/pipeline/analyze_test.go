package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgallion1/edufin/internal/config"
	"github.com/dgallion1/edufin/internal/facility"
	"github.com/dgallion1/edufin/internal/issues"
	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/dgallion1/edufin/internal/parser"
	"github.com/dgallion1/edufin/internal/registry"
	"github.com/dgallion1/edufin/internal/resolver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// statementCSV renders a minimal profit and loss statement with the same
// value in both period columns.
func statementCSV(sales, costs, net string) []byte {
	return []byte("Wyszczególnienie;Poprzedni;Bieżący\n" +
		"A. Przychody netto z podstawowej działalności operacyjnej;" + sales + ";" + sales + "\n" +
		"B. Koszty działalności operacyjnej;" + costs + ";" + costs + "\n" +
		"L. Zysk (strata) netto;" + net + ";" + net + "\n")
}

func sampleInputs() []Input {
	return []Input{
		{Facility: "Szkola Podstawowa nr 4", Filename: "rachunek_2024.csv", Data: statementCSV("1000,00", "900,00", "-1 234,50")},
		{Facility: "Przedszkole nr 7", Filename: "rachunek_2024.csv", Data: statementCSV("1000,00", "900,00", "100,00")},
		{Facility: "Miejski Zespol Zlobkow", Filename: "rachunek_2024.csv", Data: statementCSV("1000,00", "3000,00", "0,00")},
	}
}

func sampleIndex() *registry.Index {
	count := func(n float64) registry.Count { return registry.Count{Value: ledger.Some(n)} }
	return registry.BuildIndex([]registry.Row{
		{Name: "Przedszkole Miejskie nr 7 w Raciborzu", Students: count(50)},
		{Name: "Miejski Zespół Żłobków w Raciborzu", Students: count(30)},
	})
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Index = sampleIndex()
	opts.Log = quietLog
	return opts
}

func TestAnalyze_ThreeFacilities(t *testing.T) {
	res, err := Analyze(context.Background(), sampleInputs(), testOptions())
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Len(t, res.Facilities, 3)

	names := []string{}
	for _, fr := range res.Facilities {
		names = append(names, fr.Summary.Facility)
	}
	assert.Equal(t, []string{"Miejski Zespol Zlobkow", "Przedszkole nr 7", "Szkola Podstawowa nr 4"}, names)

	preschool, ok := res.Find("Przedszkole nr 7")
	require.True(t, ok)
	assert.Equal(t, facility.CategoryPreschool, preschool.Summary.FacilityType)
	assert.Equal(t, ledger.Some(50), preschool.Summary.Enrollment)
	assert.Equal(t, ledger.Some(18), preschool.Summary.CostPerEnrolled)
	assert.Equal(t, []string{}, preschool.Issues)
	assert.Len(t, preschool.Records, 4)

	school, ok := res.Find("Szkola Podstawowa nr 4")
	require.True(t, ok)
	assert.False(t, school.Summary.Enrollment.Valid)
	assert.False(t, school.Summary.CostPerEnrolled.Valid)
	assert.Equal(t, ledger.Some(-1234.5), school.Summary.Get(ledger.FieldNetResult))
	assert.Equal(t, []string{"Wynik netto ujemny (-1,234.50 PLN).", issues.MsgEnrollmentMissing}, school.Issues)

	nursery, ok := res.Find("Miejski Zespol Zlobkow")
	require.True(t, ok)
	assert.Equal(t, facility.CategoryNursery, nursery.Summary.FacilityType)
	assert.Equal(t, ledger.Some(30), nursery.Summary.Enrollment)
	assert.Equal(t, ledger.Some(100), nursery.Summary.CostPerEnrolled)
	assert.Equal(t, []string{issues.MsgOperatingDeficit}, nursery.Issues)
	assert.Equal(t, "rachunek_2024.csv", nursery.Source)
}

func TestAnalyze_FailedStatementOnlyDropsItsFacility(t *testing.T) {
	inputs := append(sampleInputs(), Input{
		Facility: "Przedszkole nr 9",
		Filename: "rachunek_2024.csv",
		Path:     filepath.Join(t.TempDir(), "missing.csv"),
	})

	reg := prometheus.NewRegistry()
	opts := testOptions()
	opts.Metrics = NewMetrics(reg, nil)
	opts.Stats = NewExtractionStats(time.Hour)
	var done atomic.Int32
	opts.OnDone = func(Input, error) { done.Add(1) }

	res, err := Analyze(context.Background(), inputs, opts)
	require.NoError(t, err)
	assert.Len(t, res.Facilities, 3)
	require.Len(t, res.Errors, 1)

	fe := res.Errors[0]
	assert.Equal(t, "Przedszkole nr 9", fe.Facility)
	assert.True(t, errors.Is(fe, parser.ErrSourceUnreadable))
	assert.Contains(t, fe.Error(), "Przedszkole nr 9 (rachunek_2024.csv)")

	assert.Equal(t, int32(4), done.Load())
	assert.Equal(t, 3.0, testutil.ToFloat64(opts.Metrics.FacilitiesProcessed.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.FacilitiesProcessed.WithLabelValues(OutcomeError)))
	assert.Equal(t, 3, opts.Stats.Snapshot().ByFormat[".csv"].Count)
}

func TestAnalyze_UnsupportedFormatIsPerFacility(t *testing.T) {
	inputs := []Input{
		{Facility: "Przedszkole nr 7", Filename: "rachunek_2024.odt", Data: []byte("x")},
		sampleInputs()[0],
	}
	res, err := Analyze(context.Background(), inputs, testOptions())
	require.NoError(t, err)
	assert.Len(t, res.Facilities, 1)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error(), "unsupported file extension")
}

func TestAnalyze_NoFacilities(t *testing.T) {
	res, err := Analyze(context.Background(), nil, testOptions())
	assert.ErrorIs(t, err, ErrNoFacilities)
	assert.Empty(t, res.Facilities)

	missing := Input{Facility: "x", Filename: "a.csv", Path: filepath.Join(t.TempDir(), "a.csv")}
	res, err = Analyze(context.Background(), []Input{missing}, testOptions())
	assert.ErrorIs(t, err, ErrNoFacilities)
	assert.Len(t, res.Errors, 1)
}

func TestAnalyze_CancelledContextSchedulesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Analyze(ctx, sampleInputs(), testOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Facilities)
	assert.Empty(t, res.Errors)
}

func TestAnalyze_FacilityNameFromFilename(t *testing.T) {
	in := sampleInputs()[1]
	in.Facility = ""
	in.Filename = "Przedszkole nr 7.csv"

	res, err := Analyze(context.Background(), []Input{in}, testOptions())
	require.NoError(t, err)
	assert.Equal(t, "Przedszkole nr 7", res.Facilities[0].Summary.Facility)
	assert.Equal(t, ledger.Some(50), res.Facilities[0].Summary.Enrollment)
}

func TestAnalyze_ReadsFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rachunek_2024.csv")
	require.NoError(t, os.WriteFile(path, statementCSV("10,00", "20,00", "-10,00"), 0o644))

	in := FromStatement(facility.Statement{Facility: "Przedszkole nr 7", Path: path})
	res, err := Analyze(context.Background(), []Input{in}, testOptions())
	require.NoError(t, err)
	assert.Equal(t, ledger.Some(20), res.Facilities[0].Summary.Get(ledger.FieldOperatingCosts))
}

func TestOrchestrator_RunsJob(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 4, MaxConcurrentExtract: 2, JobTTL: time.Hour}
	reg := prometheus.NewRegistry()
	orch := NewOrchestrator(cfg, registry.NewRef(sampleIndex()), resolver.DefaultCatalog(), NewMetrics(reg, nil), quietLog)
	orch.Start(context.Background())
	defer orch.Stop()

	inputs := append(sampleInputs(), Input{Facility: "Przedszkole nr 9", Filename: "x.odt", Data: []byte("x")})
	job := NewJob(inputs, "2024")
	require.NoError(t, orch.Submit(job))

	require.Eventually(t, func() bool {
		return orch.GetJob(job.ID).Snapshot().Finished()
	}, 5*time.Second, 10*time.Millisecond)

	snap := job.Snapshot()
	assert.Equal(t, StatusPartial, snap.Status)
	assert.Equal(t, 4, snap.Progress.FilesProcessed)
	assert.Equal(t, 3, snap.Progress.FacilitiesOK)
	require.Len(t, snap.Progress.Errors, 1)
	assert.Contains(t, snap.Progress.Errors[0], "x.odt")

	res := job.Result()
	require.NotNil(t, res)
	assert.Len(t, res.Facilities, 3)
	assert.Equal(t, 4, orch.Stats().Snapshot().Count)
}

func TestOrchestrator_FailedJob(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 4, MaxConcurrentExtract: 1, JobTTL: time.Hour}
	orch := NewOrchestrator(cfg, registry.NewRef(nil), resolver.DefaultCatalog(), nil, quietLog)
	orch.Start(context.Background())
	defer orch.Stop()

	job := NewJob([]Input{{Facility: "x", Filename: "x.odt", Data: []byte("x")}}, "2024")
	require.NoError(t, orch.Submit(job))
	require.Eventually(t, func() bool { return job.Snapshot().Finished() }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, StatusFailed, job.Snapshot().Status)
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	orch := NewOrchestrator(cfg, registry.NewRef(nil), resolver.DefaultCatalog(), nil, quietLog)

	first := NewJob(sampleInputs(), "2024")
	second := NewJob(sampleInputs(), "2024")
	require.NoError(t, orch.Submit(first))
	assert.Error(t, orch.Submit(second))
	assert.Equal(t, StatusFailed, second.Snapshot().Status)
	assert.Equal(t, 1, orch.QueueDepth())
	assert.NotNil(t, orch.GetJob(second.ID))
}
