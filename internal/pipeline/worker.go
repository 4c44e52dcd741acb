package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/edufin/internal/registry"
)

// Worker processes analysis jobs one at a time.
type Worker struct {
	index *registry.Ref
	opts  Options
	log   *slog.Logger
}

func NewWorker(index *registry.Ref, opts Options, log *slog.Logger) *Worker {
	return &Worker{index: index, opts: opts, log: log}
}

// Process analyzes every statement of job and records the result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	job.SetStatus(StatusAnalyzing, "extracting statements")

	opts := w.opts
	opts.Index = w.index.Load()
	opts.Log = log
	opts.OnDone = func(in Input, err error) {
		job.FileDone(err == nil)
		if err != nil {
			job.AddError(fmt.Sprintf("%s: %v", in.Filename, err))
		}
	}

	res, err := Analyze(ctx, job.Inputs(), opts)
	switch {
	case errors.Is(err, ErrNoFacilities):
		log.Error("no facility could be analyzed", "error", err)
		job.AddError(err.Error())
		job.Finish(res, StatusFailed)
	case err != nil:
		log.Error("analysis interrupted", "error", err)
		job.AddError(err.Error())
		job.Finish(res, StatusFailed)
	case len(res.Errors) > 0:
		log.Warn("analysis finished with errors", "facilities", len(res.Facilities), "errors", len(res.Errors))
		job.Finish(res, StatusPartial)
	default:
		log.Info("analysis completed", "facilities", len(res.Facilities))
		job.Finish(res, StatusCompleted)
	}
}
