package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/edufin/internal/config"
	"github.com/dgallion1/edufin/internal/issues"
	"github.com/dgallion1/edufin/internal/parser"
	"github.com/dgallion1/edufin/internal/registry"
	"github.com/dgallion1/edufin/internal/resolver"
)

// Orchestrator runs queued analysis jobs on a fixed pool of workers.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	index   *registry.Ref
	catalog resolver.Catalog
	stats   *ExtractionStats
	metrics *Metrics
	log     *slog.Logger
	cfg     config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Workers read the registry index
// from index at the start of every job, so a reload never affects a job
// already running.
func NewOrchestrator(cfg config.Config, index *registry.Ref, catalog resolver.Catalog, metrics *Metrics, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		index:   index,
		catalog: catalog,
		stats:   NewExtractionStats(time.Hour),
		metrics: metrics,
		log:     log,
		cfg:     cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.index, o.analyzeOptions(), o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

func (o *Orchestrator) analyzeOptions() Options {
	return Options{
		Catalog: o.catalog,
		Rules:   issues.DefaultRules,
		Parser: parser.Options{
			PDFFallbackRows:      o.cfg.PDFFallbackRows,
			PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext,
		},
		MaxConcurrent: o.cfg.MaxConcurrentExtract,
		Stats:         o.stats,
		Metrics:       o.metrics,
	}
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Index returns the registry index new jobs will use.
func (o *Orchestrator) Index() *registry.Index {
	return o.index.Load()
}

// Catalog returns the line-item catalog.
func (o *Orchestrator) Catalog() resolver.Catalog {
	return o.catalog
}

// Stats returns the extraction latency tracker.
func (o *Orchestrator) Stats() *ExtractionStats {
	return o.stats
}
