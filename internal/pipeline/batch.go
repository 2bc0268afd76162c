package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rubilakse/docparse/internal/entity"
	"github.com/rubilakse/docparse/internal/extract"
)

// BatchResult is the outcome slot for one input file. Failed documents
// become error records; their siblings are unaffected.
type BatchResult struct {
	Index    int
	Filename string
	Status   string // "processed" | "error"
	Document *entity.ParsedDocument
	Err      error
}

const (
	StatusProcessed = "processed"
	StatusError     = "error"
)

// BatchOptions tune concurrent batch processing.
type BatchOptions struct {
	Workers     int           // default 4
	FileTimeout time.Duration // per-file budget, default 2m
}

// ProcessBatch runs every file through the pipeline on a worker pool.
// Results land at the same index as their input, so callers can line
// them up against the submitted files.
func (p *Processor) ProcessBatch(ctx context.Context, files []extract.File, opts BatchOptions) []BatchResult {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.FileTimeout <= 0 {
		opts.FileTimeout = 2 * time.Minute
	}
	if opts.Workers > len(files) {
		opts.Workers = len(files)
	}

	results := make([]BatchResult, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				f := files[i]
				fctx, cancel := context.WithTimeout(ctx, opts.FileTimeout)
				doc, err := p.ProcessFile(fctx, f)
				cancel()

				if err != nil {
					p.logger.Error("batch.file_failed",
						"worker_id", workerID, "file", f.Name, "error", err)
					results[i] = BatchResult{Index: i, Filename: f.Name, Status: StatusError, Err: err}
					continue
				}
				results[i] = BatchResult{Index: i, Filename: f.Name, Status: StatusProcessed, Document: &doc}
			}
		}(w + 1)
	}

	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// unsubmitted files become cancellation records
			results[i] = BatchResult{Index: i, Filename: files[i].Name, Status: StatusError, Err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
