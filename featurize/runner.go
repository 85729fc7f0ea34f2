// Package featurize runs block feature extraction across documents.
// It fans documents out to a bounded worker pool and reassembles the
// per-document tables in input order, so one page's rows stay
// contiguous in the combined output.
package featurize

import (
	"context"
	"sync/atomic"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/bloom"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the worker count used when Runner.Workers is unset.
const DefaultWorkers = 8

// dedupFalsePositiveRate is the acceptable false positive rate for URL
// deduplication.
const dedupFalsePositiveRate = 0.01

// Runner coordinates feature extraction across a set of documents.
type Runner struct {
	Featurizer domsift.Featurizer
	Workers    int
	Dedup      bool
}

// Result holds the outcome of a featurize run.
type Result struct {
	Table     *domsift.FeatureTable
	Extracted int
	Failed    int
	Skipped   int
}

// ProgressEvent reports progress during a featurize run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressSkipped
	ProgressFinished
)

// ProgressFunc is a callback for reporting featurize progress.
type ProgressFunc func(event ProgressEvent)

// featurizeResult holds the outcome of processing a single document.
type featurizeResult struct {
	position int
	url      string
	table    *domsift.FeatureTable
	err      error
}

// Run extracts block features from every document and returns the
// combined table. A document that fails contributes no rows, increments
// Result.Failed, and never stops its siblings. The progress callback,
// if provided, receives events as extraction proceeds.
func (r *Runner) Run(ctx context.Context, docs []*domsift.Document, progress ProgressFunc) (*Result, error) {
	if r.Featurizer == nil {
		return nil, domsift.Errorf(domsift.EINVALID, "featurizer required")
	}

	res := &Result{Table: &domsift.FeatureTable{}}

	// Drop documents whose URL was already seen so repeated pages
	// cannot dominate the dataset.
	kept := docs
	if r.Dedup {
		seen := bloom.NewURLSet(uint(max(len(docs), 1)), dedupFalsePositiveRate)
		kept = make([]*domsift.Document, 0, len(docs))
		for _, doc := range docs {
			if !seen.Add(doc.URL) {
				res.Skipped++
				if progress != nil {
					progress(ProgressEvent{
						Type: ProgressSkipped,
						URL:  doc.URL,
					})
				}
				continue
			}
			kept = append(kept, doc)
		}
	}

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	total := len(kept)
	resultCh := make(chan featurizeResult, total)

	var completed atomic.Int64

	if progress != nil {
		progress(ProgressEvent{
			Type:  ProgressStarted,
			Total: total,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	go func() {
		for i, doc := range kept {
			i, doc := i, doc
			g.Go(func() error {
				resultCh <- r.processDocument(gctx, i, doc)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Collect results in input order.
	results := make([]featurizeResult, total)
	for result := range resultCh {
		completed.Add(1)
		results[result.position] = result

		if result.err != nil {
			res.Failed++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: int(completed.Load()),
					Total:     total,
					URL:       result.url,
					Error:     result.err,
				})
			}
			continue
		}
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: int(completed.Load()),
				Total:     total,
				URL:       result.url,
			})
		}
	}

	for _, result := range results {
		if result.err != nil {
			continue
		}
		if err := res.Table.Append(result.table); err != nil {
			return nil, err
		}
		res.Extracted++
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: total,
			Total:     total,
		})
	}

	return res, nil
}

// processDocument extracts features from a single document.
func (r *Runner) processDocument(ctx context.Context, position int, doc *domsift.Document) featurizeResult {
	result := featurizeResult{position: position, url: doc.URL}

	if err := ctx.Err(); err != nil {
		result.err = err
		return result
	}

	table, err := r.Featurizer.Featurize(doc)
	if err != nil {
		result.err = err
		return result
	}

	result.table = table
	return result
}
