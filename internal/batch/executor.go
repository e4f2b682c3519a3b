// Package batch runs a homogeneous operation over a collection of
// independent items with a bounded worker pool, collecting one result per
// item regardless of per-item failure.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phrase-tools/phrase-batch/internal/models"
)

// Operation processes one item and classifies the outcome. Implementations
// convert their own errors into Failed or Skipped results; a panic is
// caught by the executor and becomes a Failed result for that item only.
type Operation[T any] func(ctx context.Context, item T) models.BatchResult

// Keyer yields an item's identity for result attribution in the one case
// the operation cannot provide it itself: a panic. May be nil.
type Keyer[T any] func(item T) (key, label string)

// Reporter receives each result as soon as its item completes. Calls are
// made synchronously on the goroutine that invoked Run, in completion
// order, so implementations need no locking of their own.
type Reporter interface {
	ItemCompleted(models.BatchResult)
}

// Run applies op to every item using at most min(workers, len(items))
// concurrent workers. It returns one result per submitted item, ordered by
// completion, together with the commutative tally. A failing item never
// aborts siblings already in flight or not yet started.
func Run[T any](ctx context.Context, items []T, workers int, keyOf Keyer[T], op Operation[T], rep Reporter) ([]models.BatchResult, models.Tally) {
	tally := models.Tally{Submitted: len(items)}
	if len(items) == 0 {
		return nil, tally
	}

	if workers > len(items) {
		workers = len(items)
	}
	if workers < 1 {
		workers = 1
	}

	runID := uuid.NewString()
	log.Debug().Str("run_id", runID).Int("items", len(items)).Int("workers", workers).
		Msg("batch run started")

	feed := make(chan T)
	out := make(chan models.BatchResult)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range feed {
				out <- runOne(ctx, keyOf, op, item)
			}
		}()
	}

	go func() {
		for _, item := range items {
			feed <- item
		}
		close(feed)
		wg.Wait()
		close(out)
	}()

	results := make([]models.BatchResult, 0, len(items))
	for res := range out {
		results = append(results, res)
		tally.Add(res)
		if rep != nil {
			rep.ItemCompleted(res)
		}
	}

	log.Debug().Str("run_id", runID).
		Int("succeeded", tally.Succeeded).Int("skipped", tally.Skipped).Int("failed", tally.Failed).
		Msg("batch run finished")
	return results, tally
}

// RunChunked splits items into fixed-size chunks and drains each chunk
// through its own pool before the next starts, bounding memory and
// in-flight request count for very large collections. It returns all
// results plus one tally per chunk run.
func RunChunked[T any](ctx context.Context, items []T, chunkSize, workers int, keyOf Keyer[T], op Operation[T], rep Reporter) ([]models.BatchResult, []models.Tally) {
	if chunkSize < 1 {
		chunkSize = 1
	}

	var results []models.BatchResult
	var tallies []models.Tally
	for start := 0; start < len(items); start += chunkSize {
		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunkResults, tally := Run(ctx, items[start:end], workers, keyOf, op, rep)
		results = append(results, chunkResults...)
		tallies = append(tallies, tally)
	}
	return results, tallies
}

// runOne executes op with panic isolation. A panic outcome is attributed to
// its item through keyOf, since op never got to fill the result in.
func runOne[T any](ctx context.Context, keyOf Keyer[T], op Operation[T], item T) (res models.BatchResult) {
	defer func() {
		if r := recover(); r != nil {
			res = models.BatchResult{
				Outcome: models.OutcomeFailed,
				Detail:  fmt.Sprintf("panic: %v", r),
			}
			if keyOf != nil {
				res.Key, res.Label = keyOf(item)
			}
		}
	}()
	return op(ctx, item)
}
