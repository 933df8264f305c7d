package usage

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"s3util/internal/s3"
)

// defaultConcurrency bounds how many targets a size-report analyses at
// once when the caller passes no usable bound. Each in-flight target holds
// at most one listing page.
const defaultConcurrency = 4

// Lister is the listing surface the orchestrator consumes.
// *s3.Client implements this interface.
type Lister interface {
	VersioningEnabled(ctx context.Context, bucket string) (bool, error)
	Versions(ctx context.Context, t s3.Target) s3.RecordIterator
	Objects(ctx context.Context, t s3.Target) s3.RecordIterator
}

type Orchestrator struct {
	lister      Lister
	concurrency int
}

func NewOrchestrator(lister Lister, concurrency int) *Orchestrator {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Orchestrator{lister: lister, concurrency: concurrency}
}

// Size streams one target's listing into totals. Totals come back only for
// a fully exhausted stream; any failure discards whatever was summed so far
// and returns the error instead.
func (o *Orchestrator) Size(ctx context.Context, t s3.Target) (ClassifiedSize, bool, error) {
	enabled, err := o.lister.VersioningEnabled(ctx, t.Bucket)
	if err != nil {
		return ClassifiedSize{}, false, err
	}

	var it s3.RecordIterator
	if enabled {
		it = o.lister.Versions(ctx, t)
	} else {
		log.Warn().Str("target", t.String()).Msg("versioning is not enabled, counting current objects only")
		it = o.lister.Objects(ctx, t)
	}

	var totals ClassifiedSize
	g := NewGrouper(it)
	for g.Next() {
		delta, _ := Classify(g.Group())
		totals.Add(delta)
	}
	if err := g.Err(); err != nil {
		return ClassifiedSize{}, enabled, err
	}
	return totals, enabled, nil
}

// SizeReport sizes every target with bounded concurrency and returns one
// row per target, in input order. A failed target lands in its own row and
// never stops the others; cancellation marks the unfinished rows.
func (o *Orchestrator) SizeReport(ctx context.Context, targets []s3.Target) []Report {
	reports := make([]Report, len(targets))
	sem := semaphore.NewWeighted(int64(o.concurrency))
	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t s3.Target) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				reports[i] = Report{Target: t, Err: err}
				return
			}
			defer sem.Release(1)

			log.Info().Str("target", t.String()).Msg("analysing target")
			totals, enabled, err := o.Size(ctx, t)
			if err != nil {
				log.Error().Err(err).Str("target", t.String()).Msg("target failed")
			}
			reports[i] = Report{Target: t, Totals: totals, VersioningEnabled: enabled, Err: err}
		}(i, t)
	}
	wg.Wait()
	return reports
}
