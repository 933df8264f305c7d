package purge

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"s3util/internal/s3"
)

// MaxBatchSize is the DeleteObjects hard limit.
const MaxBatchSize = 1000

// Source lists the versions to remove. *s3.Client implements this interface.
type Source interface {
	Versions(ctx context.Context, t s3.Target) s3.RecordIterator
}

// Deleter removes one batch of exact versions. *s3.Client implements this
// interface.
type Deleter interface {
	DeleteVersions(ctx context.Context, bucket string, refs []s3.VersionRef) ([]s3.DeleteFailure, error)
}

// Result counts what a destroy run confirmed. Deleted only counts entries
// the store accepted; FailedEntries holds everything that kept failing.
// Entries never attempted (run stopped early) appear in neither.
type Result struct {
	Deleted       int64
	Failed        int64
	FailedEntries []s3.DeleteFailure
}

type Executor struct {
	source    Source
	deleter   Deleter
	batchSize int
	retry     s3.RetryPolicy
}

func NewExecutor(source Source, deleter Deleter, batchSize int, retry s3.RetryPolicy) *Executor {
	if batchSize < 1 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}
	return &Executor{source: source, deleter: deleter, batchSize: batchSize, retry: retry}
}

// Destroy permanently removes every version and delete marker under the
// target, working from a fresh listing. Failures in one batch never stop
// later batches. The Result is accurate even when the run stops early on a
// listing error or cancellation.
func (e *Executor) Destroy(ctx context.Context, t s3.Target) (Result, error) {
	log.Info().Str("target", t.String()).Msg("destroying all versions")

	var res Result
	var listed int64
	batch := make([]s3.VersionRef, 0, e.batchSize)
	it := e.source.Versions(ctx, t)
	for it.Next() {
		rec := it.Record()
		batch = append(batch, s3.VersionRef{Key: rec.Key, VersionID: rec.VersionID})
		listed++
		if len(batch) == e.batchSize {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			e.deleteBatch(ctx, t.Bucket, batch, &res)
			batch = batch[:0]
		}
	}
	if err := it.Err(); err != nil {
		return res, fmt.Errorf("listing %s: %w", t, err)
	}
	if len(batch) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		e.deleteBatch(ctx, t.Bucket, batch, &res)
	}

	if listed == 0 {
		log.Info().Str("target", t.String()).Msg("nothing to delete")
		return res, nil
	}
	log.Info().Str("target", t.String()).
		Int64("deleted", res.Deleted).Int64("failed", res.Failed).
		Msg("destroy finished")
	return res, ctx.Err()
}

// deleteBatch submits one batch, then re-submits rejected entries until
// they succeed or attempts run out. A whole-call failure (the client
// already retried transports) writes off the remaining entries so later
// batches still run.
func (e *Executor) deleteBatch(ctx context.Context, bucket string, refs []s3.VersionRef, res *Result) {
	log.Debug().Str("bucket", bucket).Int("entries", len(refs)).Msg("deleting batch")
	remaining := refs
	for attempt := 1; ; attempt++ {
		failures, err := e.deleter.DeleteVersions(ctx, bucket, remaining)
		if err != nil {
			res.Failed += int64(len(remaining))
			for _, ref := range remaining {
				res.FailedEntries = append(res.FailedEntries, s3.DeleteFailure{
					Key:       ref.Key,
					VersionID: ref.VersionID,
					Code:      "RequestFailure",
					Message:   err.Error(),
				})
			}
			log.Error().Err(err).Str("bucket", bucket).Int("entries", len(remaining)).Msg("delete batch failed")
			return
		}
		res.Deleted += int64(len(remaining) - len(failures))
		if len(failures) == 0 {
			return
		}
		if attempt >= e.retry.Attempts() {
			res.Failed += int64(len(failures))
			res.FailedEntries = append(res.FailedEntries, failures...)
			return
		}
		log.Warn().Str("bucket", bucket).Int("entries", len(failures)).Int("attempt", attempt).
			Msg("retrying rejected deletions")
		if err := e.retry.Wait(ctx, attempt-1); err != nil {
			res.Failed += int64(len(failures))
			res.FailedEntries = append(res.FailedEntries, failures...)
			return
		}
		remaining = refsOf(failures)
	}
}

func refsOf(failures []s3.DeleteFailure) []s3.VersionRef {
	refs := make([]s3.VersionRef, len(failures))
	for i, f := range failures {
		refs[i] = s3.VersionRef{Key: f.Key, VersionID: f.VersionID}
	}
	return refs
}
