package usage

import (
	"errors"
	"fmt"

	"s3util/internal/s3"
)

// ErrListingOrder means the listing broke the key-major contract: a key
// reappeared after a different key had started, or keys arrived out of
// order. Totals built from such a stream would be silently wrong, so the
// target fails instead.
var ErrListingOrder = errors.New("listing order violation")

// Grouper turns a record stream into KeyGroups, one per maximal run of
// consecutive same-key records. Only the group being assembled is held in
// memory. A group is emitted only once its end is proven, either by the
// next key or by a clean end of stream; an iterator error discards any
// half-read group.
type Grouper struct {
	it      s3.RecordIterator
	group   KeyGroup
	pending *s3.VersionRecord
	lastKey string
	started bool
	err     error
}

func NewGrouper(it s3.RecordIterator) *Grouper {
	return &Grouper{it: it}
}

func (g *Grouper) Next() bool {
	if g.err != nil {
		return false
	}
	var key string
	var records []s3.VersionRecord
	if g.pending != nil {
		key = g.pending.Key
		records = append(records, *g.pending)
		g.pending = nil
	}
	for g.it.Next() {
		rec := g.it.Record()
		if len(records) == 0 {
			key = rec.Key
			records = append(records, rec)
			continue
		}
		if rec.Key == key {
			records = append(records, rec)
			continue
		}
		next := rec
		g.pending = &next
		break
	}
	if err := g.it.Err(); err != nil {
		g.err = err
		return false
	}
	if len(records) == 0 {
		return false
	}
	// listings arrive key-ascending, so a non-increasing group key means
	// the stream is corrupt (reappearing key or broken order)
	if g.started && key <= g.lastKey {
		g.err = fmt.Errorf("%w: key %q after %q", ErrListingOrder, key, g.lastKey)
		return false
	}
	g.started = true
	g.lastKey = key
	g.group = KeyGroup{Key: key, Records: records}
	return true
}

func (g *Grouper) Group() KeyGroup { return g.group }

func (g *Grouper) Err() error { return g.err }
