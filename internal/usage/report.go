package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"s3util/internal/s3"
)

// Report is one target's outcome in a multi-target run: either totals or
// the error that stopped them. A failed row never carries numbers.
type Report struct {
	Target            s3.Target
	Totals            ClassifiedSize
	VersioningEnabled bool
	Err               error
}

func (r Report) ConsoleLine() string {
	return fmt.Sprintf("%s: %s (current obj. %s, current vers. %s, orphaned vers. %s)",
		r.Target,
		humanize.IBytes(uint64(r.Totals.TotalBytes())),
		humanize.IBytes(uint64(r.Totals.CurrentBytes)),
		humanize.IBytes(uint64(r.Totals.NoncurrentLiveBytes)),
		humanize.IBytes(uint64(r.Totals.OrphanedBytes)))
}

// CSVHeader is the stable report schema; downstream tooling keys on these
// column names.
func CSVHeader() []string {
	return []string{"bucket_url", "total_bytes", "current_bytes", "noncurrent_live_bytes", "orphaned_bytes", "status"}
}

func (r Report) CSVRow() []string {
	if r.Err != nil {
		return []string{r.Target.String(), "", "", "", "", r.StatusLabel()}
	}
	return []string{
		r.Target.String(),
		strconv.FormatInt(r.Totals.TotalBytes(), 10),
		strconv.FormatInt(r.Totals.CurrentBytes, 10),
		strconv.FormatInt(r.Totals.NoncurrentLiveBytes, 10),
		strconv.FormatInt(r.Totals.OrphanedBytes, 10),
		"ok",
	}
}

func (r Report) StatusLabel() string {
	switch {
	case r.Err == nil:
		return "ok"
	case errors.Is(r.Err, ErrListingOrder):
		return "order_violation"
	case errors.Is(r.Err, context.Canceled), errors.Is(r.Err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(r.Err, s3.ErrTransient):
		return "transport_error"
	default:
		return "listing_failed"
	}
}
