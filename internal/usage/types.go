package usage

import (
	"s3util/internal/s3"
)

// KeyGroup is every listed version of one key, newest record first.
type KeyGroup struct {
	Key     string
	Records []s3.VersionRecord
}

// ClassifiedSize is the additive usage breakdown of a target. The zero value
// is the identity and Add is field-wise, so per-group deltas accumulate to
// the same totals no matter how the stream was chunked.
type ClassifiedSize struct {
	CurrentBytes        int64
	NoncurrentLiveBytes int64
	OrphanedBytes       int64

	CurrentObjects         int64
	NoncurrentLiveVersions int64
	OrphanedVersions       int64
}

func (c *ClassifiedSize) Add(d ClassifiedSize) {
	c.CurrentBytes += d.CurrentBytes
	c.NoncurrentLiveBytes += d.NoncurrentLiveBytes
	c.OrphanedBytes += d.OrphanedBytes
	c.CurrentObjects += d.CurrentObjects
	c.NoncurrentLiveVersions += d.NoncurrentLiveVersions
	c.OrphanedVersions += d.OrphanedVersions
}

func (c ClassifiedSize) TotalBytes() int64 {
	return c.CurrentBytes + c.NoncurrentLiveBytes + c.OrphanedBytes
}

func (c ClassifiedSize) TotalVersions() int64 {
	return c.CurrentObjects + c.NoncurrentLiveVersions + c.OrphanedVersions
}
