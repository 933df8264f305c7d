package s3

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

const (
	listPageSize     = 1000
	progressInterval = 20000
)

// VersionRecord is one listing entry: a content version or a delete marker,
// merged into a single stream. Markers carry zero size.
type VersionRecord struct {
	Key            string
	VersionID      string
	IsDeleteMarker bool
	Size           int64
	IsLatest       bool
	LastModified   time.Time
}

// RecordIterator walks a listing lazily, holding at most one page. After
// Next returns false, Err distinguishes clean exhaustion from failure; no
// records are delivered past an error.
type RecordIterator interface {
	Next() bool
	Record() VersionRecord
	Err() error
}

type pager struct {
	target Target
	fetch  func() ([]VersionRecord, bool, error)

	page []VersionRecord
	idx  int
	rec  VersionRecord
	done bool
	err  error
	seen int64
}

func (p *pager) Next() bool {
	if p.err != nil {
		return false
	}
	for p.idx >= len(p.page) {
		if p.done {
			return false
		}
		page, more, err := p.fetch()
		if err != nil {
			p.err = err
			return false
		}
		p.page, p.idx, p.done = page, 0, !more
	}
	p.rec = p.page[p.idx]
	p.idx++
	p.seen++
	if p.seen%progressInterval == 0 {
		log.Info().Str("target", p.target.String()).Str("records", humanize.Comma(p.seen)).Msg("still listing")
	}
	return true
}

func (p *pager) Record() VersionRecord { return p.rec }

func (p *pager) Err() error { return p.err }

// Versions lists every object version and delete marker under the target,
// key-major with each key's newest record first. Page fetches are retried
// per the client's RetryPolicy.
func (c *Client) Versions(ctx context.Context, t Target) RecordIterator {
	var keyMarker, versionMarker *string
	p := &pager{target: t}
	p.fetch = func() ([]VersionRecord, bool, error) {
		in := &s3.ListObjectVersionsInput{
			Bucket:          aws.String(t.Bucket),
			Prefix:          aws.String(t.Prefix),
			MaxKeys:         aws.Int32(listPageSize),
			KeyMarker:       keyMarker,
			VersionIdMarker: versionMarker,
		}
		var out *s3.ListObjectVersionsOutput
		err := retryTransient(ctx, c.retry, "list object versions", func() error {
			var err error
			out, err = c.api.ListObjectVersions(ctx, in)
			return err
		})
		if err != nil {
			if IsTransient(err) {
				return nil, false, err
			}
			return nil, false, WrapFatalListing(err, t.String())
		}
		keyMarker, versionMarker = out.NextKeyMarker, out.NextVersionIdMarker
		more := aws.ToBool(out.IsTruncated) && (keyMarker != nil || versionMarker != nil)
		return mergePage(out), more, nil
	}
	return p
}

// Objects lists current objects only, synthesized into latest content
// records, so unversioned buckets flow through the same grouping and
// classification as versioned ones.
func (c *Client) Objects(ctx context.Context, t Target) RecordIterator {
	var token *string
	p := &pager{target: t}
	p.fetch = func() ([]VersionRecord, bool, error) {
		in := &s3.ListObjectsV2Input{
			Bucket:            aws.String(t.Bucket),
			Prefix:            aws.String(t.Prefix),
			MaxKeys:           aws.Int32(listPageSize),
			ContinuationToken: token,
		}
		var out *s3.ListObjectsV2Output
		err := retryTransient(ctx, c.retry, "list objects", func() error {
			var err error
			out, err = c.api.ListObjectsV2(ctx, in)
			return err
		})
		if err != nil {
			if IsTransient(err) {
				return nil, false, err
			}
			return nil, false, WrapFatalListing(err, t.String())
		}
		page := make([]VersionRecord, 0, len(out.Contents))
		for _, obj := range out.Contents {
			page = append(page, VersionRecord{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				IsLatest:     true,
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		token = out.NextContinuationToken
		more := aws.ToBool(out.IsTruncated) && token != nil
		return page, more, nil
	}
	return p
}

// mergePage flattens one response's Versions and DeleteMarkers arrays into
// a single slice ordered key-ascending, IsLatest first, then newest first,
// which is the order the grouping stage depends on. Both arrays already
// arrive sorted that way, so this is a plain two-way merge.
func mergePage(out *s3.ListObjectVersionsOutput) []VersionRecord {
	vs, ms := out.Versions, out.DeleteMarkers
	records := make([]VersionRecord, 0, len(vs)+len(ms))
	i, j := 0, 0
	for i < len(vs) && j < len(ms) {
		if versionBefore(vs[i], ms[j]) {
			records = append(records, contentRecord(vs[i]))
			i++
		} else {
			records = append(records, markerRecord(ms[j]))
			j++
		}
	}
	for ; i < len(vs); i++ {
		records = append(records, contentRecord(vs[i]))
	}
	for ; j < len(ms); j++ {
		records = append(records, markerRecord(ms[j]))
	}
	return records
}

func versionBefore(v types.ObjectVersion, m types.DeleteMarkerEntry) bool {
	vk, mk := aws.ToString(v.Key), aws.ToString(m.Key)
	if vk != mk {
		return vk < mk
	}
	vl, ml := aws.ToBool(v.IsLatest), aws.ToBool(m.IsLatest)
	if vl != ml {
		return vl
	}
	vt, mt := aws.ToTime(v.LastModified), aws.ToTime(m.LastModified)
	if !vt.Equal(mt) {
		return vt.After(mt)
	}
	return true
}

func contentRecord(v types.ObjectVersion) VersionRecord {
	return VersionRecord{
		Key:          aws.ToString(v.Key),
		VersionID:    aws.ToString(v.VersionId),
		Size:         aws.ToInt64(v.Size),
		IsLatest:     aws.ToBool(v.IsLatest),
		LastModified: aws.ToTime(v.LastModified),
	}
}

func markerRecord(m types.DeleteMarkerEntry) VersionRecord {
	return VersionRecord{
		Key:            aws.ToString(m.Key),
		VersionID:      aws.ToString(m.VersionId),
		IsDeleteMarker: true,
		IsLatest:       aws.ToBool(m.IsLatest),
		LastModified:   aws.ToTime(m.LastModified),
	}
}
