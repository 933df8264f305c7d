package s3

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3sdk "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type listVersionsCall struct {
	out *s3sdk.ListObjectVersionsOutput
	err error
}

type listObjectsCall struct {
	out *s3sdk.ListObjectsV2Output
	err error
}

type fakeAPI struct {
	versionCalls  []listVersionsCall
	versionInputs []*s3sdk.ListObjectVersionsInput

	objectCalls  []listObjectsCall
	objectInputs []*s3sdk.ListObjectsV2Input

	versioningOut *s3sdk.GetBucketVersioningOutput
	versioningErr error

	deleteOut    *s3sdk.DeleteObjectsOutput
	deleteErr    error
	deleteInputs []*s3sdk.DeleteObjectsInput
}

func (f *fakeAPI) ListObjectVersions(ctx context.Context, in *s3sdk.ListObjectVersionsInput, _ ...func(*s3sdk.Options)) (*s3sdk.ListObjectVersionsOutput, error) {
	f.versionInputs = append(f.versionInputs, in)
	if len(f.versionCalls) == 0 {
		return &s3sdk.ListObjectVersionsOutput{}, nil
	}
	call := f.versionCalls[0]
	f.versionCalls = f.versionCalls[1:]
	return call.out, call.err
}

func (f *fakeAPI) ListObjectsV2(ctx context.Context, in *s3sdk.ListObjectsV2Input, _ ...func(*s3sdk.Options)) (*s3sdk.ListObjectsV2Output, error) {
	f.objectInputs = append(f.objectInputs, in)
	if len(f.objectCalls) == 0 {
		return &s3sdk.ListObjectsV2Output{}, nil
	}
	call := f.objectCalls[0]
	f.objectCalls = f.objectCalls[1:]
	return call.out, call.err
}

func (f *fakeAPI) GetBucketVersioning(ctx context.Context, in *s3sdk.GetBucketVersioningInput, _ ...func(*s3sdk.Options)) (*s3sdk.GetBucketVersioningOutput, error) {
	if f.versioningErr != nil {
		return nil, f.versioningErr
	}
	if f.versioningOut == nil {
		return &s3sdk.GetBucketVersioningOutput{}, nil
	}
	return f.versioningOut, nil
}

func (f *fakeAPI) DeleteObjects(ctx context.Context, in *s3sdk.DeleteObjectsInput, _ ...func(*s3sdk.Options)) (*s3sdk.DeleteObjectsOutput, error) {
	f.deleteInputs = append(f.deleteInputs, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	if f.deleteOut == nil {
		return &s3sdk.DeleteObjectsOutput{}, nil
	}
	return f.deleteOut, nil
}

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func contentVersion(key, vid string, size int64, latest bool, age time.Duration) types.ObjectVersion {
	return types.ObjectVersion{
		Key:          aws.String(key),
		VersionId:    aws.String(vid),
		Size:         aws.Int64(size),
		IsLatest:     aws.Bool(latest),
		LastModified: aws.Time(baseTime.Add(-age)),
	}
}

func deleteMarker(key, vid string, latest bool, age time.Duration) types.DeleteMarkerEntry {
	return types.DeleteMarkerEntry{
		Key:          aws.String(key),
		VersionId:    aws.String(vid),
		IsLatest:     aws.Bool(latest),
		LastModified: aws.Time(baseTime.Add(-age)),
	}
}

func drain(t *testing.T, it RecordIterator) []VersionRecord {
	t.Helper()
	var recs []VersionRecord
	for it.Next() {
		recs = append(recs, it.Record())
	}
	return recs
}

func keysOf(recs []VersionRecord) []string {
	keys := make([]string, len(recs))
	for i, r := range recs {
		keys[i] = r.Key
	}
	return keys
}

func TestVersions_MergesVersionsAndMarkers(t *testing.T) {
	api := &fakeAPI{versionCalls: []listVersionsCall{{
		out: &s3sdk.ListObjectVersionsOutput{
			Versions: []types.ObjectVersion{
				contentVersion("docs/a.txt", "v2", 100, true, 0),
				contentVersion("docs/a.txt", "v1", 50, false, time.Hour),
				contentVersion("docs/b.txt", "v1", 200, false, time.Hour),
			},
			DeleteMarkers: []types.DeleteMarkerEntry{
				deleteMarker("docs/b.txt", "m1", true, 0),
			},
		},
	}}}
	client := NewWithAPI(api, RetryPolicy{})

	it := client.Versions(context.Background(), Target{Bucket: "bucket-a", Prefix: "docs"})
	recs := drain(t, it)
	if it.Err() != nil {
		t.Fatalf("unexpected Err: %v", it.Err())
	}
	want := []string{"docs/a.txt", "docs/a.txt", "docs/b.txt", "docs/b.txt"}
	got := keysOf(recs)
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("merged keys = %v, want %v", got, want)
		}
	}
	// the marker is b.txt's newest record and must lead its group
	if !recs[2].IsDeleteMarker || !recs[2].IsLatest {
		t.Errorf("records[2] = %+v, want latest delete marker", recs[2])
	}
	if recs[3].IsDeleteMarker || recs[3].Size != 200 {
		t.Errorf("records[3] = %+v, want 200-byte content version", recs[3])
	}
	if recs[0].Size != 100 || !recs[0].IsLatest {
		t.Errorf("records[0] = %+v, want latest 100-byte version", recs[0])
	}
}

func TestVersions_Pagination(t *testing.T) {
	api := &fakeAPI{versionCalls: []listVersionsCall{
		{out: &s3sdk.ListObjectVersionsOutput{
			Versions: []types.ObjectVersion{
				contentVersion("a", "v1", 1, true, 0),
			},
			IsTruncated:         aws.Bool(true),
			NextKeyMarker:       aws.String("a"),
			NextVersionIdMarker: aws.String("v1"),
		}},
		{out: &s3sdk.ListObjectVersionsOutput{
			Versions: []types.ObjectVersion{
				contentVersion("b", "v1", 2, true, 0),
			},
		}},
	}}
	client := NewWithAPI(api, RetryPolicy{})

	it := client.Versions(context.Background(), Target{Bucket: "bucket-a"})
	recs := drain(t, it)
	if it.Err() != nil {
		t.Fatalf("Err: %v", it.Err())
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if len(api.versionInputs) != 2 {
		t.Fatalf("made %d list calls, want 2", len(api.versionInputs))
	}
	second := api.versionInputs[1]
	if aws.ToString(second.KeyMarker) != "a" || aws.ToString(second.VersionIdMarker) != "v1" {
		t.Errorf("second call markers = %q/%q, want a/v1",
			aws.ToString(second.KeyMarker), aws.ToString(second.VersionIdMarker))
	}
	if aws.ToInt32(api.versionInputs[0].MaxKeys) != listPageSize {
		t.Errorf("MaxKeys = %d, want %d", aws.ToInt32(api.versionInputs[0].MaxKeys), listPageSize)
	}
}

func TestVersions_LazyFirstFetch(t *testing.T) {
	api := &fakeAPI{}
	client := NewWithAPI(api, RetryPolicy{})
	it := client.Versions(context.Background(), Target{Bucket: "bucket-a"})
	if len(api.versionInputs) != 0 {
		t.Fatal("constructing the iterator must not touch the store")
	}
	if it.Next() {
		t.Error("empty listing should yield no records")
	}
	if len(api.versionInputs) != 1 {
		t.Errorf("made %d calls, want 1", len(api.versionInputs))
	}
}

func TestVersions_TransientRetriedThenSucceeds(t *testing.T) {
	api := &fakeAPI{versionCalls: []listVersionsCall{
		{err: &smithy.GenericAPIError{Code: "SlowDown"}},
		{out: &s3sdk.ListObjectVersionsOutput{
			Versions: []types.ObjectVersion{contentVersion("a", "v1", 1, true, 0)},
		}},
	}}
	client := NewWithAPI(api, RetryPolicy{MaxAttempts: 2})

	it := client.Versions(context.Background(), Target{Bucket: "bucket-a"})
	recs := drain(t, it)
	if it.Err() != nil {
		t.Fatalf("Err: %v", it.Err())
	}
	if len(recs) != 1 {
		t.Errorf("got %d records, want 1", len(recs))
	}
	if len(api.versionInputs) != 2 {
		t.Errorf("made %d calls, want 2", len(api.versionInputs))
	}
}

func TestVersions_TransientExhausted(t *testing.T) {
	api := &fakeAPI{versionCalls: []listVersionsCall{
		{err: &smithy.GenericAPIError{Code: "SlowDown"}},
		{err: &smithy.GenericAPIError{Code: "SlowDown"}},
	}}
	client := NewWithAPI(api, RetryPolicy{MaxAttempts: 2})

	it := client.Versions(context.Background(), Target{Bucket: "bucket-a"})
	if it.Next() {
		t.Fatal("Next should fail once retries are exhausted")
	}
	if !errors.Is(it.Err(), ErrTransient) {
		t.Errorf("Err = %v, want ErrTransient", it.Err())
	}
}

func TestVersions_FatalAbortsStream(t *testing.T) {
	api := &fakeAPI{versionCalls: []listVersionsCall{
		{out: &s3sdk.ListObjectVersionsOutput{
			Versions:            []types.ObjectVersion{contentVersion("a", "v1", 1, true, 0)},
			IsTruncated:         aws.Bool(true),
			NextKeyMarker:       aws.String("a"),
			NextVersionIdMarker: aws.String("v1"),
		}},
		{err: &smithy.GenericAPIError{Code: "AccessDenied"}},
	}}
	client := NewWithAPI(api, RetryPolicy{MaxAttempts: 3})

	it := client.Versions(context.Background(), Target{Bucket: "bucket-a"})
	var n int
	for it.Next() {
		n++
	}
	if n != 1 {
		t.Errorf("delivered %d records before the failure, want 1", n)
	}
	if !errors.Is(it.Err(), ErrFatalListing) {
		t.Errorf("Err = %v, want ErrFatalListing", it.Err())
	}
	if it.Next() {
		t.Error("Next after an error must keep returning false")
	}
	if len(api.versionInputs) != 2 {
		t.Errorf("made %d calls, want 2 (no retry on fatal)", len(api.versionInputs))
	}
}

func TestObjects_SynthesizesCurrentRecords(t *testing.T) {
	api := &fakeAPI{objectCalls: []listObjectsCall{
		{out: &s3sdk.ListObjectsV2Output{
			Contents: []types.Object{
				{Key: aws.String("docs/a.txt"), Size: aws.Int64(100), LastModified: aws.Time(baseTime)},
			},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("tok"),
		}},
		{out: &s3sdk.ListObjectsV2Output{
			Contents: []types.Object{
				{Key: aws.String("docs/b.txt"), Size: aws.Int64(7), LastModified: aws.Time(baseTime)},
			},
		}},
	}}
	client := NewWithAPI(api, RetryPolicy{})

	it := client.Objects(context.Background(), Target{Bucket: "bucket-a", Prefix: "docs"})
	recs := drain(t, it)
	if it.Err() != nil {
		t.Fatalf("Err: %v", it.Err())
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	for _, r := range recs {
		if !r.IsLatest || r.IsDeleteMarker || r.VersionID != "" {
			t.Errorf("record %+v should be a synthesized current version", r)
		}
	}
	if aws.ToString(api.objectInputs[1].ContinuationToken) != "tok" {
		t.Errorf("second call token = %q, want tok", aws.ToString(api.objectInputs[1].ContinuationToken))
	}
}

func TestVersioningEnabled(t *testing.T) {
	cases := []struct {
		status types.BucketVersioningStatus
		want   bool
	}{
		{types.BucketVersioningStatusEnabled, true},
		{types.BucketVersioningStatusSuspended, false},
		{"", false},
	}
	for _, c := range cases {
		api := &fakeAPI{versioningOut: &s3sdk.GetBucketVersioningOutput{Status: c.status}}
		client := NewWithAPI(api, RetryPolicy{})
		got, err := client.VersioningEnabled(context.Background(), "bucket-a")
		if err != nil {
			t.Fatalf("VersioningEnabled(%q): %v", c.status, err)
		}
		if got != c.want {
			t.Errorf("VersioningEnabled(%q) = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestVersioningEnabled_AccessError(t *testing.T) {
	api := &fakeAPI{versioningErr: &smithy.GenericAPIError{Code: "AccessDenied"}}
	client := NewWithAPI(api, RetryPolicy{})
	_, err := client.VersioningEnabled(context.Background(), "bucket-a")
	if !errors.Is(err, ErrFatalListing) {
		t.Errorf("err = %v, want ErrFatalListing", err)
	}
}
