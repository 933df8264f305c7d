package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// VersionRef names one exact version to delete. An empty VersionID deletes
// the current version (or places a marker on a versioned bucket).
type VersionRef struct {
	Key       string
	VersionID string
}

// DeleteFailure is one entry the store refused to delete.
type DeleteFailure struct {
	Key       string
	VersionID string
	Code      string
	Message   string
}

// DeleteVersions removes one batch of specific versions in a single call.
// Whole-call transport errors are retried per the client's RetryPolicy;
// per-entry rejections come back as DeleteFailures for the caller to
// retry or record.
func (c *Client) DeleteVersions(ctx context.Context, bucket string, refs []VersionRef) ([]DeleteFailure, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	ids := make([]types.ObjectIdentifier, 0, len(refs))
	for _, r := range refs {
		id := types.ObjectIdentifier{Key: aws.String(r.Key)}
		if r.VersionID != "" {
			id.VersionId = aws.String(r.VersionID)
		}
		ids = append(ids, id)
	}

	var out *s3.DeleteObjectsOutput
	err := retryTransient(ctx, c.retry, "delete objects", func() error {
		var err error
		out, err = c.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	failures := make([]DeleteFailure, 0, len(out.Errors))
	for _, e := range out.Errors {
		failures = append(failures, DeleteFailure{
			Key:       aws.ToString(e.Key),
			VersionID: aws.ToString(e.VersionId),
			Code:      aws.ToString(e.Code),
			Message:   aws.ToString(e.Message),
		})
	}
	return failures, nil
}
