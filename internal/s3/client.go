package s3

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// API is the slice of the AWS S3 surface this tool touches. *s3.Client
// satisfies it; tests substitute in-memory fakes.
type API interface {
	ListObjectVersions(ctx context.Context, params *s3.ListObjectVersionsInput, optFns ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetBucketVersioning(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

type Options struct {
	Endpoint           string
	Region             string
	AccessKey          string
	SecretKey          string
	PathStyle          bool
	InsecureSkipVerify bool
	Retry              RetryPolicy
}

type Client struct {
	api   API
	retry RetryPolicy
}

// New builds a client on the SDK default credential chain, overridden by a
// static key pair when one is configured. The SDK's own retryer is disabled:
// the injected RetryPolicy is the single retry authority, so attempt counts
// stay exact.
func New(ctx context.Context, opts Options) (*Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		if opts.AccessKey == "" || opts.SecretKey == "" {
			return nil, fmt.Errorf("s3 credentials: access key and secret key must be set together")
		}
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	if opts.InsecureSkipVerify {
		loadOpts = append(loadOpts, awsconfig.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
		o.Retryer = aws.NopRetryer{}
	})

	return NewWithAPI(api, opts.Retry), nil
}

// NewWithAPI wires the client over any API implementation.
func NewWithAPI(api API, retry RetryPolicy) *Client {
	return &Client{api: api, retry: retry}
}

// VersioningEnabled reports whether the bucket has versioning switched on.
// An absent or suspended status counts as off. This is always the first call
// made against a target, so access problems surface before any listing work.
func (c *Client) VersioningEnabled(ctx context.Context, bucket string) (bool, error) {
	var out *s3.GetBucketVersioningOutput
	err := retryTransient(ctx, c.retry, "get bucket versioning", func() error {
		var err error
		out, err = c.api.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{
			Bucket: aws.String(bucket),
		})
		return err
	})
	if err != nil {
		if IsTransient(err) {
			return false, err
		}
		return false, WrapFatalListing(err, fmt.Sprintf("bucket %s", bucket))
	}
	return out.Status == types.BucketVersioningStatusEnabled, nil
}
