package logstore

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"tablelog/internal/common"
)

// S3Store is a Store backed by Amazon S3, adapted from the teacher's
// block.S3FS: same client construction and ListObjectsV2 paginator usage,
// narrowed to read-only operations.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates an S3Store for bucket, with every path resolved
// relative to prefix (the table's root key within the bucket).
func NewS3Store(ctx context.Context, bucket, prefix, region string) (*S3Store, error) {
	if bucket == "" {
		return nil, common.ErrInvalidInputf("bucket is required for S3 log store")
	}
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, common.NewErrorWithCause(common.ErrInternal, "failed to load AWS config", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (s *S3Store) getKey(p string) string {
	p = strings.TrimPrefix(p, "/")
	if s.prefix == "" {
		return p
	}
	return s.prefix + "/" + p
}

func (s *S3Store) getRelativePath(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(strings.TrimPrefix(key, s.prefix), "/")
}

// ListLog lists every object under prefix via a ListObjectsV2 paginator,
// sorted lexicographically so zero-padded commit/checkpoint keys sort in
// version order.
func (s *S3Store) ListLog(ctx context.Context, prefix string) ([]Entry, error) {
	key := s.getKey(prefix)

	var out []Entry
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(key),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, common.NewErrorWithCause(common.ErrInternal, "list log objects failed", err).WithContext("prefix", prefix)
		}
		for _, obj := range page.Contents {
			out = append(out, Entry{
				Path: s.getRelativePath(aws.ToString(obj.Key)),
				Size: aws.ToInt64(obj.Size),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// OpenRead opens path for reading, returning TableNotFound on a missing
// key.
func (s *S3Store) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	key := s.getKey(path)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, common.NewErrorWithCause(common.ErrTableNotFound, "log object not found", err).WithContext("path", path)
		}
		return nil, common.NewErrorWithCause(common.ErrInternal, "get log object failed", err).WithContext("path", path)
	}
	return out.Body, nil
}

// Qualify canonicalizes path against this store's bucket/prefix as an
// s3:// URI.
func (s *S3Store) Qualify(path string) (string, error) {
	root := "s3://" + s.bucket + "/" + s.prefix
	return Canonicalize(root, path)
}

func isNoSuchKey(err error) bool {
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound")
}
