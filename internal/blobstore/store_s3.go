package blobstore

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client the store needs, kept narrow so tests
// can stub it.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store persists blobs in an S3 bucket.
type S3Store struct {
	client S3API
	bucket string
	region string
}

// NewS3Store constructs an S3-backed blob store.
func NewS3Store(client S3API, bucket, region string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region}
}

// Put uploads the blob with its metadata and returns the object URL.
func (s *S3Store) Put(ctx context.Context, content io.Reader, meta Metadata) (string, error) {
	key := ObjectKey(meta)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(meta.ContentType),
		Metadata: map[string]string{
			"user_id":           meta.SubjectID,
			"original_filename": meta.OriginalFilename,
			"upload_timestamp":  meta.UploadedAt.UTC().Format("20060102_150405"),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
