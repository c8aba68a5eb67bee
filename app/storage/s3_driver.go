package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Driver archives documents in an S3-compatible bucket
type S3Driver struct {
	client *s3.Client
	bucket string
}

func NewS3Driver(client *s3.Client, bucket string) *S3Driver {
	return &S3Driver{client: client, bucket: bucket}
}

// Save uploads the document, overwriting an earlier archive of the same certificate
func (d *S3Driver) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", key, d.bucket, err)
	}
	return nil
}

// Delete removes the archived document. S3 treats deleting a missing key as success.
func (d *S3Driver) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from bucket %s: %w", key, d.bucket, err)
	}
	return nil
}
