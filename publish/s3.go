// Package publish pushes finished forecasts to optional downstream sinks.
// Both sinks are off unless configured; a publish failure never fails the run.
package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"swellforecaster/config"
	"swellforecaster/render"
)

// s3PutAPI is the slice of the S3 client the uploader needs.
type s3PutAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader copies rendered forecast files into an S3 bucket.
type S3Uploader struct {
	client s3PutAPI
	bucket string
	prefix string
}

// NewS3Uploader builds an uploader from the publish settings, or nil when no
// bucket is configured.
func NewS3Uploader(ctx context.Context, cfg config.Publish) (*S3Uploader, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &S3Uploader{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
		prefix: cfg.S3Prefix,
	}, nil
}

// Upload pushes every rendered output that exists. Content types are set so
// the HTML serves directly from the bucket.
func (u *S3Uploader) Upload(ctx context.Context, outputs *render.Outputs) error {
	files := []struct {
		path        string
		contentType string
	}{
		{outputs.Markdown, "text/markdown; charset=utf-8"},
		{outputs.HTML, "text/html; charset=utf-8"},
		{outputs.PDF, "application/pdf"},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if err := u.put(ctx, f.path, f.contentType); err != nil {
			return err
		}
	}
	return nil
}

func (u *S3Uploader) put(ctx context.Context, path, contentType string) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer fh.Close()

	key := filepath.Base(path)
	if u.prefix != "" {
		key = u.prefix + "/" + key
	}
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        fh,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	return nil
}
