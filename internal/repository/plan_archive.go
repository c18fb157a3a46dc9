package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/mansoorceksport/fitcoach/internal/config"
)

// Archived exports are written once under a unique key
const archiveCacheControl = "public, max-age=31536000, immutable"

var errInvalidKey = errors.New("invalid archive key")

// PlanArchive stores exported plan PDFs in an S3-compatible bucket
// (SeaweedFS, MinIO) and returns download links for them.
type PlanArchive struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewPlanArchive connects to the bucket in cfg, creating it when missing
func NewPlanArchive(ctx context.Context, cfg appConfig.S3Config) (*PlanArchive, error) {
	// SeaweedFS/MinIO accept any static credentials but still require a signature
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("any", "any", "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = cfg.Endpoint
	}

	archive := &PlanArchive{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
	if err := archive.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}

// Upload stores file under key and returns its public URL. The object is
// served as a download named after the last key segment.
func (a *PlanArchive) Upload(ctx context.Context, file []byte, key string, contentType string) (string, error) {
	objectKey, err := archiveKey(key)
	if err != nil {
		return "", err
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(a.bucket),
		Key:                aws.String(objectKey),
		Body:               bytes.NewReader(file),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(attachmentDisposition(path.Base(key))),
		CacheControl:       aws.String(archiveCacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to archive: %w", objectKey, err)
	}

	return url.JoinPath(a.publicURL, a.bucket, objectKey)
}

// archiveKey turns key into a safe object key: every segment is reduced to
// letters, digits, dot, dash and underscore. Keys that try to leave the
// bucket root are rejected.
func archiveKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", errInvalidKey, key)
	}

	segments := strings.Split(key, "/")
	for i, segment := range segments {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("%w: %q", errInvalidKey, key)
		}
		segments[i] = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				return r
			case r == '.', r == '-', r == '_':
				return r
			}
			return '_'
		}, segment)
	}
	return strings.Join(segments, "/"), nil
}

// attachmentDisposition keeps the original file name, non-ASCII included
func attachmentDisposition(filename string) string {
	if d := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); d != "" {
		return d
	}
	return "attachment"
}

// ensureBucket creates the bucket when HeadBucket reports it missing
func (a *PlanArchive) ensureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	var respErr *awshttp.ResponseError
	if !errors.As(err, &respErr) || respErr.HTTPStatusCode() != http.StatusNotFound {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}

	if _, err := a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}
