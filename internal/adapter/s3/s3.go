// Package s3 uploads report artifacts to S3-compatible object storage.
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores files under <prefix>/<run id>/ in a bucket.
// It implements pipeline.ArtifactSink.
type Uploader struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewUploader creates a MinIO client for the endpoint. No request is made
// until Upload.
func NewUploader(endpoint, accessKey, secretKey, bucket, prefix string, useSSL bool, logger *slog.Logger) (*Uploader, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Uploader{client: client, bucket: bucket, prefix: prefix, logger: logger}, nil
}

// Name identifies the sink in logs and metrics.
func (u *Uploader) Name() string { return "s3" }

// Upload creates the bucket when missing and puts every file. Files below
// baseDir keep their relative path; others are stored by base name.
func (u *Uploader) Upload(ctx context.Context, runID, baseDir string, files []string) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", u.bucket, err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", u.bucket, err)
		}
	}

	for _, file := range files {
		key := objectKey(u.prefix, runID, baseDir, file)
		_, err := u.client.FPutObject(ctx, u.bucket, key, file, minio.PutObjectOptions{
			ContentType: contentType(file),
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", file, err)
		}
		u.logger.Debug("artifact uploaded", "bucket", u.bucket, "key", key)
	}
	u.logger.Info("artifacts uploaded", "bucket", u.bucket, "files", len(files))
	return nil
}

func objectKey(prefix, runID, baseDir, file string) string {
	rel := filepath.Base(file)
	if baseDir != "" {
		if r, err := filepath.Rel(baseDir, file); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	return path.Join(prefix, runID, filepath.ToSlash(rel))
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
