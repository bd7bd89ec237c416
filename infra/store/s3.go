package store

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/pkg/export"
)

// S3Config describes an S3-compatible bucket.
type S3Config struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
}

// S3Store keeps one CSV object per series key in a bucket.
type S3Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3Store builds the minio client. The bucket is created on first write.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: empty bucket", model.ErrInvalidInput)
	}
	useSSL := strings.HasPrefix(strings.ToLower(cfg.Endpoint), "https")
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// ObjectName returns the object holding key.
func (s *S3Store) ObjectName(key model.SeriesKey) string {
	return path.Join(s.prefix, key.FileName())
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, key model.SeriesKey) (model.YieldSeries, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.ObjectName(key), minio.GetObjectOptions{})
	if err != nil {
		return model.YieldSeries{}, false, err
	}
	defer func() { _ = obj.Close() }()
	if _, err := obj.Stat(); err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "NoSuchKey", "NoSuchBucket":
			return model.YieldSeries{}, false, nil
		}
		return model.YieldSeries{}, false, err
	}
	series, err := export.ReadCSV(obj, key)
	if err != nil {
		return model.YieldSeries{}, false, fmt.Errorf("read %s: %w", s.ObjectName(key), err)
	}
	return series, true, nil
}

func (s *S3Store) Put(ctx context.Context, series model.YieldSeries) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, series); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.ObjectName(series.Key), bytes.NewReader(buf.Bytes()), int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "text/csv", DisableMultipart: true})
	return err
}

func (s *S3Store) Close() error { return nil }

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
