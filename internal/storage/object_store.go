// Package storage uploads menu photos and archived receipts to an
// S3-compatible bucket (Cloudflare R2 in production).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"foodtruck-order-service/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
	StorageClass    string
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		Endpoint:        cfg.ObjectStoreEndpoint,
		Region:          cfg.ObjectStoreRegion,
		AccessKeyID:     cfg.ObjectStoreAccessKeyID,
		SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
		Bucket:          cfg.ObjectStoreBucket,
		PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
		StorageClass:    cfg.ObjectStoreStorageClass,
	}
}

// Enabled reports whether enough settings are present to build a store.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != "" && strings.TrimSpace(c.Bucket) != "" && strings.TrimSpace(c.PublicBaseURL) != ""
}

type ObjectStore struct {
	bucket       string
	publicBase   string
	storageClass string
	client       *s3.Client
}

func NewObjectStore(ctx context.Context, cfg Config) (*ObjectStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "auto"
	}

	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("object store bucket is required")
	}

	publicBase := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if publicBase == "" {
		return nil, fmt.Errorf("object store public base url is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			strings.TrimSpace(cfg.AccessKeyID),
			strings.TrimSpace(cfg.SecretAccessKey),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		// R2 requires path-style addressing.
		o.UsePathStyle = true
	})

	return &ObjectStore{
		bucket:       strings.TrimSpace(cfg.Bucket),
		publicBase:   publicBase,
		storageClass: strings.TrimSpace(cfg.StorageClass),
		client:       client,
	}, nil
}

func (s *ObjectStore) PublicURL(key string) string {
	return s.publicBase + "/" + strings.TrimLeft(key, "/")
}

// PutObject uploads body under key and returns its public URL.
func (s *ObjectStore) PutObject(ctx context.Context, key string, body []byte, contentType string, cacheControl string) (string, error) {
	key = strings.TrimLeft(key, "/")
	ct := strings.TrimSpace(contentType)
	if ct == "" {
		ct = "application/octet-stream"
	}
	cc := strings.TrimSpace(cacheControl)
	if cc == "" {
		cc = "public, max-age=31536000, immutable"
	}

	input := &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(ct),
		CacheControl: aws.String(cc),
	}
	if sc := parseStorageClass(s.storageClass); sc != nil {
		input.StorageClass = *sc
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

// MenuPhotoKey names a fresh object for an item photo so browsers never
// serve a stale cached image.
func MenuPhotoKey(itemID string) string {
	return fmt.Sprintf("menu/%s/%s.jpg", strings.TrimSpace(itemID), uuid.NewString())
}

func (s *ObjectStore) DeleteKey(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimLeft(key, "/")),
	})
	return err
}

// ResolveKeyFromURL maps a public or path-style bucket URL back to its key.
func (s *ObjectStore) ResolveKeyFromURL(raw string) (string, bool) {
	return resolveKey(s.publicBase, s.bucket, raw)
}

func (s *ObjectStore) DeleteURL(ctx context.Context, raw string) error {
	key, ok := s.ResolveKeyFromURL(raw)
	if !ok {
		return fmt.Errorf("unmanaged url")
	}
	return s.DeleteKey(ctx, key)
}

func resolveKey(publicBase, bucket, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, publicBase+"/") {
		return strings.TrimLeft(raw[len(publicBase):], "/"), true
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	parts := strings.Split(strings.TrimLeft(parsed.Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == bucket {
		return strings.Join(parts[1:], "/"), true
	}
	return "", false
}

func parseStorageClass(v string) *types.StorageClass {
	v = strings.TrimSpace(strings.ToUpper(v))
	if v == "" {
		return nil
	}
	sc := types.StorageClass(v)
	return &sc
}
