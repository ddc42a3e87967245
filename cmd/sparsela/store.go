package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/sparsela/blobstore"
	"github.com/hupe1980/sparsela/blobstore/minio"
	"github.com/hupe1980/sparsela/blobstore/s3"
)

// openStore resolves a -store value to a blob store. MinIO credentials are
// read from MINIO_ACCESS_KEY and MINIO_SECRET_KEY; MINIO_SECURE=true
// enables TLS.
func openStore(ctx context.Context, uri string) (blobstore.BlobStore, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		bucket, prefix, err := splitBucket(strings.TrimPrefix(uri, "s3://"))
		if err != nil {
			return nil, err
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return s3.NewStore(awss3.NewFromConfig(cfg), bucket, prefix), nil

	case strings.HasPrefix(uri, "minio://"):
		host, rest, ok := strings.Cut(strings.TrimPrefix(uri, "minio://"), "/")
		if !ok || host == "" {
			return nil, fmt.Errorf("invalid store %q: want minio://host/bucket/prefix", uri)
		}
		bucket, prefix, err := splitBucket(rest)
		if err != nil {
			return nil, err
		}
		return minio.Dial(ctx, minio.Config{
			Endpoint:  host,
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Secure:    os.Getenv("MINIO_SECURE") == "true",
			Bucket:    bucket,
			Prefix:    prefix,
		})

	default:
		return blobstore.NewLocalStore(uri), nil
	}
}

func splitBucket(s string) (bucket, prefix string, err error) {
	bucket, prefix, _ = strings.Cut(s, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in store %q", s)
	}
	return bucket, prefix, nil
}
