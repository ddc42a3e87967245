// Package s3 implements blobstore.BlobStore on Amazon S3.
//
// Reads use ranged GetObject requests. Streaming writes go through the
// multipart upload manager so that large matrices never have to be
// buffered in memory.
//
// Use config.LoadDefaultConfig from aws-sdk-go-v2 to build the client:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "systems/")
package s3
