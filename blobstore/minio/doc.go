// Package minio implements blobstore.BlobStore with the MinIO client, for
// MinIO and other S3-compatible services.
//
//	store, err := minio.Dial(ctx, minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "systems",
//	})
//	A, err := sparsela.LoadMatrixBlob[float64](ctx, store, "poisson/A.dat.zst", 1)
package minio
