// Package blobstore provides the storage abstraction used to load and save
// matrices, vectors and solutions as triplet blobs.
//
// BlobStore is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local file system
//   - MemoryStore: process memory, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Blob names are slash separated. A name's suffix selects the compression
// applied by the sparsela load and save helpers (".zst", ".lz4").
package blobstore
