// Package blobstore abstracts where bitmap and configuration files live.
//
// The engine only ever reads. Every Blob is a size snapshot taken at Open,
// so a producer appending rows concurrently cannot change what a single
// read observes.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap support
//   - MemoryStore: in-memory, for tests and tooling
//   - s3.Store: Amazon S3 with ranged reads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	}
//
//	type Blob interface {
//	    io.Closer
//	    Size() int64
//	    ReadAt(ctx, p, off) (int, error)
//	}
package blobstore
