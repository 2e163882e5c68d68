// Package blobstore provides the storage abstraction snapshots are written to.
//
// Built-in implementations:
//
//   - MemoryStore: in-process map, for tests and ephemeral engines
//   - LocalStore: local filesystem with atomic rename on Put
//   - s3.Store: Amazon S3 with multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
package blobstore
