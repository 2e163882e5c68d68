// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("snapshots/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	engine, err := rascal.New(rascal.WithStore(store))
//
// Snapshots are uploaded with the multipart upload manager and a CRC32C
// checksum; listing follows continuation tokens.
package s3
