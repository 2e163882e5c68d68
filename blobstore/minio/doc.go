// Package minio provides a blobstore.Store for MinIO and other S3-compatible
// object stores, built on minio-go.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	store := rascalminio.NewStore(client, "snapshots", "project-a/")
package minio
