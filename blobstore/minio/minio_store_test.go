package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rascal/blobstore"
)

func TestTranslate(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	assert.ErrorIs(t, translate(notFound), blobstore.ErrNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}
	assert.NotErrorIs(t, translate(denied), blobstore.ErrNotFound)
}

func TestNewStoreNormalizesPrefix(t *testing.T) {
	assert.Equal(t, "a/b/x", NewStore(nil, "bucket", "/a/b/").key("x"))
	assert.Equal(t, "x", NewStore(nil, "bucket", "").key("x"))
}

// TestMinioStore_Integration requires a running MinIO instance, configured
// through RASCAL_MINIO_ENDPOINT.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("RASCAL_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("RASCAL_MINIO_ENDPOINT not set")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	ctx := context.Background()
	bucket := "test-rascal"
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	require.NoError(t, store.Put(ctx, "snap", []byte("hello minio")))

	rc, err := store.Open(ctx, "snap")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello minio", string(data))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "snap")

	require.NoError(t, store.Delete(ctx, "snap"))
	_, err = store.Open(ctx, "snap")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
