package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bizflycloud/bizfly-s3/pkg/objectstore"
	"github.com/bizflycloud/bizfly-s3/pkg/testlib"
)

func newTestS3(t *testing.T) *S3 {
	t.Helper()
	fake := testlib.NewFakeS3(t)
	s3, err := New(fake.URL, testlib.Region,
		WithCredentials(testlib.AccessKey, testlib.SecretKey),
		WithLogger(zap.NewNop()),
	)
	require.NoError(t, err)
	require.NotNil(t, s3.S3Session)
	return s3
}

func TestNew(t *testing.T) {
	_, err := New("http://localhost:9000", "", WithLogger(nil))
	assert.Error(t, err)

	_, err = New("http://localhost:9000", "", WithHTTPClient(nil))
	assert.Error(t, err)

	s3, err := New("http://localhost:9000", "", WithCredentials("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, defaultRegion, s3.Region)
}

func TestS3_Buckets(t *testing.T) {
	ctx := context.Background()
	s3 := newTestS3(t)

	names, err := s3.ListBuckets(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s3.CreateBucket(ctx, "alpha", testlib.Region))
	require.NoError(t, s3.CreateBucket(ctx, "beta", "ap-southeast-1"))

	names, err = s3.ListBuckets(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)

	require.NoError(t, s3.DeleteBucket(ctx, "alpha"))
	names, err = s3.ListBuckets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, names)
}

func TestS3_Objects(t *testing.T) {
	ctx := context.Background()
	s3 := newTestS3(t)
	require.NoError(t, s3.CreateBucket(ctx, "test", testlib.Region))

	meta := map[string]string{"checksum-sha256": "abc123"}
	require.NoError(t, s3.PutObject(ctx, "test", "docs/a.txt", []byte("hello"), meta, "text/plain"))
	require.NoError(t, s3.PutObject(ctx, "test", "docs/b.txt", []byte("hello world"), nil, ""))
	require.NoError(t, s3.PutObject(ctx, "test", "img/c.png", []byte{1, 2, 3}, nil, ""))

	data, err := s3.GetObject(ctx, "test", "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	info, err := s3.HeadObject(ctx, "test", "docs/a.txt")
	require.NoError(t, err)
	require.NotNil(t, info.Size)
	assert.Equal(t, int64(5), *info.Size)
	assert.NotNil(t, info.ETag)
	assert.NotNil(t, info.LastModified)
	assert.Equal(t, "abc123", info.Metadata["checksum-sha256"])

	objs, err := s3.ListObjects(ctx, "test", "docs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.txt", "docs/b.txt"}, objectstore.Keys(objs))
	assert.Equal(t, int64(11), objs[1].Size)

	objs, err = s3.ListObjects(ctx, "test", "")
	require.NoError(t, err)
	assert.Len(t, objs, 3)

	require.NoError(t, s3.DeleteObject(ctx, "test", "docs/a.txt"))
	objs, err = s3.ListObjects(ctx, "test", "docs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/b.txt"}, objectstore.Keys(objs))
}

func TestS3_NotFound(t *testing.T) {
	ctx := context.Background()
	s3 := newTestS3(t)
	require.NoError(t, s3.CreateBucket(ctx, "test", testlib.Region))

	_, err := s3.GetObject(ctx, "test", "missing")
	require.Error(t, err)
	var se *objectstore.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "get object", se.Op)
	assert.True(t, objectstore.IsNotFound(err))

	_, err = s3.HeadObject(ctx, "test", "missing")
	assert.True(t, objectstore.IsNotFound(err))

	_, err = s3.ListObjects(ctx, "nope", "")
	assert.True(t, objectstore.IsNotFound(err))
}
