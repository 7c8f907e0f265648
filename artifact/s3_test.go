package artifact

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/meikuraledutech/computegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestS3Store uses TEST_S3_ENDPOINT (a MinIO server, e.g. localhost:9000)
// with a prefix unique to the test.
func newTestS3Store(t *testing.T) *S3Store {
	t.Helper()
	endpoint := os.Getenv("TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("TEST_S3_ENDPOINT is not set")
	}
	s, err := NewS3Store(context.Background(), S3Config{
		Endpoint:  endpoint,
		Bucket:    "computegraph-test",
		Prefix:    "test-" + uuid.NewString(),
		AccessKey: os.Getenv("TEST_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("TEST_S3_SECRET_KEY"),
	})
	require.NoError(t, err)
	return s
}

func TestS3PutGetDelete(t *testing.T) {
	s := newTestS3Store(t)
	ctx := context.Background()

	c, err := s.PutCode(ctx, strings.NewReader("test"), 4)
	require.NoError(t, err)
	assert.Equal(t, testDigest, c.SHA256Hash)
	assert.Equal(t, uint64(4), c.Size)
	assert.Equal(t, "s3://computegraph-test/"+s.prefix+"/"+testDigest, c.Path)

	again, err := s.PutCode(ctx, strings.NewReader("test"), 4)
	require.NoError(t, err)
	assert.True(t, c.Equal(again))

	rc, err := s.GetCode(ctx, c)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "test", string(data))

	require.NoError(t, s.DeleteCode(ctx, c))
	_, err = s.GetCode(ctx, c)
	require.ErrorIs(t, err, computegraph.ErrCodeNotFound)
}

func TestS3PutCodeSizes(t *testing.T) {
	s := newTestS3Store(t)
	ctx := context.Background()

	c, err := s.PutCode(ctx, strings.NewReader("test"), -1)
	require.NoError(t, err)
	assert.Equal(t, testDigest, c.SHA256Hash)
	assert.Equal(t, uint64(4), c.Size)

	_, err = s.PutCode(ctx, strings.NewReader("test"), 3)
	require.ErrorIs(t, err, computegraph.ErrBadRequest)
}

func TestS3InvalidDigest(t *testing.T) {
	s := newTestS3Store(t)

	_, err := s.GetCode(context.Background(), computegraph.Code{SHA256Hash: "../x"})
	require.ErrorIs(t, err, computegraph.ErrBadRequest)
}
