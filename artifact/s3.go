package artifact

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/meikuraledutech/computegraph"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Secure    bool
}

// S3Store implements computegraph.CodeStore on an S3-compatible bucket.
// Objects are written to a staging key, then copied to <prefix>/<sha256>.
type S3Store struct {
	client *minio.Client

	bucket string
	prefix string
}

var _ computegraph.CodeStore = (*S3Store)(nil)

// NewS3Store connects to the endpoint and creates the bucket if it is missing.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("artifact: s3 client: %w", err)
	}

	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errBucketExists := client.BucketExists(ctx, cfg.Bucket)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("artifact: make bucket %s: %w", cfg.Bucket, err)
		}
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "code"
	}
	return &S3Store{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

func (s *S3Store) objectName(key string) string {
	return fmt.Sprintf("%s/%s", s.prefix, key)
}

// PutCode streams r to a staging object while hashing it, then copies the
// object to its digest key and removes the staging object.
// An unknown size is resolved by spooling r to a temporary file first.
func (s *S3Store) PutCode(ctx context.Context, r io.Reader, size int64) (computegraph.Code, error) {
	if size < 0 {
		spool, n, err := spoolToTemp(ctx, r)
		if err != nil {
			return computegraph.Code{}, err
		}
		defer func() {
			spool.Close()
			os.Remove(spool.Name())
		}()
		r, size = spool, n
	}

	staging := s.objectName("staging/" + uuid.NewString())
	h := sha256.New()
	info, err := s.client.PutObject(ctx, s.bucket, staging, io.TeeReader(r, h), size,
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return computegraph.Code{}, fmt.Errorf("artifact: upload code: %w", err)
	}
	defer s.client.RemoveObject(context.WithoutCancel(ctx), s.bucket, staging, minio.RemoveObjectOptions{})
	if err := checkSize(size, info.Size); err != nil {
		return computegraph.Code{}, err
	}
	// minio stops after size bytes; anything left over means size was short.
	if n, _ := io.ReadFull(r, make([]byte, 1)); n > 0 {
		return computegraph.Code{}, computegraph.ClientErrorf("code is longer than %d bytes", size)
	}

	digest := hexDigest(h)
	dst := s.objectName(digest)
	if _, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: dst},
		minio.CopySrcOptions{Bucket: s.bucket, Object: staging},
	); err != nil {
		return computegraph.Code{}, fmt.Errorf("artifact: commit code: %w", err)
	}

	return computegraph.Code{
		SHA256Hash: digest,
		Size:       uint64(info.Size),
		Path:       fmt.Sprintf("s3://%s/%s", s.bucket, dst),
	}, nil
}

// GetCode opens the object stored under c's digest.
func (s *S3Store) GetCode(ctx context.Context, c computegraph.Code) (io.ReadCloser, error) {
	if !validDigest(c.SHA256Hash) {
		return nil, computegraph.ClientErrorf("invalid code digest %q", c.SHA256Hash)
	}
	name := s.objectName(c.SHA256Hash)
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", computegraph.ErrCodeNotFound, c.SHA256Hash)
		}
		return nil, fmt.Errorf("artifact: stat code: %w", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("artifact: get code: %w", err)
	}
	return obj, nil
}

// spoolToTemp copies r to a temporary file and rewinds it.
func spoolToTemp(ctx context.Context, r io.Reader) (*os.File, int64, error) {
	f, err := os.CreateTemp("", "computegraph-code-*")
	if err != nil {
		return nil, 0, fmt.Errorf("artifact: spool code: %w", err)
	}
	n, err := io.Copy(f, contextReader{ctx, r})
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, 0, fmt.Errorf("artifact: spool code: %w", err)
	}
	return f, n, nil
}

// DeleteCode removes the object. No error if it doesn't exist.
func (s *S3Store) DeleteCode(ctx context.Context, c computegraph.Code) error {
	if !validDigest(c.SHA256Hash) {
		return computegraph.ClientErrorf("invalid code digest %q", c.SHA256Hash)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, s.objectName(c.SHA256Hash), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("artifact: delete code: %w", err)
	}
	return nil
}
