// Package artifact stores the code bundles that compute graphs run.
// Bundles are content addressed by their SHA-256 digest.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/meikuraledutech/computegraph"
)

// FSStore implements computegraph.CodeStore on a local directory.
// Artifacts live at <dir>/<sha256>; Path is a file:// URL.
type FSStore struct {
	dir string
}

var _ computegraph.CodeStore = (*FSStore)(nil)

// NewFSStore creates the directory if needed.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

// PutCode writes r to a staging file while hashing it, then renames the file
// to its digest. Storing identical bytes twice leaves a single file.
func (s *FSStore) PutCode(ctx context.Context, r io.Reader, size int64) (computegraph.Code, error) {
	staging := filepath.Join(s.dir, ".staging-"+uuid.NewString())
	f, err := os.Create(staging)
	if err != nil {
		return computegraph.Code{}, fmt.Errorf("artifact: create staging file: %w", err)
	}
	defer os.Remove(staging)

	h := sha256.New()
	written, err := io.Copy(f, io.TeeReader(contextReader{ctx, r}, h))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return computegraph.Code{}, fmt.Errorf("artifact: write code: %w", err)
	}
	if err := checkSize(size, written); err != nil {
		return computegraph.Code{}, err
	}

	digest := hexDigest(h)
	dst := filepath.Join(s.dir, digest)
	if err := os.Rename(staging, dst); err != nil {
		return computegraph.Code{}, fmt.Errorf("artifact: commit code: %w", err)
	}

	return computegraph.Code{
		SHA256Hash: digest,
		Size:       uint64(written),
		Path:       "file://" + dst,
	}, nil
}

// GetCode opens the artifact with c's digest.
func (s *FSStore) GetCode(ctx context.Context, c computegraph.Code) (io.ReadCloser, error) {
	p, err := s.pathFor(c)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", computegraph.ErrCodeNotFound, c.SHA256Hash)
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: open code: %w", err)
	}
	return f, nil
}

// DeleteCode removes the artifact. No error if it doesn't exist.
func (s *FSStore) DeleteCode(ctx context.Context, c computegraph.Code) error {
	p, err := s.pathFor(c)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("artifact: delete code: %w", err)
	}
	return nil
}

// pathFor resolves c by digest only; c.Path is descriptive.
func (s *FSStore) pathFor(c computegraph.Code) (string, error) {
	if !validDigest(c.SHA256Hash) {
		return "", computegraph.ClientErrorf("invalid code digest %q", c.SHA256Hash)
	}
	return filepath.Join(s.dir, c.SHA256Hash), nil
}

// checkSize compares the bytes read against the size the caller announced.
func checkSize(want, got int64) error {
	if want >= 0 && want != got {
		return computegraph.ClientErrorf("code is %d bytes, expected %d", got, want)
	}
	return nil
}

func hexDigest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

func validDigest(d string) bool {
	if len(d) != sha256.Size*2 {
		return false
	}
	return strings.Trim(d, "0123456789abcdef") == ""
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
