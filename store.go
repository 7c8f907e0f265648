package computegraph

import (
	"context"
	"io"
)

// Store defines the contract for persisting and retrieving compute graphs.
// Every definition is kept under its own version; nothing is overwritten.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// CreateGraph stores g under the next version for (g.Namespace, g.Name)
	// and returns the stored copy with Version (and CreatedAt, if zero) set.
	CreateGraph(ctx context.Context, g *ComputeGraph) (*ComputeGraph, error)
	// GetGraph returns one version. Returns ErrGraphNotFound if absent.
	GetGraph(ctx context.Context, namespace, name string, version GraphVersion) (*ComputeGraph, error)
	// GetLatestGraph returns the highest version. Returns ErrGraphNotFound if absent.
	GetLatestGraph(ctx context.Context, namespace, name string) (*ComputeGraph, error)
	// ListVersions returns all stored versions in ascending order.
	ListVersions(ctx context.Context, namespace, name string) ([]GraphVersion, error)
	// DeleteGraph removes every version. No error if the graph doesn't exist.
	DeleteGraph(ctx context.Context, namespace, name string) error
}

// CodeStore holds the packaged code that graphs reference.
// Artifacts are content addressed: storing the same bytes twice yields
// descriptors that are Equal.
type CodeStore interface {
	// PutCode stores the bytes of r. size is the length of r, or -1 if it is
	// not known up front; a known size that r does not match is a client error.
	PutCode(ctx context.Context, r io.Reader, size int64) (Code, error)
	// GetCode opens the artifact. Returns ErrCodeNotFound if absent.
	GetCode(ctx context.Context, c Code) (io.ReadCloser, error)
	DeleteCode(ctx context.Context, c Code) error
}
