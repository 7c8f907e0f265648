package computegraph

import (
	"errors"
	"fmt"
)

// Kind classifies an error by who is at fault.
type Kind int

const (
	// KindInternal is an unexpected failure on the server side. Retrying may help.
	KindInternal Kind = iota
	// KindClient is malformed or invalid input. Retrying will not help.
	KindClient
	// KindNotFound means a referenced namespace, graph or version is absent.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a classified sentinel. Callers wrap it with %w and test for it
// with errors.Is; KindOf recovers the classification.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

var (
	ErrMalformedGraph = &Error{KindClient, "computegraph: malformed compute graph"}
	ErrMalformedNode  = &Error{KindClient, "computegraph: malformed node"}
	ErrMalformedTask  = &Error{KindClient, "computegraph: malformed task"}
	ErrNameMismatch   = &Error{KindClient, "computegraph: node name does not match its key"}
	ErrInvalidGraph   = &Error{KindClient, "computegraph: invalid compute graph"}
	ErrCycleDetected  = &Error{KindClient, "computegraph: cycle detected, graph is not acyclic"}
	ErrBadRequest     = &Error{KindClient, "computegraph: bad request"}

	ErrGraphNotFound = &Error{KindNotFound, "computegraph: compute graph not found"}
	ErrCodeNotFound  = &Error{KindNotFound, "computegraph: code artifact not found"}

	ErrVersionConflict = &Error{KindInternal, "computegraph: graph version already exists"}
)

// KindOf returns the kind of the first classified error in err's chain.
// Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ClientErrorf returns an ErrBadRequest carrying a formatted message.
func ClientErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}
