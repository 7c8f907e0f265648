package computegraph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindClient, KindOf(fmt.Errorf("node x: %w", ErrMalformedNode)))
	assert.Equal(t, KindClient, KindOf(ClientErrorf("bad %d", 1)))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("%w: ns/g", ErrGraphNotFound)))
	assert.Equal(t, KindNotFound, KindOf(ErrCodeNotFound))
	assert.Equal(t, KindInternal, KindOf(ErrVersionConflict))
	assert.Equal(t, KindInternal, KindOf(errors.New("connection refused")))
}

func TestClientErrorfWrapsBadRequest(t *testing.T) {
	err := ClientErrorf("missing %s", "code")
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, "computegraph: bad request: missing code", err.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "client", KindClient.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "internal", KindInternal.String())
}
