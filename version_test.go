package computegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextVersion(t *testing.T) {
	assert.Equal(t, FirstVersion, NextVersion(0))

	v := GraphVersion(0)
	for i := 0; i < 100; i++ {
		next := NextVersion(v)
		require.Greater(t, next, v)
		v = next
	}
	assert.Equal(t, GraphVersion(100), v)
}

func TestParseGraphVersion(t *testing.T) {
	v, err := ParseGraphVersion("42")
	require.NoError(t, err)
	assert.Equal(t, GraphVersion(42), v)
	assert.Equal(t, "42", v.String())

	for _, in := range []string{"", "0", "-1", "v1", "1.5"} {
		_, err := ParseGraphVersion(in)
		require.Error(t, err, in)
		assert.Equal(t, KindClient, KindOf(err), in)
	}
}
