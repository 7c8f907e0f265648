package api

import (
	"encoding/json"
	"testing"

	"github.com/meikuraledutech/computegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeUnmarshalVariants(t *testing.T) {
	var n Node
	require.NoError(t, json.Unmarshal([]byte(
		`{"compute_fn":{"name":"a","fn_name":"fn_a","description":"d","reducer":true}}`), &n))
	require.NotNil(t, n.ComputeFn)
	assert.Nil(t, n.DynamicRouter)
	assert.Equal(t, ComputeFn{Name: "a", FnName: "fn_a", Description: "d", Reducer: true}, *n.ComputeFn)

	n = Node{}
	require.NoError(t, json.Unmarshal([]byte(
		`{"dynamic_router":{"name":"r","source_fn":"a","description":"","target_fns":["y","z"]}}`), &n))
	require.NotNil(t, n.DynamicRouter)
	assert.Nil(t, n.ComputeFn)
	assert.Equal(t, []string{"y", "z"}, n.DynamicRouter.TargetFns)
	assert.Equal(t, "r", n.Name())
}

func TestNodeUnmarshalIgnoresUnknownFieldsInBody(t *testing.T) {
	// The Python SDK sends "reducer" on routers too.
	var n Node
	require.NoError(t, json.Unmarshal([]byte(
		`{"dynamic_router":{"name":"r","source_fn":"r","description":"","target_fns":["y"],"reducer":false}}`), &n))
	assert.Equal(t, "r", n.Name())
}

func TestNodeUnmarshalRejects(t *testing.T) {
	tests := map[string]string{
		"unknown tag":     `{"unknown_kind":{"name":"a"}}`,
		"two tags":        `{"compute_fn":{"name":"a"},"dynamic_router":{"name":"a"}}`,
		"no tag":          `{}`,
		"null body":       `{"compute_fn":null}`,
		"not an object":   `"compute_fn"`,
		"array":           `[{"compute_fn":{"name":"a"}}]`,
		"bad body":        `{"compute_fn":"a"}`,
		"bad field type":  `{"dynamic_router":{"name":"r","target_fns":"y"}}`,
		"untagged fields": `{"name":"a","fn_name":"a"}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			var n Node
			err := json.Unmarshal([]byte(in), &n)
			require.Error(t, err)
			assert.ErrorIs(t, err, computegraph.ErrMalformedNode)
			assert.Equal(t, computegraph.KindClient, computegraph.KindOf(err))
		})
	}
}

func TestNodeMarshalIsSingleKeyTagged(t *testing.T) {
	data, err := json.Marshal(Node{ComputeFn: &ComputeFn{Name: "a", FnName: "a"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"compute_fn":{"name":"a","fn_name":"a","description":"","reducer":false}}`, string(data))

	data, err = json.Marshal(Node{DynamicRouter: &DynamicRouter{Name: "r", SourceFn: "a", TargetFns: []string{"y"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dynamic_router":{"name":"r","source_fn":"a","description":"","target_fns":["y"]}}`, string(data))

	_, err = json.Marshal(Node{})
	require.ErrorIs(t, err, computegraph.ErrMalformedNode)

	_, err = json.Marshal(Node{ComputeFn: &ComputeFn{}, DynamicRouter: &DynamicRouter{}})
	require.ErrorIs(t, err, computegraph.ErrMalformedNode)
}

func TestNodeModelRoundTrip(t *testing.T) {
	nodes := []computegraph.Node{
		computegraph.ComputeFn{NodeName: "a", FnName: "fn_a", Description: "first", Reducer: true},
		computegraph.DynamicRouter{NodeName: "r", SourceFn: "a", Description: "route", TargetFns: []string{"y", "z"}},
	}
	for _, n := range nodes {
		wire := NodeFromModel(n)
		assert.Equal(t, n.Name(), wire.Name())

		back, err := wire.IntoModel()
		require.NoError(t, err)
		assert.Equal(t, n, back)
	}
}

func TestNodeTagDeterminesVariant(t *testing.T) {
	body := `{"name":"x","fn_name":"x","source_fn":"x","description":"","target_fns":["y"],"reducer":false}`

	var c, r Node
	require.NoError(t, json.Unmarshal([]byte(`{"compute_fn":`+body+`}`), &c))
	require.NoError(t, json.Unmarshal([]byte(`{"dynamic_router":`+body+`}`), &r))

	cm, err := c.IntoModel()
	require.NoError(t, err)
	rm, err := r.IntoModel()
	require.NoError(t, err)

	assert.IsType(t, computegraph.ComputeFn{}, cm)
	assert.IsType(t, computegraph.DynamicRouter{}, rm)
}
