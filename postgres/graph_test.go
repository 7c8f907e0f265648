package postgres

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/computegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to TEST_DATABASE_URL and recreates the schema.
func newTestStore(t *testing.T) *PGStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.DropSchema(ctx))
	require.NoError(t, s.CreateSchema(ctx))
	return s
}

func routerGraph(description string) *computegraph.ComputeGraph {
	a := computegraph.ComputeFn{NodeName: "extractor_a", FnName: "extractor_a", Description: "first"}
	return &computegraph.ComputeGraph{
		Name:        "graph_a_router",
		Namespace:   "test",
		Description: description,
		StartFn:     a,
		Nodes: map[string]computegraph.Node{
			"extractor_a": a,
			"router_x": computegraph.DynamicRouter{
				NodeName: "router_x", SourceFn: "extractor_a",
				TargetFns: []string{"extractor_y", "extractor_z"},
			},
			"extractor_y": computegraph.ComputeFn{NodeName: "extractor_y", FnName: "extractor_y"},
			"extractor_z": computegraph.ComputeFn{NodeName: "extractor_z", FnName: "extractor_z", Reducer: true},
			"extractor_c": computegraph.ComputeFn{NodeName: "extractor_c", FnName: "extractor_c"},
		},
		Edges: map[string][]string{
			"extractor_a": {"router_x"},
			"extractor_y": {"extractor_c"},
			"extractor_z": {"extractor_c"},
			"extractor_c": {},
		},
		Code: computegraph.Code{
			SHA256Hash: "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
			Size:       4,
			Path:       "s3://code/9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		},
	}
}

func TestCreateAndGetGraph(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := routerGraph("first")
	stored, err := s.CreateGraph(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, computegraph.FirstVersion, stored.Version)
	assert.NotZero(t, stored.CreatedAt)

	got, err := s.GetGraph(ctx, "test", "graph_a_router", stored.Version)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(stored, got, cmpopts.EquateEmpty()))

	// Edge order survives storage.
	assert.Equal(t, []string{"extractor_y", "extractor_z"}, got.Nodes["router_x"].(computegraph.DynamicRouter).TargetFns)
	assert.NotNil(t, got.Edges["extractor_c"])
}

func TestCreateGraphTwiceKeepsBothVersions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateGraph(ctx, routerGraph("first"))
	require.NoError(t, err)
	second, err := s.CreateGraph(ctx, routerGraph("second"))
	require.NoError(t, err)
	assert.Greater(t, second.Version, first.Version)

	got, err := s.GetGraph(ctx, "test", "graph_a_router", first.Version)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Description)

	latest, err := s.GetLatestGraph(ctx, "test", "graph_a_router")
	require.NoError(t, err)
	assert.Equal(t, "second", latest.Description)
	assert.Equal(t, second.Version, latest.Version)

	versions, err := s.ListVersions(ctx, "test", "graph_a_router")
	require.NoError(t, err)
	assert.Equal(t, []computegraph.GraphVersion{first.Version, second.Version}, versions)
}

func TestGraphNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetGraph(ctx, "test", "missing", 1)
	require.ErrorIs(t, err, computegraph.ErrGraphNotFound)
	_, err = s.GetLatestGraph(ctx, "test", "missing")
	require.ErrorIs(t, err, computegraph.ErrGraphNotFound)

	versions, err := s.ListVersions(ctx, "test", "missing")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestDeleteGraphKeepsCounter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateGraph(ctx, routerGraph(""))
	require.NoError(t, err)
	require.NoError(t, s.DeleteGraph(ctx, "test", "graph_a_router"))

	_, err = s.GetGraph(ctx, "test", "graph_a_router", first.Version)
	require.ErrorIs(t, err, computegraph.ErrGraphNotFound)

	next, err := s.CreateGraph(ctx, routerGraph(""))
	require.NoError(t, err)
	assert.Greater(t, next.Version, first.Version)
}

func TestConcurrentCreates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateGraph(ctx, routerGraph(""))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	versions, err := s.ListVersions(ctx, "test", "graph_a_router")
	require.NoError(t, err)
	want := make([]computegraph.GraphVersion, n)
	for i := range want {
		want[i] = computegraph.GraphVersion(i + 1)
	}
	assert.Empty(t, cmp.Diff(want, versions, cmpopts.EquateEmpty()))
}
