package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/computegraph"
	"github.com/meikuraledutech/computegraph/api"
	"github.com/meikuraledutech/computegraph/artifact"
	"github.com/meikuraledutech/computegraph/postgres"
)

// routerGraph is what the Python SDK sends for a graph with a dynamic router.
const routerGraph = `{
  "name": "graph_a_router",
  "description": "description of graph_a",
  "start_node": {"compute_fn": {"name": "extractor_a", "fn_name": "extractor_a", "description": "Random description of extractor_a", "reducer": false}},
  "nodes": {
    "extractor_a": {"compute_fn": {"name": "extractor_a", "fn_name": "extractor_a", "description": "Random description of extractor_a", "reducer": false}},
    "router_x":    {"dynamic_router": {"name": "router_x", "description": "", "source_fn": "extractor_a", "target_fns": ["extractor_y", "extractor_z"]}},
    "extractor_y": {"compute_fn": {"name": "extractor_y", "fn_name": "extractor_y", "description": "", "reducer": false}},
    "extractor_z": {"compute_fn": {"name": "extractor_z", "fn_name": "extractor_z", "description": "", "reducer": false}},
    "extractor_c": {"compute_fn": {"name": "extractor_c", "fn_name": "extractor_c", "description": "", "reducer": true}}
  },
  "edges": {
    "extractor_a": ["router_x"],
    "extractor_y": ["extractor_c"],
    "extractor_z": ["extractor_c"]
  }
}`

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	// Wire up the postgres implementation behind the Store interface.
	var store computegraph.Store = postgres.New(pool)

	codeDir, err := os.MkdirTemp("", "computegraph-code")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(codeDir)
	codes, err := artifact.NewFSStore(codeDir)
	if err != nil {
		log.Fatalf("code store: %v", err)
	}

	// Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Upload code and register the graph twice ─────────────────────
	for i, bundle := range []string{"def extractor_a(): ...", "def extractor_a(): return 1"} {
		code, err := codes.PutCode(ctx, strings.NewReader(bundle), int64(len(bundle)))
		if err != nil {
			log.Fatalf("put code: %v", err)
		}
		g, err := api.ParseComputeGraph("default", []byte(routerGraph), code)
		if err != nil {
			log.Fatalf("parse graph: %v", err)
		}
		created, err := store.CreateGraph(ctx, g)
		if err != nil {
			log.Fatalf("create graph: %v", err)
		}
		fmt.Printf("\nregistration %d stored as version %s (code %s)\n", i+1, created.Version, code.SHA256Hash[:12])
	}

	// ── Retrieve ──────────────────────────────────────────────────────
	versions, err := store.ListVersions(ctx, "default", "graph_a_router")
	if err != nil {
		log.Fatalf("list versions: %v", err)
	}
	fmt.Printf("\nversions: %v\n", versions)

	latest, err := store.GetLatestGraph(ctx, "default", "graph_a_router")
	if err != nil {
		log.Fatalf("get graph: %v", err)
	}
	fmt.Println("\nlatest graph:")
	printJSON(api.ComputeGraphFromModel(latest))
	fmt.Printf("successors of router_x: %v\n", latest.Successors("router_x"))

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteGraph(ctx, "default", "graph_a_router"); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\ngraph deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
