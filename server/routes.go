package main

import (
	"math"

	"github.com/go-logr/logr"
	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/computegraph"
	"github.com/meikuraledutech/computegraph/api"
)

type server struct {
	store computegraph.Store
	code  computegraph.CodeStore
	log   logr.Logger
}

// newApp wires the HTTP routes onto the given stores.
func newApp(store computegraph.Store, code computegraph.CodeStore, log logr.Logger) *fiber.App {
	s := &server{store: store, code: code, log: log}

	app := fiber.New()

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := s.store.CreateSchema(c.Context()); err != nil {
			return s.fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := s.store.DropSchema(c.Context()); err != nil {
			return s.fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Compute graphs ────────────────────────────────────────────────
	graphs := app.Group("/namespaces/:namespace/compute_graphs")
	graphs.Post("/", s.createGraph)
	graphs.Get("/:name", s.getLatestGraph)
	graphs.Delete("/:name", s.deleteGraph)
	graphs.Get("/:name/versions", s.listVersions)
	graphs.Get("/:name/versions/:version", s.getGraph)
	graphs.Get("/:name/versions/:version/code", s.getCode)

	return app
}

// createGraph accepts a multipart body: a "compute_graph" JSON part and a
// "code" file part. The definition is parsed and validated, then the code is
// stored and its descriptor bound to the graph, which is stored under a new
// version.
func (s *server) createGraph(c fiber.Ctx) error {
	ns := c.Params("namespace")

	def := c.FormValue("compute_graph")
	if def == "" {
		return s.fail(c, computegraph.ClientErrorf("missing compute_graph part"))
	}
	fh, err := c.FormFile("code")
	if err != nil {
		return s.fail(c, computegraph.ClientErrorf("missing code part: %v", err))
	}

	// Rejected definitions must not leave code behind.
	g, err := api.ParseComputeGraph(ns, []byte(def), computegraph.Code{})
	if err != nil {
		return s.fail(c, err)
	}

	f, err := fh.Open()
	if err != nil {
		return s.fail(c, err)
	}
	defer f.Close()

	g.Code, err = s.code.PutCode(c.Context(), f, fh.Size)
	if err != nil {
		return s.fail(c, err)
	}

	stored, err := s.store.CreateGraph(c.Context(), g)
	if err != nil {
		return s.fail(c, err)
	}
	s.log.Info("compute graph created",
		"namespace", stored.Namespace, "name", stored.Name,
		"version", stored.Version.String(), "code", stored.Code.SHA256Hash)

	return c.Status(fiber.StatusCreated).JSON(api.ComputeGraphFromModel(stored))
}

func (s *server) getLatestGraph(c fiber.Ctx) error {
	g, err := s.store.GetLatestGraph(c.Context(), c.Params("namespace"), c.Params("name"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(api.ComputeGraphFromModel(g))
}

func (s *server) getGraph(c fiber.Ctx) error {
	g, err := s.graphVersion(c)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(api.ComputeGraphFromModel(g))
}

func (s *server) listVersions(c fiber.Ctx) error {
	versions, err := s.store.ListVersions(c.Context(), c.Params("namespace"), c.Params("name"))
	if err != nil {
		return s.fail(c, err)
	}
	if len(versions) == 0 {
		return s.fail(c, computegraph.ErrGraphNotFound)
	}
	return c.JSON(fiber.Map{"versions": versions})
}

func (s *server) deleteGraph(c fiber.Ctx) error {
	if err := s.store.DeleteGraph(c.Context(), c.Params("namespace"), c.Params("name")); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// getCode streams the code artifact bound to one graph version.
func (s *server) getCode(c fiber.Ctx) error {
	g, err := s.graphVersion(c)
	if err != nil {
		return s.fail(c, err)
	}
	rc, err := s.code.GetCode(c.Context(), g.Code)
	if err != nil {
		return s.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.SendStream(rc, streamSize(g.Code.Size))
}

// streamSize converts a stored size for SendStream; -1 means unknown.
func streamSize(size uint64) int {
	if size > math.MaxInt {
		return -1
	}
	return int(size)
}

func (s *server) graphVersion(c fiber.Ctx) (*computegraph.ComputeGraph, error) {
	v, err := computegraph.ParseGraphVersion(c.Params("version"))
	if err != nil {
		return nil, err
	}
	return s.store.GetGraph(c.Context(), c.Params("namespace"), c.Params("name"), v)
}
