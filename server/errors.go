package main

import (
	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/computegraph"
)

func statusFor(kind computegraph.Kind) int {
	switch kind {
	case computegraph.KindClient:
		return fiber.StatusBadRequest
	case computegraph.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// fail logs err and writes it as the response. The error kind picks the
// status; nothing is reclassified on the way out.
func (s *server) fail(c fiber.Ctx, err error) error {
	kind := computegraph.KindOf(err)
	status := statusFor(kind)
	s.log.Error(err, "request failed",
		"method", c.Method(), "path", c.Path(), "status", status, "kind", kind.String())
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
