package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-matcher/internal/matching"
)

const missingResumeMessage = "Debe enviar 'cv_texto' en la solicitud."

type applyRequest struct {
	Resume string `json:"cv_texto"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorResponse{Error: message})
}

// health reports liveness and the size of the loaded catalog.
func (s *Server) health(c *fiber.Ctx) error {
	cat := s.engine.Catalog()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":   "ok",
		"postings": len(cat.Postings),
		"courses":  len(cat.Courses),
	})
}

// apply ranks the catalog against the submitted résumé text.
func (s *Server) apply(c *fiber.Ctx) error {
	log := s.requestLogger(c)
	started := time.Now()

	var req applyRequest
	if err := c.BodyParser(&req); err != nil {
		log.Debug("invalid request body", zap.Error(err))
		return errorJSON(c, fiber.StatusBadRequest, missingResumeMessage)
	}

	results, err := s.engine.Rank(req.Resume)
	if errors.Is(err, matching.ErrInvalidInput) {
		return errorJSON(c, fiber.StatusBadRequest, missingResumeMessage)
	}
	if err != nil {
		return err
	}

	if s.filters != nil {
		results, err = s.filters(req.Resume).RunFilters(c.UserContext(), results)
		if err != nil {
			return err
		}
	}

	log.Info("resume matched",
		zap.Int("results", results.Len()),
		zap.Duration("took", time.Since(started)),
	)

	return c.Status(fiber.StatusOK).JSON(results)
}
