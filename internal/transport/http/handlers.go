// internal/transport/http/handlers.go
package http

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"datagen-service/internal/generator"
	"datagen-service/internal/service"
)

type Handler struct {
	runService *service.RunService
}

func NewHandler(runService *service.RunService) *Handler {
	return &Handler{runService: runService}
}

// TriggerRun executes one generation run synchronously. The external
// scheduler posts here once per day; overrides are optional.
func (h *Handler) TriggerRun(c *fiber.Ctx) error {
	var req service.RunRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
	}

	log.Printf("📊 [TRIGGER] Run requested | IP=%s", c.IP())

	summary, err := h.runService.Execute(c.Context(), req)
	if err != nil {
		if errors.Is(err, generator.ErrInvalidArgument) || errors.Is(err, generator.ErrInvalidConfiguration) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("❌ TriggerRun failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "run failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "completed",
		"run":    summary,
	})
}

// ListRuns returns the most recent entries of the run ledger.
func (h *Handler) ListRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	runs, err := h.runService.ListRuns(c.Context(), limit)
	if err != nil {
		log.Printf("❌ [ListRuns] %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch runs"})
	}
	return c.JSON(fiber.Map{"runs": runs})
}

// GetRun returns one ledger entry with its funnel stats.
func (h *Handler) GetRun(c *fiber.Ctx) error {
	id := c.Params("id")
	run, err := h.runService.GetRun(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "run not found"})
	}
	return c.JSON(fiber.Map{"run": run})
}
