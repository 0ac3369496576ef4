package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/faturai/faturai-backend/internal/core/jobs"
)

// JobHandler exposes the background queue for monitoring
type JobHandler struct {
	queue *jobs.Queue
}

// NewJobHandler creates a new job handler
func NewJobHandler(queue *jobs.Queue) *JobHandler {
	return &JobHandler{queue: queue}
}

// GET /jobs/stats?user_id=...
func (h *JobHandler) Stats(c *fiber.Ctx) error {
	var userID *uuid.UUID
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid user_id format",
			})
		}
		userID = &id
	}

	stats, err := h.queue.GetStats(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GET /jobs/:id
func (h *JobHandler) GetByID(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job id format",
		})
	}

	job, err := h.queue.GetJob(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "job not found",
			})
		}
		return respondError(c, err)
	}
	return c.JSON(job)
}
