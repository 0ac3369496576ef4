package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/faturai/faturai-backend/internal/repositories"
)

// PointHandler serves reward point balances and the program catalog
type PointHandler struct {
	pointRepo   repositories.PointRepo
	programRepo repositories.RewardProgramRepo
}

// NewPointHandler creates a new point handler
func NewPointHandler(pointRepo repositories.PointRepo, programRepo repositories.RewardProgramRepo) *PointHandler {
	return &PointHandler{pointRepo: pointRepo, programRepo: programRepo}
}

// GET /reward-programs
func (h *PointHandler) Programs(c *fiber.Ctx) error {
	programs, err := h.programRepo.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"reward_programs": programs,
	})
}

// GET /points/summary?user_id=...
func (h *PointHandler) Summary(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	balances, err := h.pointRepo.SummaryByUser(userID)
	if err != nil {
		return respondError(c, err)
	}

	var total int64
	for _, b := range balances {
		total += b.Balance
	}

	return c.JSON(fiber.Map{
		"programs": balances,
		"total":    total,
	})
}
