package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/faturai/faturai-backend/internal/recommend"
)

// RecommendationHandler serves card and transaction recommendations
type RecommendationHandler struct {
	service *recommend.Service
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(service *recommend.Service) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// GET /recommendations/cards?user_id=...
func (h *RecommendationHandler) Cards(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	rec, err := h.service.RecommendCards(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rec)
}

// POST /recommendations/optimize?user_id=...
func (h *RecommendationHandler) Optimize(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	suggestions, err := h.service.OptimizeTransactions(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
