package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/faturai/faturai-backend/internal/core/classify"
	"github.com/faturai/faturai-backend/internal/repositories"
)

// CategoryHandler serves the category catalog and merchant categorization
type CategoryHandler struct {
	categoryRepo repositories.CategoryRepo
	classifier   *classify.Classifier
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryRepo repositories.CategoryRepo, classifier *classify.Classifier) *CategoryHandler {
	return &CategoryHandler{categoryRepo: categoryRepo, classifier: classifier}
}

// GET /categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.categoryRepo.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"categories": categories,
	})
}

// SuggestRequest is the body for a category suggestion.
type SuggestRequest struct {
	MerchantName string `json:"merchant_name"`
}

// POST /categories/suggest
func (h *CategoryHandler) Suggest(c *fiber.Ctx) error {
	var req SuggestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if strings.TrimSpace(req.MerchantName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "merchant_name is required",
		})
	}

	code, ok := h.classifier.Classify(c.Context(), req.MerchantName)
	if !ok {
		return c.JSON(fiber.Map{
			"merchant_name": req.MerchantName,
			"category":      nil,
		})
	}

	category, err := h.categoryRepo.GetByCode(code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"merchant_name": req.MerchantName,
		"category":      category,
	})
}
