package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/faturai/faturai-backend/internal/models"
)

// CategoryRepo exposes the read-only category catalog.
type CategoryRepo interface {
	List() ([]models.Category, error)
	GetByCode(code string) (*models.Category, error)
	Codes() ([]string, error)
}

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(db *gorm.DB) CategoryRepo {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) List() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Order("code ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepo) GetByCode(code string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) Codes() ([]string, error) {
	var codes []string
	err := r.db.Model(&models.Category{}).Order("code ASC").
		Pluck("code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}
