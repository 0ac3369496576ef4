package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/faturai/faturai-backend/internal/core/apperr"
	"github.com/faturai/faturai-backend/internal/models"
)

// CardRepo defines card read operations consumed by the pipeline and the
// recommendation engine. Cards are never mutated by either.
type CardRepo interface {
	GetByID(id uuid.UUID) (*models.Card, error)
	ListActiveByUser(userID uuid.UUID) ([]models.Card, error)
	CountActiveByUser(userID uuid.UUID) (int64, error)
}

type cardRepo struct {
	db *gorm.DB
}

// NewCardRepo creates a new card repository.
func NewCardRepo(db *gorm.DB) CardRepo {
	return &cardRepo{db: db}
}

func (r *cardRepo) GetByID(id uuid.UUID) (*models.Card, error) {
	var card models.Card
	err := r.db.Preload("RewardPrograms").Preload("RewardPrograms.RewardProgram").
		Where("id = ?", id).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "card %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *cardRepo) ListActiveByUser(userID uuid.UUID) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.Preload("RewardPrograms").Preload("RewardPrograms.RewardProgram").
		Where("user_id = ? AND active = ?", userID, true).
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *cardRepo) CountActiveByUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Card{}).
		Where("user_id = ? AND active = ?", userID, true).
		Count(&count).Error
	return count, err
}
