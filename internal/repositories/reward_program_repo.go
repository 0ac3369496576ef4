package repositories

import (
	"gorm.io/gorm"

	"github.com/faturai/faturai-backend/internal/models"
)

// RewardProgramRepo exposes the reward-program catalog.
type RewardProgramRepo interface {
	List() ([]models.RewardProgram, error)
}

type rewardProgramRepo struct {
	db *gorm.DB
}

// NewRewardProgramRepo creates a new reward-program repository.
func NewRewardProgramRepo(db *gorm.DB) RewardProgramRepo {
	return &rewardProgramRepo{db: db}
}

func (r *rewardProgramRepo) List() ([]models.RewardProgram, error) {
	var programs []models.RewardProgram
	if err := r.db.Order("name ASC").Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}
