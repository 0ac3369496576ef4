package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/faturai/faturai-backend/internal/models"
)

// ProgramBalance is the active point balance of one reward program.
type ProgramBalance struct {
	ProgramName string `json:"program_name"`
	ProgramCode string `json:"program_code"`
	Balance     int64  `json:"balance"`
}

// PointRepo defines point-ledger operations.
type PointRepo interface {
	Create(point *models.Point) error
	SummaryByUser(userID uuid.UUID) ([]ProgramBalance, error)
	// ExpireDue flips active entries whose expiry has passed and writes the
	// negative counter-entries. Returns the number of entries expired.
	ExpireDue(now time.Time) (int64, error)
}

type pointRepo struct {
	db *gorm.DB
}

// NewPointRepo creates a new point repository.
func NewPointRepo(db *gorm.DB) PointRepo {
	return &pointRepo{db: db}
}

func (r *pointRepo) Create(point *models.Point) error {
	return r.db.Create(point).Error
}

func (r *pointRepo) SummaryByUser(userID uuid.UUID) ([]ProgramBalance, error) {
	var rows []ProgramBalance
	err := r.db.Model(&models.Point{}).
		Joins("JOIN reward_programs ON reward_programs.id = points.reward_program_id").
		Where("points.user_id = ? AND points.status = ?", userID, models.PointStatusActive).
		Select("reward_programs.name AS program_name, COALESCE(reward_programs.code, '') AS program_code, SUM(points.amount) AS balance").
		Group("reward_programs.name, reward_programs.code").
		Order("balance DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *pointRepo) ExpireDue(now time.Time) (int64, error) {
	var expired int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var due []models.Point
		if err := tx.Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?",
			models.PointStatusActive, now).Find(&due).Error; err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(due))
		counters := make([]models.Point, 0, len(due))
		for _, p := range due {
			ids = append(ids, p.ID)
			counters = append(counters, models.Point{
				UserID:          p.UserID,
				RewardProgramID: p.RewardProgramID,
				TransactionID:   p.TransactionID,
				Amount:          -p.Amount,
				Status:          models.PointStatusExpired,
				Description:     "expiração automática",
			})
		}

		if err := tx.Model(&models.Point{}).Where("id IN ?", ids).
			Update("status", models.PointStatusExpired).Error; err != nil {
			return err
		}
		if err := tx.Create(&counters).Error; err != nil {
			return err
		}
		expired = int64(len(due))
		return nil
	})
	return expired, err
}
