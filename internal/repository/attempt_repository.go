package repository

import (
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.Preload("Answers").First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) CountByEvaluation(evaluationID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).Where("evaluation_id = ?", evaluationID).Count(&count).Error
	return count, err
}

// BestByUserAndEvaluation returns the highest-scoring finished attempt; ties
// break by most recent submission for reproducibility.
func (r *AttemptRepository) BestByUserAndEvaluation(userID, evaluationID uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.
		Where("user_id = ? AND evaluation_id = ? AND status = ?", userID, evaluationID, model.AttemptGraded).
		Order("percentage DESC").
		Order("submitted_at DESC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListByUserAndEvaluation(userID, evaluationID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_id = ? AND evaluation_id = ?", userID, evaluationID).
		Order("started_at DESC").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListAwaitingGrading(evaluationID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	query := r.DB.Where("status = ?", model.AttemptAwaitingGrading)
	if evaluationID > 0 {
		query = query.Where("evaluation_id = ?", evaluationID)
	}
	err := query.Order("submitted_at").Find(&attempts).Error
	return attempts, err
}
