package repository

import (
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"gorm.io/gorm"
)

type EvaluationRepository struct {
	DB *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: db}
}

// FindByID loads the evaluation with its questions and options in authoring
// order.
func (r *EvaluationRepository) FindByID(id uint) (*model.Evaluation, error) {
	var e model.Evaluation
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.sort_order")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.sort_order")
		}).
		First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EvaluationRepository) Update(evaluation *model.Evaluation) error {
	return r.DB.Save(evaluation).Error
}

func (r *EvaluationRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Evaluation{}, id).Error
}

func (r *EvaluationRepository) ListByCourse(courseID uint, activeOnly bool) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	query := r.DB.Where("course_id = ?", courseID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("created_at").Find(&evaluations).Error
	return evaluations, err
}

func (r *EvaluationRepository) CreateQuestion(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *EvaluationRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_options.sort_order")
	}).First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *EvaluationRepository) UpdateQuestion(question *model.Question) error {
	return r.DB.Save(question).Error
}

func (r *EvaluationRepository) DeleteQuestion(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.QuestionOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, id).Error
	})
}

func (r *EvaluationRepository) ReplaceOptions(questionID uint, options []model.QuestionOption) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.QuestionOption{}).Error; err != nil {
			return err
		}
		if len(options) == 0 {
			return nil
		}
		for i := range options {
			options[i].QuestionID = questionID
		}
		return tx.Create(&options).Error
	})
}
