package service

import (
	"errors"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/repository"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"gorm.io/gorm"
)

type EvaluationService struct {
	EvaluationRepo *repository.EvaluationRepository
	AttemptRepo    *repository.AttemptRepository
	DB             *gorm.DB
}

func NewEvaluationService(evaluationRepo *repository.EvaluationRepository, attemptRepo *repository.AttemptRepository, db *gorm.DB) *EvaluationService {
	return &EvaluationService{
		EvaluationRepo: evaluationRepo,
		AttemptRepo:    attemptRepo,
		DB:             db,
	}
}

type OptionRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
	Order     int    `json:"order"`
}

type QuestionRequest struct {
	Text         string             `json:"text" binding:"required"`
	QuestionType model.QuestionType `json:"questionType" binding:"required"`
	Points       float64            `json:"points"`
	Required     bool               `json:"required"`
	Order        int                `json:"order"`
	Options      []OptionRequest    `json:"options"`
}

type EvaluationRequest struct {
	CourseID           uint              `json:"courseId" binding:"required"`
	LessonID           *uint             `json:"lessonId"`
	Title              string            `json:"title" binding:"required"`
	Description        string            `json:"description"`
	PassingScore       *float64          `json:"passingScore"`
	MaxAttempts        int               `json:"maxAttempts"`
	RandomizeQuestions bool              `json:"randomizeQuestions"`
	ShowResults        bool              `json:"showResults"`
	ShowAnswers        bool              `json:"showAnswers"`
	IsActive           bool              `json:"isActive"`
	Questions          []QuestionRequest `json:"questions"`
}

func validateQuestion(req QuestionRequest) error {
	switch req.QuestionType {
	case model.QuestionTrueFalse, model.QuestionMultipleChoice, model.QuestionText:
	default:
		return errors.New("unknown question type")
	}
	if req.Points < 0 {
		return errors.New("question points must be positive")
	}
	if req.QuestionType == model.QuestionText {
		if len(req.Options) > 0 {
			return errors.New("text questions cannot have options")
		}
		return nil
	}

	correct := 0
	for _, o := range req.Options {
		if o.IsCorrect {
			correct++
		}
	}
	if req.QuestionType == model.QuestionTrueFalse {
		if len(req.Options) != 2 || correct != 1 {
			return errors.New("true/false questions require exactly two options with one correct")
		}
	}
	if req.QuestionType == model.QuestionMultipleChoice {
		if len(req.Options) < 2 || correct == 0 {
			return errors.New("multiple choice questions require at least two options and one correct")
		}
	}
	return nil
}

func (s *EvaluationService) CreateEvaluation(req EvaluationRequest) (*model.Evaluation, error) {
	passingScore := 70.0
	if req.PassingScore != nil {
		passingScore = *req.PassingScore
	}
	if passingScore < 0 || passingScore > 100 {
		return nil, errors.New("passing score must be between 0 and 100")
	}
	for _, q := range req.Questions {
		if err := validateQuestion(q); err != nil {
			return nil, err
		}
	}

	evaluation := &model.Evaluation{
		CourseID:           req.CourseID,
		LessonID:           req.LessonID,
		Title:              req.Title,
		Description:        req.Description,
		PassingScore:       passingScore,
		MaxAttempts:        req.MaxAttempts,
		RandomizeQuestions: req.RandomizeQuestions,
		ShowResults:        req.ShowResults,
		ShowAnswers:        req.ShowAnswers,
		IsActive:           req.IsActive,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(evaluation).Error; err != nil {
			return err
		}
		for idx, q := range req.Questions {
			question := buildQuestion(evaluation.ID, idx, q)
			if err := tx.Create(question).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetEvaluation(evaluation.ID)
}

func buildQuestion(evaluationID uint, idx int, req QuestionRequest) *model.Question {
	points := req.Points
	if points == 0 {
		points = 1
	}
	order := req.Order
	if order == 0 {
		order = idx + 1
	}
	question := &model.Question{
		EvaluationID: evaluationID,
		Text:         req.Text,
		QuestionType: req.QuestionType,
		Points:       points,
		Required:     req.Required,
		Order:        order,
	}
	for i, o := range req.Options {
		optOrder := o.Order
		if optOrder == 0 {
			optOrder = i + 1
		}
		question.Options = append(question.Options, model.QuestionOption{
			Text:      o.Text,
			IsCorrect: o.IsCorrect,
			Order:     optOrder,
		})
	}
	return question
}

func (s *EvaluationService) GetEvaluation(id uint) (*model.Evaluation, error) {
	evaluation, err := s.EvaluationRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEvaluationNotFound
		}
		return nil, err
	}
	return evaluation, nil
}

func (s *EvaluationService) ListByCourse(courseID uint, activeOnly bool) ([]model.Evaluation, error) {
	return s.EvaluationRepo.ListByCourse(courseID, activeOnly)
}

func (s *EvaluationService) UpdateEvaluation(id uint, req EvaluationRequest) (*model.Evaluation, error) {
	evaluation, err := s.GetEvaluation(id)
	if err != nil {
		return nil, err
	}

	if req.PassingScore != nil {
		if *req.PassingScore < 0 || *req.PassingScore > 100 {
			return nil, errors.New("passing score must be between 0 and 100")
		}
		evaluation.PassingScore = *req.PassingScore
	}
	evaluation.Title = req.Title
	evaluation.Description = req.Description
	evaluation.LessonID = req.LessonID
	evaluation.MaxAttempts = req.MaxAttempts
	evaluation.RandomizeQuestions = req.RandomizeQuestions
	evaluation.ShowResults = req.ShowResults
	evaluation.ShowAnswers = req.ShowAnswers
	evaluation.IsActive = req.IsActive

	if err := s.EvaluationRepo.Update(evaluation); err != nil {
		return nil, err
	}
	return evaluation, nil
}

// DeleteEvaluation refuses to delete once any attempt exists: attempts are
// historical records and must survive.
func (s *EvaluationService) DeleteEvaluation(id uint) error {
	if _, err := s.GetEvaluation(id); err != nil {
		return err
	}
	count, err := s.AttemptRepo.CountByEvaluation(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return util.ErrEvaluationHasTries
	}
	return s.EvaluationRepo.Delete(id)
}

func (s *EvaluationService) AddQuestion(evaluationID uint, req QuestionRequest) (*model.Question, error) {
	if _, err := s.GetEvaluation(evaluationID); err != nil {
		return nil, err
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}
	question := buildQuestion(evaluationID, 0, req)
	if req.Order > 0 {
		question.Order = req.Order
	}
	if err := s.EvaluationRepo.CreateQuestion(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *EvaluationService) UpdateQuestion(evaluationID, questionID uint, req QuestionRequest) (*model.Question, error) {
	question, err := s.EvaluationRepo.FindQuestionByID(questionID)
	if err != nil {
		return nil, err
	}
	if question.EvaluationID != evaluationID {
		return nil, util.ErrPermissionDenied
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	question.Text = req.Text
	question.QuestionType = req.QuestionType
	if req.Points > 0 {
		question.Points = req.Points
	}
	question.Required = req.Required
	if req.Order > 0 {
		question.Order = req.Order
	}
	question.Options = nil
	if err := s.EvaluationRepo.UpdateQuestion(question); err != nil {
		return nil, err
	}

	options := make([]model.QuestionOption, 0, len(req.Options))
	for i, o := range req.Options {
		optOrder := o.Order
		if optOrder == 0 {
			optOrder = i + 1
		}
		options = append(options, model.QuestionOption{
			Text:      o.Text,
			IsCorrect: o.IsCorrect,
			Order:     optOrder,
		})
	}
	if err := s.EvaluationRepo.ReplaceOptions(questionID, options); err != nil {
		return nil, err
	}
	return s.EvaluationRepo.FindQuestionByID(questionID)
}

func (s *EvaluationService) DeleteQuestion(evaluationID, questionID uint) error {
	question, err := s.EvaluationRepo.FindQuestionByID(questionID)
	if err != nil {
		return err
	}
	if question.EvaluationID != evaluationID {
		return util.ErrPermissionDenied
	}
	return s.EvaluationRepo.DeleteQuestion(questionID)
}
