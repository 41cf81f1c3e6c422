package service

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/grading"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/repository"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/monitoring"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttemptService struct {
	AttemptRepo    *repository.AttemptRepository
	EvaluationRepo *repository.EvaluationRepository
	EnrollmentRepo *repository.EnrollmentRepository
	UserRepo       *repository.UserRepository
	Notifier       Notifier
	DB             *gorm.DB
	Logger         *zap.Logger
}

func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	evaluationRepo *repository.EvaluationRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	userRepo *repository.UserRepository,
	notifier Notifier,
	db *gorm.DB,
	logger *zap.Logger,
) *AttemptService {
	return &AttemptService{
		AttemptRepo:    attemptRepo,
		EvaluationRepo: evaluationRepo,
		EnrollmentRepo: enrollmentRepo,
		UserRepo:       userRepo,
		Notifier:       notifier,
		DB:             db,
		Logger:         logger,
	}
}

// AttemptQuestionView is a question as shown to the learner while taking an
// evaluation: correctness flags are stripped from the options.
type AttemptQuestionView struct {
	ID           uint                `json:"id"`
	Text         string              `json:"text"`
	QuestionType model.QuestionType  `json:"questionType"`
	Points       float64             `json:"points"`
	Required     bool                `json:"required"`
	Options      []AttemptOptionView `json:"options,omitempty"`
}

type AttemptOptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type StartAttemptResponse struct {
	Attempt   *model.Attempt        `json:"attempt"`
	Questions []AttemptQuestionView `json:"questions"`
}

type AnswerSubmission struct {
	QuestionID        uint   `json:"questionId" binding:"required"`
	SelectedOptionIDs []uint `json:"selectedOptionIds"`
	Text              string `json:"text"`
}

// SubmitResult is the learner-facing outcome of an attempt submission.
// Passed stays nil while essay questions await manual grading, and the
// per-question breakdown is withheld when the evaluation hides results.
type SubmitResult struct {
	AttemptID          uint                     `json:"attemptId"`
	Status             model.AttemptStatus      `json:"status"`
	Passed             *bool                    `json:"passed"`
	TotalScore         float64                  `json:"totalScore"`
	MaxPossibleScore   float64                  `json:"maxPossibleScore"`
	Percentage         float64                  `json:"percentage"`
	TimeSpentMinutes   int                      `json:"timeSpentMinutes"`
	HasUngradedAnswers bool                     `json:"hasUngradedAnswers"`
	Details            []grading.QuestionResult `json:"details,omitempty"`
}

type ManualGradeInput struct {
	QuestionID uint    `json:"questionId" binding:"required"`
	Grade      float64 `json:"grade"`
	Feedback   string  `json:"feedback"`
}

type ManualGradeResult struct {
	AttemptID   uint    `json:"attemptId"`
	ManualScore float64 `json:"manualScore"`
	TotalScore  float64 `json:"totalScore"`
	Percentage  float64 `json:"percentage"`
	IsApproved  bool    `json:"isApproved"`
}

// StartAttempt opens a new attempt for the learner, enforcing enrollment and
// the evaluation's max-attempts limit. An attempt already in progress is
// resumed instead of counting against the limit.
func (s *AttemptService) StartAttempt(userID, evaluationID uint) (*StartAttemptResponse, error) {
	evaluation, err := s.EvaluationRepo.FindByID(evaluationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEvaluationNotFound
		}
		return nil, err
	}
	if !evaluation.IsActive {
		return nil, util.ErrEvaluationNotFound
	}
	if _, err := s.EnrollmentRepo.FindByUserAndCourse(userID, evaluation.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}

	attempts, err := s.AttemptRepo.ListByUserAndEvaluation(userID, evaluationID)
	if err != nil {
		return nil, err
	}
	finished := 0
	for i := range attempts {
		if attempts[i].Status == model.AttemptInProgress {
			return &StartAttemptResponse{
				Attempt:   &attempts[i],
				Questions: questionViews(evaluation),
			}, nil
		}
		finished++
	}
	if evaluation.MaxAttempts > 0 && finished >= evaluation.MaxAttempts {
		return nil, util.ErrAttemptLimitReached
	}

	attempt := &model.Attempt{
		EvaluationID: evaluationID,
		UserID:       userID,
		Status:       model.AttemptInProgress,
		StartedAt:    time.Now(),
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}
	return &StartAttemptResponse{
		Attempt:   attempt,
		Questions: questionViews(evaluation),
	}, nil
}

func questionViews(evaluation *model.Evaluation) []AttemptQuestionView {
	views := make([]AttemptQuestionView, 0, len(evaluation.Questions))
	for _, q := range evaluation.Questions {
		view := AttemptQuestionView{
			ID:           q.ID,
			Text:         q.Text,
			QuestionType: q.QuestionType,
			Points:       q.Points,
			Required:     q.Required,
		}
		for _, o := range q.Options {
			view.Options = append(view.Options, AttemptOptionView{ID: o.ID, Text: o.Text})
		}
		views = append(views, view)
	}
	if evaluation.RandomizeQuestions {
		rand.Shuffle(len(views), func(i, j int) {
			views[i], views[j] = views[j], views[i]
		})
	}
	return views
}

// SubmitAttempt scores the submitted answers against the evaluation's current
// question definitions, persists one answer row per question together with the
// attempt update in a single transaction, and returns the learner-facing
// result. Attempts holding essay questions land in awaiting_grading.
func (s *AttemptService) SubmitAttempt(userID, attemptID uint, submissions []AnswerSubmission) (*SubmitResult, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptSubmitted
	}

	evaluation, err := s.EvaluationRepo.FindByID(attempt.EvaluationID)
	if err != nil {
		return nil, err
	}

	answers := make(map[uint]grading.AnswerPayload, len(submissions))
	for _, sub := range submissions {
		answers[sub.QuestionID] = grading.AnswerPayload{
			SelectedOptionIDs: sub.SelectedOptionIDs,
			Text:              sub.Text,
		}
	}

	summary := grading.Aggregate(evaluation.Questions, answers, evaluation.PassingScore)

	now := time.Now()
	attempt.SubmittedAt = &now
	attempt.TimeSpentMinutes = int(math.Round(now.Sub(attempt.StartedAt).Minutes()))
	attempt.AutoScore = summary.TotalScore
	attempt.TotalScore = summary.TotalScore
	attempt.MaxScore = summary.MaxScore
	attempt.Percentage = summary.Percentage
	attempt.Passed = summary.Passed
	if summary.HasPending {
		attempt.Status = model.AttemptAwaitingGrading
	} else {
		attempt.Status = model.AttemptGraded
		attempt.GradedAt = &now
	}

	rows := make([]model.AttemptAnswer, 0, len(summary.Questions))
	for _, qr := range summary.Questions {
		payload, ok := answers[qr.QuestionID]
		if !ok {
			continue
		}
		rows = append(rows, model.AttemptAnswer{
			AttemptID:  attempt.ID,
			QuestionID: qr.QuestionID,
			Payload:    payload.Marshal(),
			AutoScore:  qr.Score,
		})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return tx.Save(attempt).Error
	})
	if err != nil {
		return nil, err
	}
	monitoring.AttemptsSubmitted.WithLabelValues(string(attempt.Status)).Inc()

	result := &SubmitResult{
		AttemptID:          attempt.ID,
		Status:             attempt.Status,
		Passed:             attempt.Passed,
		TotalScore:         attempt.TotalScore,
		MaxPossibleScore:   attempt.MaxScore,
		Percentage:         attempt.Percentage,
		TimeSpentMinutes:   attempt.TimeSpentMinutes,
		HasUngradedAnswers: summary.HasPending,
	}
	if evaluation.ShowResults {
		result.Details = summary.Questions
		if !evaluation.ShowAnswers {
			for i := range result.Details {
				result.Details[i].IsCorrect = nil
			}
		}
	}
	return result, nil
}

// ManualGrade merges instructor grades for essay questions into an attempt and
// finalizes it. Re-grading an already graded attempt is allowed and replays
// the same computation; attempts never submitted cannot be graded.
func (s *AttemptService) ManualGrade(graderID, attemptID uint, grades []ManualGradeInput) (*ManualGradeResult, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.Status != model.AttemptAwaitingGrading && attempt.Status != model.AttemptGraded {
		return nil, util.ErrAttemptNotPending
	}

	evaluation, err := s.EvaluationRepo.FindByID(attempt.EvaluationID)
	if err != nil {
		return nil, err
	}

	questionsByID := make(map[uint]model.Question, len(evaluation.Questions))
	maxScore := 0.0
	for _, q := range evaluation.Questions {
		questionsByID[q.ID] = q
		pts := q.Points
		if pts < 0 {
			pts = 0
		}
		maxScore += pts
	}

	answered := make(map[uint]bool, len(attempt.Answers))
	for _, ans := range attempt.Answers {
		answered[ans.QuestionID] = true
	}

	gradeByQuestion := make(map[uint]ManualGradeInput, len(grades))
	for _, g := range grades {
		q, ok := questionsByID[g.QuestionID]
		if !ok {
			return nil, util.ErrInvalidGradeTarget
		}
		if q.QuestionType != model.QuestionText {
			return nil, util.ErrInvalidGradeTarget
		}
		if !answered[g.QuestionID] {
			return nil, util.ErrQuestionNotAnswered
		}
		gradeByQuestion[g.QuestionID] = g
	}

	manualScore := 0.0
	updatedAnswers := make([]model.AttemptAnswer, 0, len(attempt.Answers))
	for _, ans := range attempt.Answers {
		g, ok := gradeByQuestion[ans.QuestionID]
		if !ok {
			if ans.ManualScore != nil {
				manualScore += *ans.ManualScore
			}
			continue
		}
		clamped := grading.ClampGrade(g.Grade, questionsByID[ans.QuestionID].Points)
		ans.ManualScore = &clamped
		ans.Feedback = g.Feedback
		manualScore += clamped
		updatedAnswers = append(updatedAnswers, ans)
	}

	now := time.Now()
	attempt.ManualScore = &manualScore
	attempt.TotalScore = attempt.AutoScore + manualScore
	attempt.MaxScore = maxScore
	attempt.Percentage = grading.Percentage(attempt.TotalScore, maxScore)
	approved := attempt.Percentage >= evaluation.PassingScore
	attempt.Passed = &approved
	attempt.Status = model.AttemptGraded
	attempt.GraderID = &graderID
	attempt.GradedAt = &now

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range updatedAnswers {
			if err := tx.Save(&updatedAnswers[i]).Error; err != nil {
				return err
			}
		}
		attempt.Answers = nil
		return tx.Save(attempt).Error
	})
	if err != nil {
		return nil, err
	}

	go s.notifyGradingResult(attempt, evaluation.Title)

	return &ManualGradeResult{
		AttemptID:   attempt.ID,
		ManualScore: manualScore,
		TotalScore:  attempt.TotalScore,
		Percentage:  attempt.Percentage,
		IsApproved:  approved,
	}, nil
}

// notifyGradingResult is fire-and-forget: a failed email never fails grading.
func (s *AttemptService) notifyGradingResult(attempt *model.Attempt, evaluationTitle string) {
	student, err := s.UserRepo.FindByID(attempt.UserID)
	if err != nil {
		s.Logger.Warn("grading notification skipped, student lookup failed",
			zap.Uint("attemptId", attempt.ID), zap.Error(err))
		return
	}
	if err := s.Notifier.SendGradingResult(student.Email, student.Name, attempt, evaluationTitle); err != nil {
		s.Logger.Warn("grading notification failed",
			zap.Uint("attemptId", attempt.ID), zap.Error(err))
	}
}

func (s *AttemptService) ListAwaitingGrading(evaluationID uint) ([]model.Attempt, error) {
	return s.AttemptRepo.ListAwaitingGrading(evaluationID)
}

func (s *AttemptService) ListMyAttempts(userID, evaluationID uint) ([]model.Attempt, error) {
	return s.AttemptRepo.ListByUserAndEvaluation(userID, evaluationID)
}

// GetAttempt returns an attempt with its answers. Students may only read
// their own attempts; teachers and admins may read any.
func (s *AttemptService) GetAttempt(attemptID, requesterID uint, requesterRole model.UserRole) (*model.Attempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if requesterRole == model.Student && attempt.UserID != requesterID {
		return nil, util.ErrPermissionDenied
	}
	return attempt, nil
}
