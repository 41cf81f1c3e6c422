package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/repository"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/database"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db           *gorm.DB
	attempts     *AttemptService
	certificates *CertificateService
	evaluations  *EvaluationService
	notifier     *fakeNotifier
	sie          *fakeSieClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)

	notifier := &fakeNotifier{sent: make(chan string, 4)}
	sie := &fakeSieClient{}
	log := zap.NewNop()

	return &fixture{
		db:       db,
		notifier: notifier,
		sie:      sie,
		attempts: NewAttemptService(attemptRepo, evaluationRepo, enrollmentRepo, userRepo, notifier, db, log),
		certificates: NewCertificateService(
			certificateRepo, enrollmentRepo, evaluationRepo, attemptRepo,
			userRepo, courseRepo, sie, nil, log,
		),
		evaluations: NewEvaluationService(evaluationRepo, attemptRepo, db),
	}
}

type fakeNotifier struct {
	sent chan string
}

func (f *fakeNotifier) SendGradingResult(toEmail, toName string, attempt *model.Attempt, evaluationTitle string) error {
	f.sent <- toEmail
	return nil
}

func (f *fakeNotifier) waitForSend(t *testing.T) string {
	t.Helper()
	select {
	case email := <-f.sent:
		return email
	case <-time.After(2 * time.Second):
		t.Fatal("expected a grading notification, none sent")
		return ""
	}
}

type fakeSieClient struct {
	eligibility *SieEligibility
	err         error
	calls       int
}

func (f *fakeSieClient) CheckEligibility(ctx context.Context, sieUserID, sieUserToken, sieCourseID string) (*SieEligibility, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.eligibility == nil {
		return nil, errors.New("fakeSieClient unconfigured")
	}
	return f.eligibility, nil
}

func (fx *fixture) createUser(t *testing.T, name, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: email, Password: "x", Role: role, DocumentNumber: "12345678901"}
	if err := fx.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (fx *fixture) createCourse(t *testing.T, instructorID uint) *model.Course {
	t.Helper()
	course := &model.Course{Title: "Introdução a Go", InstructorID: instructorID, IsPublished: true}
	if err := fx.db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

func (fx *fixture) createSieCourse(t *testing.T, instructorID uint, sieCourseID string) *model.Course {
	t.Helper()
	course := &model.Course{
		Title:        "Curso SIE",
		InstructorID: instructorID,
		IsPublished:  true,
		IsSieCourse:  true,
		SieCourseID:  sieCourseID,
	}
	if err := fx.db.Create(course).Error; err != nil {
		t.Fatalf("create sie course: %v", err)
	}
	return course
}

func (fx *fixture) createEnrollment(t *testing.T, userID, courseID uint, completed bool) *model.Enrollment {
	t.Helper()
	enrollment := &model.Enrollment{UserID: userID, CourseID: courseID, Status: model.EnrollmentActive}
	if completed {
		now := time.Now()
		enrollment.CompletedAt = &now
		enrollment.Status = model.EnrollmentCompleted
		enrollment.Progress = 100
	}
	if err := fx.db.Create(enrollment).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}
	return enrollment
}

// createEvaluation builds an evaluation through the service so that option
// rows get real ids to select against.
func (fx *fixture) createEvaluation(t *testing.T, courseID uint, maxAttempts int, questions ...QuestionRequest) *model.Evaluation {
	t.Helper()
	evaluation, err := fx.evaluations.CreateEvaluation(EvaluationRequest{
		CourseID:    courseID,
		Title:       "Prova final",
		MaxAttempts: maxAttempts,
		ShowResults: true,
		ShowAnswers: true,
		IsActive:    true,
		Questions:   questions,
	})
	if err != nil {
		t.Fatalf("create evaluation: %v", err)
	}
	return evaluation
}

func trueFalseQuestion(points float64) QuestionRequest {
	return QuestionRequest{
		Text:         "Go é compilado?",
		QuestionType: model.QuestionTrueFalse,
		Points:       points,
		Required:     true,
		Options: []OptionRequest{
			{Text: "Verdadeiro", IsCorrect: true},
			{Text: "Falso"},
		},
	}
}

func multipleChoiceQuestion(points float64, correct, wrong int) QuestionRequest {
	req := QuestionRequest{
		Text:         "Selecione as corretas",
		QuestionType: model.QuestionMultipleChoice,
		Points:       points,
		Required:     true,
	}
	for i := 0; i < correct; i++ {
		req.Options = append(req.Options, OptionRequest{Text: "certa", IsCorrect: true})
	}
	for i := 0; i < wrong; i++ {
		req.Options = append(req.Options, OptionRequest{Text: "errada"})
	}
	return req
}

func essayQuestion(points float64) QuestionRequest {
	return QuestionRequest{
		Text:         "Disserte sobre goroutines",
		QuestionType: model.QuestionText,
		Points:       points,
		Required:     true,
	}
}

// optionIDs returns the ids of a question's options filtered by correctness.
func optionIDs(q model.Question, correct bool) []uint {
	var ids []uint
	for _, o := range q.Options {
		if o.IsCorrect == correct {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func questionByType(t *testing.T, evaluation *model.Evaluation, qt model.QuestionType) model.Question {
	t.Helper()
	for _, q := range evaluation.Questions {
		if q.QuestionType == qt {
			return q
		}
	}
	t.Fatalf("evaluation has no %s question", qt)
	return model.Question{}
}
