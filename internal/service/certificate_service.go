package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/repository"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/monitoring"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	certificateNumberPrefix = "CERT-"
	verifyCacheTTL          = 10 * time.Minute
)

type CertificateService struct {
	CertificateRepo *repository.CertificateRepository
	EnrollmentRepo  *repository.EnrollmentRepository
	EvaluationRepo  *repository.EvaluationRepository
	AttemptRepo     *repository.AttemptRepository
	UserRepo        *repository.UserRepository
	CourseRepo      *repository.CourseRepository
	Sie             SieClient
	Redis           *redis.Client
	Logger          *zap.Logger
}

func NewCertificateService(
	certificateRepo *repository.CertificateRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	evaluationRepo *repository.EvaluationRepository,
	attemptRepo *repository.AttemptRepository,
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	sie SieClient,
	rdb *redis.Client,
	logger *zap.Logger,
) *CertificateService {
	return &CertificateService{
		CertificateRepo: certificateRepo,
		EnrollmentRepo:  enrollmentRepo,
		EvaluationRepo:  evaluationRepo,
		AttemptRepo:     attemptRepo,
		UserRepo:        userRepo,
		CourseRepo:      courseRepo,
		Sie:             sie,
		Redis:           rdb,
		Logger:          logger,
	}
}

// Eligibility is the outcome of one eligibility check. Pending and Failed
// list evaluation titles so the caller can tell "never attempted" apart from
// "attempted but below threshold".
type Eligibility struct {
	Eligible bool     `json:"eligible"`
	Reason   string   `json:"reason"`
	Pending  []string `json:"pending,omitempty"`
	Failed   []string `json:"failed,omitempty"`
}

// IssuedCertificate pairs the certificate record with whether this call
// created it.
type IssuedCertificate struct {
	Certificate *model.Certificate `json:"certificate"`
	Created     bool               `json:"created"`
}

// CertificateNumber derives the public certificate number from the enrollment
// id. The same enrollment always yields the same number, which is what makes
// issuance safely repeatable.
func CertificateNumber(enrollmentID string) string {
	id := strings.ReplaceAll(enrollmentID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return certificateNumberPrefix + strings.ToUpper(id)
}

// CheckEligibility decides whether a certificate may be issued for the
// enrollment. SIE-backed courses delegate to the external provider when the
// enrollment carries correlation ids; if the provider is unreachable the
// check falls back to eligible, trusting local completion data.
func (s *CertificateService) CheckEligibility(ctx context.Context, enrollmentID string) (*Eligibility, error) {
	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}

	if enrollment.CompletedAt == nil {
		return &Eligibility{Eligible: false, Reason: "course not completed"}, nil
	}

	course, err := s.CourseRepo.FindByID(enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	if course.IsSieCourse {
		if enrollment.SieUserID == "" || course.SieCourseID == "" {
			return &Eligibility{Eligible: true, Reason: "completed, no external data to verify"}, nil
		}
		verdict, err := s.Sie.CheckEligibility(ctx, enrollment.SieUserID, enrollment.SieUserToken, course.SieCourseID)
		if err != nil {
			s.Logger.Warn("sie eligibility check failed, falling back to local completion data",
				zap.String("enrollmentId", enrollmentID), zap.Error(err))
			return &Eligibility{
				Eligible: true,
				Reason:   "external check unavailable, using local completion data",
			}, nil
		}
		return &Eligibility{
			Eligible: verdict.Eligible,
			Reason:   "SIE: " + verdict.Reason,
		}, nil
	}

	return s.localEligibility(enrollment)
}

// localEligibility requires every active evaluation of the course to be
// passed by the learner's best graded attempt.
func (s *CertificateService) localEligibility(enrollment *model.Enrollment) (*Eligibility, error) {
	evaluations, err := s.EvaluationRepo.ListByCourse(enrollment.CourseID, true)
	if err != nil {
		return nil, err
	}
	if len(evaluations) == 0 {
		return &Eligibility{Eligible: true, Reason: "completed, no evaluations required"}, nil
	}

	var pending, failed []string
	for _, evaluation := range evaluations {
		best, err := s.AttemptRepo.BestByUserAndEvaluation(enrollment.UserID, evaluation.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				pending = append(pending, evaluation.Title)
				continue
			}
			return nil, err
		}
		if best.Percentage < evaluation.PassingScore {
			failed = append(failed, evaluation.Title)
		}
	}

	if len(pending) == 0 && len(failed) == 0 {
		return &Eligibility{Eligible: true, Reason: "all evaluations passed"}, nil
	}
	return &Eligibility{
		Eligible: false,
		Reason:   "evaluations pending or failed",
		Pending:  pending,
		Failed:   failed,
	}, nil
}

// GenerateCertificate issues the certificate for an eligible enrollment, or
// returns the existing one unchanged. The learner snapshot written here is
// never refreshed: certificates are historical documents.
func (s *CertificateService) GenerateCertificate(ctx context.Context, enrollmentID string, requesterID uint, requesterRole model.UserRole) (*IssuedCertificate, error) {
	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}
	if requesterRole == model.Student && enrollment.UserID != requesterID {
		return nil, util.ErrPermissionDenied
	}

	if existing, err := s.CertificateRepo.FindByEnrollment(enrollmentID); err == nil {
		return &IssuedCertificate{Certificate: existing, Created: false}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	eligibility, err := s.CheckEligibility(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, fmt.Errorf("%w: %s", util.ErrNotEligible, eligibility.Reason)
	}

	student, err := s.UserRepo.FindByID(enrollment.UserID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(student.Name) == "" {
		return nil, util.ErrProfileIncomplete
	}

	course, err := s.CourseRepo.FindByID(enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	instructorName := ""
	if instructor, err := s.UserRepo.FindByID(course.InstructorID); err == nil {
		instructorName = instructor.Name
	}

	certificate := &model.Certificate{
		UUIDBase:       model.UUIDBase{ID: CertificateNumber(enrollmentID)},
		EnrollmentID:   enrollmentID,
		StudentName:    student.Name,
		DocumentNumber: student.DocumentNumber,
		CourseName:     course.Title,
		InstructorName: instructorName,
		CompletionDate: *enrollment.CompletedAt,
		IssuedAt:       time.Now(),
	}
	if err := s.CertificateRepo.Create(certificate); err != nil {
		// a concurrent issuance won the insert: fetch and return its record
		if existing, fetchErr := s.CertificateRepo.FindByEnrollment(enrollmentID); fetchErr == nil {
			return &IssuedCertificate{Certificate: existing, Created: false}, nil
		}
		return nil, err
	}
	monitoring.CertificatesIssued.Inc()
	return &IssuedCertificate{Certificate: certificate, Created: true}, nil
}

func (s *CertificateService) ListMyCertificates(userID uint) ([]model.Certificate, error) {
	return s.CertificateRepo.ListByUser(userID)
}

// VerifyCertificate serves the public verification endpoint by certificate
// number. Certificates never change after issuance, so a short redis cache is
// safe.
func (s *CertificateService) VerifyCertificate(ctx context.Context, number string) (*model.Certificate, error) {
	key := "certificate:verify:" + number
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var cert model.Certificate
			if json.Unmarshal([]byte(raw), &cert) == nil {
				return &cert, nil
			}
		}
	}

	certificate, err := s.CertificateRepo.FindByID(number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertificateNotFound
		}
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(certificate); err == nil {
			s.Redis.Set(ctx, key, raw, verifyCacheTTL)
		}
	}
	return certificate, nil
}
