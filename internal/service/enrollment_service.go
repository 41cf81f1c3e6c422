package service

import (
	"errors"
	"time"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/repository"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"gorm.io/gorm"
)

type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	PurchaseRepo   *repository.PurchaseRepository
}

func NewEnrollmentService(enrollmentRepo *repository.EnrollmentRepository, courseRepo *repository.CourseRepository, purchaseRepo *repository.PurchaseRepository) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		PurchaseRepo:   purchaseRepo,
	}
}

type EnrollRequest struct {
	CourseID     uint   `json:"courseId" binding:"required"`
	SieUserID    string `json:"sieUserId"`
	SieUserToken string `json:"sieUserToken"`
}

// Enroll registers a learner in a course. Paid courses require an approved
// purchase; enrolling twice returns the existing enrollment.
func (s *EnrollmentService) Enroll(userID uint, req EnrollRequest) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if existing, err := s.EnrollmentRepo.FindByUserAndCourse(userID, req.CourseID); err == nil {
		return existing, nil
	}

	if course.Price > 0 {
		if !s.hasApprovedPurchase(userID, req.CourseID) {
			return nil, util.ErrPermissionDenied
		}
	}

	enrollment := &model.Enrollment{
		UserID:       userID,
		CourseID:     req.CourseID,
		Status:       model.EnrollmentActive,
		SieUserID:    req.SieUserID,
		SieUserToken: req.SieUserToken,
	}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) GetEnrollment(id string) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) ListMyEnrollments(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID)
}

// UpdateProgress advances the learner's progress; reaching 100 marks the
// enrollment completed and stamps the completion time.
func (s *EnrollmentService) UpdateProgress(userID uint, enrollmentID string, progress float64) (*model.Enrollment, error) {
	enrollment, err := s.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	// progress never moves backwards
	if progress > enrollment.Progress {
		enrollment.Progress = progress
	}

	if enrollment.Progress >= 100 && enrollment.CompletedAt == nil {
		now := time.Now()
		enrollment.Status = model.EnrollmentCompleted
		enrollment.CompletedAt = &now
	}

	if err := s.EnrollmentRepo.Update(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) hasApprovedPurchase(userID, courseID uint) bool {
	purchases, err := s.PurchaseRepo.ListByUser(userID)
	if err != nil {
		return false
	}
	for _, p := range purchases {
		if p.CourseID == courseID && p.Status == model.PurchaseApproved {
			return true
		}
	}
	return false
}
