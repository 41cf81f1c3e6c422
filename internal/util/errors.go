package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrCourseNotFound      = errors.New("course not found")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrEvaluationNotFound  = errors.New("evaluation not found")
	ErrEvaluationHasTries  = errors.New("evaluation has attempts and cannot be deleted")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrAttemptSubmitted    = errors.New("attempt already submitted")
	ErrAttemptLimitReached = errors.New("attempt limit reached")
	ErrAttemptNotPending   = errors.New("attempt is not awaiting grading")
	ErrInvalidGradeTarget  = errors.New("question cannot be manually graded")
	ErrQuestionNotAnswered = errors.New("question was not answered")
	ErrCourseNotCompleted  = errors.New("course not completed")
	ErrNotEligible         = errors.New("enrollment not eligible for certificate")
	ErrProfileIncomplete   = errors.New("profile incomplete: display name is required before issuing a certificate")
	ErrPurchaseNotFound    = errors.New("purchase not found")
	ErrCertificateNotFound = errors.New("certificate not found")
)
