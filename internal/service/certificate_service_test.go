package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
)

func TestEligibilityRequiresCompletion(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	enrollment := fx.createEnrollment(t, student.ID, course.ID, false)

	eligibility, err := fx.certificates.CheckEligibility(context.Background(), enrollment.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if eligibility.Eligible {
		t.Fatal("incomplete enrollment must not be eligible")
	}
	if !strings.Contains(eligibility.Reason, "not completed") {
		t.Fatalf("reason must mention completion, got %q", eligibility.Reason)
	}
}

// A completed local course with zero active evaluations is eligible without
// any attempt lookups.
func TestEligibilityNoEvaluationsRequired(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	enrollment := fx.createEnrollment(t, student.ID, course.ID, true)

	eligibility, err := fx.certificates.CheckEligibility(context.Background(), enrollment.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !eligibility.Eligible {
		t.Fatalf("expected eligible, got reason %q", eligibility.Reason)
	}
}

func TestEligibilityLocalEvaluations(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	enrollment := fx.createEnrollment(t, student.ID, course.ID, true)
	evaluation := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(5))
	tf := questionByType(t, evaluation, model.QuestionTrueFalse)

	// never attempted: evaluation is pending
	eligibility, err := fx.certificates.CheckEligibility(context.Background(), enrollment.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if eligibility.Eligible {
		t.Fatal("unattempted evaluation must block eligibility")
	}
	if len(eligibility.Pending) != 1 || len(eligibility.Failed) != 0 {
		t.Fatalf("expected 1 pending / 0 failed, got %d/%d", len(eligibility.Pending), len(eligibility.Failed))
	}

	// a failed best attempt moves it from pending to failed
	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, []AnswerSubmission{
		{QuestionID: tf.ID, SelectedOptionIDs: optionIDs(tf, false)},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	eligibility, err = fx.certificates.CheckEligibility(context.Background(), enrollment.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if eligibility.Eligible {
		t.Fatal("failed evaluation must block eligibility")
	}
	if len(eligibility.Pending) != 0 || len(eligibility.Failed) != 1 {
		t.Fatalf("expected 0 pending / 1 failed, got %d/%d", len(eligibility.Pending), len(eligibility.Failed))
	}

	// a later passing attempt becomes the best attempt
	started, err = fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if _, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, []AnswerSubmission{
		{QuestionID: tf.ID, SelectedOptionIDs: optionIDs(tf, true)},
	}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	eligibility, err = fx.certificates.CheckEligibility(context.Background(), enrollment.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !eligibility.Eligible {
		t.Fatalf("expected eligible after passing, got reason %q", eligibility.Reason)
	}
}

func TestEligibilitySieDelegation(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createSieCourse(t, teacher.ID, "SIE-42")
	enrollment := fx.createEnrollment(t, student.ID, course.ID, true)
	enrollment.SieUserID = "usr-7"
	enrollment.SieUserToken = "tok"
	if err := fx.db.Save(enrollment).Error; err != nil {
		t.Fatalf("save enrollment: %v", err)
	}

	fx.sie.eligibility = &SieEligibility{Eligible: false, Reason: "pending provider exams"}
	eligibility, err := fx.certificates.CheckEligibility(context.Background(), enrollment.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if eligibility.Eligible {
		t.Fatal("provider verdict must be propagated")
	}
	if !strings.HasPrefix(eligibility.Reason, "SIE:") {
		t.Fatalf("reason must flag external origin, got %q", eligibility.Reason)
	}
	if fx.sie.calls != 1 {
		t.Fatalf("expected 1 delegate call, got %d", fx.sie.calls)
	}
}

func TestEligibilitySieFailureFallsBackToEligible(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createSieCourse(t, teacher.ID, "SIE-42")
	enrollment := fx.createEnrollment(t, student.ID, course.ID, true)
	enrollment.SieUserID = "usr-7"
	if err := fx.db.Save(enrollment).Error; err != nil {
		t.Fatalf("save enrollment: %v", err)
	}

	fx.sie.err = errors.New("connection timed out")
	eligibility, err := fx.certificates.CheckEligibility(context.Background(), enrollment.ID)
	if err != nil {
		t.Fatalf("delegate failure must never surface, got %v", err)
	}
	if !eligibility.Eligible {
		t.Fatal("delegate failure must fall back to eligible")
	}
	if !strings.Contains(eligibility.Reason, "unavailable") {
		t.Fatalf("fallback reason must note unavailability, got %q", eligibility.Reason)
	}
}

func TestEligibilitySieWithoutCorrelationIDs(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createSieCourse(t, teacher.ID, "SIE-42")
	enrollment := fx.createEnrollment(t, student.ID, course.ID, true)

	eligibility, err := fx.certificates.CheckEligibility(context.Background(), enrollment.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !eligibility.Eligible {
		t.Fatalf("expected eligible on local data alone, got %q", eligibility.Reason)
	}
	if fx.sie.calls != 0 {
		t.Fatal("delegate must not be consulted without correlation ids")
	}
}

func TestGenerateCertificateIsIdempotent(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	enrollment := fx.createEnrollment(t, student.ID, course.ID, true)

	first, err := fx.certificates.GenerateCertificate(context.Background(), enrollment.ID, student.ID, model.Student)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !first.Created {
		t.Fatal("first call must create the certificate")
	}
	if want := CertificateNumber(enrollment.ID); first.Certificate.ID != want {
		t.Fatalf("certificate number %q, want deterministic %q", first.Certificate.ID, want)
	}
	if first.Certificate.StudentName != student.Name || first.Certificate.CourseName != course.Title {
		t.Fatal("snapshots not denormalized at issuance")
	}

	second, err := fx.certificates.GenerateCertificate(context.Background(), enrollment.ID, student.ID, model.Student)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if second.Created {
		t.Fatal("second call must return the existing record")
	}
	if second.Certificate.ID != first.Certificate.ID {
		t.Fatalf("numbers diverged: %q vs %q", first.Certificate.ID, second.Certificate.ID)
	}

	var count int64
	fx.db.Model(&model.Certificate{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one certificate row, got %d", count)
	}
}

func TestGenerateCertificateRequiresProfileName(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "  ", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	enrollment := fx.createEnrollment(t, student.ID, course.ID, true)

	_, err := fx.certificates.GenerateCertificate(context.Background(), enrollment.ID, student.ID, model.Student)
	if !errors.Is(err, util.ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}
}

func TestGenerateCertificateRejectsIneligible(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	enrollment := fx.createEnrollment(t, student.ID, course.ID, false)

	_, err := fx.certificates.GenerateCertificate(context.Background(), enrollment.ID, student.ID, model.Student)
	if !errors.Is(err, util.ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
}

func TestGenerateCertificateOwnershipEnforced(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	intruder := fx.createUser(t, "Caio", "caio@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	enrollment := fx.createEnrollment(t, student.ID, course.ID, true)

	_, err := fx.certificates.GenerateCertificate(context.Background(), enrollment.ID, intruder.ID, model.Student)
	if !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestVerifyCertificate(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	enrollment := fx.createEnrollment(t, student.ID, course.ID, true)

	issued, err := fx.certificates.GenerateCertificate(context.Background(), enrollment.ID, student.ID, model.Student)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	found, err := fx.certificates.VerifyCertificate(context.Background(), issued.Certificate.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if found.StudentName != student.Name {
		t.Fatalf("verified wrong certificate: %+v", found)
	}

	if _, err := fx.certificates.VerifyCertificate(context.Background(), "CERT-NAOEXISTE"); !errors.Is(err, util.ErrCertificateNotFound) {
		t.Fatalf("expected ErrCertificateNotFound, got %v", err)
	}
}

func TestCertificateNumberDeterministic(t *testing.T) {
	id := "a1b2c3d4-e5f6-7890-abcd-ef0123456789"
	want := "CERT-A1B2C3D4"
	if got := CertificateNumber(id); got != want {
		t.Fatalf("CertificateNumber(%q) = %q, want %q", id, got, want)
	}
	if CertificateNumber(id) != CertificateNumber(id) {
		t.Fatal("number must be stable across calls")
	}
}
