package service

import (
	"errors"
	"testing"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
)

func TestStartAttemptRequiresEnrollment(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	evaluation := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(1))

	if _, err := fx.attempts.StartAttempt(student.ID, evaluation.ID); !errors.Is(err, util.ErrEnrollmentNotFound) {
		t.Fatalf("expected ErrEnrollmentNotFound, got %v", err)
	}
}

func TestStartAttemptResumesInProgress(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 1, trueFalseQuestion(1))

	first, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if first.Attempt.ID != second.Attempt.ID {
		t.Fatalf("expected the in-progress attempt %d to be resumed, got %d", first.Attempt.ID, second.Attempt.ID)
	}
}

func TestStartAttemptEnforcesMaxAttempts(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 1, trueFalseQuestion(1))

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := fx.attempts.StartAttempt(student.ID, evaluation.ID); !errors.Is(err, util.ErrAttemptLimitReached) {
		t.Fatalf("expected ErrAttemptLimitReached, got %v", err)
	}
}

func TestStartAttemptHidesCorrectnessFlags(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, multipleChoiceQuestion(2, 2, 2))

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(started.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(started.Questions))
	}
	if got := len(started.Questions[0].Options); got != 4 {
		t.Fatalf("expected 4 options, got %d", got)
	}
}

func TestSubmitAttemptObjectiveOnlyGradesImmediately(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(5), multipleChoiceQuestion(5, 2, 1))

	tf := questionByType(t, evaluation, model.QuestionTrueFalse)
	mc := questionByType(t, evaluation, model.QuestionMultipleChoice)

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	result, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, []AnswerSubmission{
		{QuestionID: tf.ID, SelectedOptionIDs: optionIDs(tf, true)},
		{QuestionID: mc.ID, SelectedOptionIDs: optionIDs(mc, true)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if result.Status != model.AttemptGraded {
		t.Fatalf("expected graded, got %s", result.Status)
	}
	if result.TotalScore != 10 || result.MaxPossibleScore != 10 || result.Percentage != 100 {
		t.Fatalf("unexpected totals: %+v", result)
	}
	if result.Passed == nil || !*result.Passed {
		t.Fatalf("expected passed=true, got %v", result.Passed)
	}
	if result.HasUngradedAnswers {
		t.Fatal("no essay questions, nothing should be pending")
	}
	if len(result.Details) != 2 {
		t.Fatalf("expected per-question breakdown, got %d entries", len(result.Details))
	}
}

// One multiple-choice question worth 2 points with two correct options;
// selecting one of them earns half credit, which fails a 70% threshold.
func TestSubmitAttemptPartialCredit(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, multipleChoiceQuestion(2, 2, 1))
	mc := questionByType(t, evaluation, model.QuestionMultipleChoice)

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	result, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, []AnswerSubmission{
		{QuestionID: mc.ID, SelectedOptionIDs: optionIDs(mc, true)[:1]},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if result.TotalScore != 1 {
		t.Fatalf("expected score 1.0, got %v", result.TotalScore)
	}
	if result.Percentage != 50 {
		t.Fatalf("expected 50%%, got %v", result.Percentage)
	}
	if result.Passed == nil || *result.Passed {
		t.Fatalf("expected passed=false at threshold 70, got %v", result.Passed)
	}
}

func TestSubmitAttemptWithEssayAwaitsGrading(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(5), essayQuestion(5))

	tf := questionByType(t, evaluation, model.QuestionTrueFalse)
	essay := questionByType(t, evaluation, model.QuestionText)

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	result, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, []AnswerSubmission{
		{QuestionID: tf.ID, SelectedOptionIDs: optionIDs(tf, true)},
		{QuestionID: essay.ID, Text: "goroutines são leves"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if result.Status != model.AttemptAwaitingGrading {
		t.Fatalf("expected awaiting_grading, got %s", result.Status)
	}
	if result.TotalScore != 5 {
		t.Fatalf("only the true/false score counts before grading, got %v", result.TotalScore)
	}
	if result.Passed != nil {
		t.Fatalf("passed must stay undetermined, got %v", *result.Passed)
	}
	if !result.HasUngradedAnswers {
		t.Fatal("expected pending essay answers")
	}
}

func TestSubmitAttemptTwiceRejected(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(1))

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, nil); !errors.Is(err, util.ErrAttemptSubmitted) {
		t.Fatalf("expected ErrAttemptSubmitted, got %v", err)
	}
}

func TestSubmitAttemptOwnershipEnforced(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	intruder := fx.createUser(t, "Caio", "caio@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(1))

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := fx.attempts.SubmitAttempt(intruder.ID, started.Attempt.ID, nil); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestManualGradeFinalizesAttempt(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(5), essayQuestion(5))

	tf := questionByType(t, evaluation, model.QuestionTrueFalse)
	essay := questionByType(t, evaluation, model.QuestionText)

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, []AnswerSubmission{
		{QuestionID: tf.ID, SelectedOptionIDs: optionIDs(tf, true)},
		{QuestionID: essay.ID, Text: "ensaio"},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	result, err := fx.attempts.ManualGrade(teacher.ID, started.Attempt.ID, []ManualGradeInput{
		{QuestionID: essay.ID, Grade: 4, Feedback: "bom argumento"},
	})
	if err != nil {
		t.Fatalf("manual grade: %v", err)
	}

	if result.ManualScore != 4 {
		t.Fatalf("expected manual score 4, got %v", result.ManualScore)
	}
	if result.TotalScore != 9 || result.Percentage != 90 {
		t.Fatalf("expected 9/90%%, got %v/%v", result.TotalScore, result.Percentage)
	}
	if !result.IsApproved {
		t.Fatal("expected approval at 90% against threshold 70")
	}

	graded, err := fx.attempts.GetAttempt(started.Attempt.ID, teacher.ID, model.Teacher)
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if graded.Status != model.AttemptGraded {
		t.Fatalf("expected terminal graded state, got %s", graded.Status)
	}
	if graded.GraderID == nil || *graded.GraderID != teacher.ID {
		t.Fatal("grader identity not stamped")
	}
	if graded.GradedAt == nil {
		t.Fatal("grading timestamp not stamped")
	}

	if email := fx.notifier.waitForSend(t); email != student.Email {
		t.Fatalf("notification sent to %q, want %q", email, student.Email)
	}
}

func TestManualGradeClampsOutOfRangeGrades(t *testing.T) {
	tests := []struct {
		name       string
		grade      float64
		wantManual float64
	}{
		{"negative clamps to zero", -5, 0},
		{"above points clamps to points", 50, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
			student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
			course := fx.createCourse(t, teacher.ID)
			fx.createEnrollment(t, student.ID, course.ID, false)
			evaluation := fx.createEvaluation(t, course.ID, 0, essayQuestion(5))
			essay := questionByType(t, evaluation, model.QuestionText)

			started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			if _, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, []AnswerSubmission{
				{QuestionID: essay.ID, Text: "ensaio"},
			}); err != nil {
				t.Fatalf("submit: %v", err)
			}

			result, err := fx.attempts.ManualGrade(teacher.ID, started.Attempt.ID, []ManualGradeInput{
				{QuestionID: essay.ID, Grade: tt.grade},
			})
			if err != nil {
				t.Fatalf("manual grade: %v", err)
			}
			if result.ManualScore != tt.wantManual {
				t.Fatalf("manual score = %v, want %v", result.ManualScore, tt.wantManual)
			}
		})
	}
}

func TestManualGradeRejectsInProgressAttempt(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, essayQuestion(5))

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := fx.attempts.ManualGrade(teacher.ID, started.Attempt.ID, nil); !errors.Is(err, util.ErrAttemptNotPending) {
		t.Fatalf("expected ErrAttemptNotPending, got %v", err)
	}
}

func TestManualGradeRejectsNonEssayQuestion(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(5), essayQuestion(5))
	tf := questionByType(t, evaluation, model.QuestionTrueFalse)

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := fx.attempts.ManualGrade(teacher.ID, started.Attempt.ID, []ManualGradeInput{
		{QuestionID: tf.ID, Grade: 3},
	}); !errors.Is(err, util.ErrInvalidGradeTarget) {
		t.Fatalf("expected ErrInvalidGradeTarget, got %v", err)
	}
}

// A grade for an essay the learner skipped is instructor input with nowhere to
// land; it must be rejected rather than silently dropped.
func TestManualGradeRejectsUnansweredEssay(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(5), essayQuestion(5))
	tf := questionByType(t, evaluation, model.QuestionTrueFalse)
	essay := questionByType(t, evaluation, model.QuestionText)

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, []AnswerSubmission{
		{QuestionID: tf.ID, SelectedOptionIDs: optionIDs(tf, true)},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := fx.attempts.ManualGrade(teacher.ID, started.Attempt.ID, []ManualGradeInput{
		{QuestionID: essay.ID, Grade: 4},
	}); !errors.Is(err, util.ErrQuestionNotAnswered) {
		t.Fatalf("expected ErrQuestionNotAnswered, got %v", err)
	}

	attempt, err := fx.attempts.GetAttempt(started.Attempt.ID, teacher.ID, model.Teacher)
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if attempt.Status != model.AttemptAwaitingGrading {
		t.Fatalf("rejected grade must not finalize the attempt, status = %s", attempt.Status)
	}
	if attempt.ManualScore != nil {
		t.Fatalf("rejected grade must not record a manual score, got %v", *attempt.ManualScore)
	}
}

// Re-grading with the same inputs must land on the same final numbers.
func TestManualGradeIsIdempotentOnRegrade(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, essayQuestion(5))
	essay := questionByType(t, evaluation, model.QuestionText)

	started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, []AnswerSubmission{
		{QuestionID: essay.ID, Text: "ensaio"},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	grades := []ManualGradeInput{{QuestionID: essay.ID, Grade: 4}}
	first, err := fx.attempts.ManualGrade(teacher.ID, started.Attempt.ID, grades)
	if err != nil {
		t.Fatalf("first grade: %v", err)
	}
	second, err := fx.attempts.ManualGrade(teacher.ID, started.Attempt.ID, grades)
	if err != nil {
		t.Fatalf("regrade: %v", err)
	}
	if first.TotalScore != second.TotalScore || first.Percentage != second.Percentage {
		t.Fatalf("regrade diverged: %+v vs %+v", first, second)
	}
}

func TestListAwaitingGradingFiltersByEvaluation(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	withEssay := fx.createEvaluation(t, course.ID, 0, essayQuestion(5))
	objective := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(5))

	essay := questionByType(t, withEssay, model.QuestionText)
	for _, evaluation := range []*model.Evaluation{withEssay, objective} {
		started, err := fx.attempts.StartAttempt(student.ID, evaluation.ID)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		var answers []AnswerSubmission
		if evaluation.ID == withEssay.ID {
			answers = []AnswerSubmission{{QuestionID: essay.ID, Text: "ensaio"}}
		}
		if _, err := fx.attempts.SubmitAttempt(student.ID, started.Attempt.ID, answers); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	queue, err := fx.attempts.ListAwaitingGrading(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("expected exactly the essay attempt in the queue, got %d", len(queue))
	}
	if queue[0].EvaluationID != withEssay.ID {
		t.Fatalf("wrong attempt in queue: evaluation %d", queue[0].EvaluationID)
	}
}

func TestDeleteEvaluationBlockedWhileAttemptsExist(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	student := fx.createUser(t, "Bia", "bia@example.com", model.Student)
	course := fx.createCourse(t, teacher.ID)
	fx.createEnrollment(t, student.ID, course.ID, false)
	evaluation := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(1))

	if _, err := fx.attempts.StartAttempt(student.ID, evaluation.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := fx.evaluations.DeleteEvaluation(evaluation.ID); !errors.Is(err, util.ErrEvaluationHasTries) {
		t.Fatalf("expected ErrEvaluationHasTries, got %v", err)
	}
}
