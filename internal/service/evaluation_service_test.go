package service

import (
	"testing"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
)

func TestCreateEvaluationValidatesPassingScore(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	course := fx.createCourse(t, teacher.ID)

	tests := []struct {
		name    string
		score   float64
		wantErr bool
	}{
		{"zero is allowed", 0, false},
		{"hundred is allowed", 100, false},
		{"negative rejected", -1, true},
		{"above hundred rejected", 101, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.evaluations.CreateEvaluation(EvaluationRequest{
				CourseID:     course.ID,
				Title:        "Prova",
				PassingScore: &tt.score,
				IsActive:     true,
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("score %v: err = %v, wantErr %v", tt.score, err, tt.wantErr)
			}
		})
	}
}

func TestCreateEvaluationDefaultsPassingScore(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	course := fx.createCourse(t, teacher.ID)

	evaluation, err := fx.evaluations.CreateEvaluation(EvaluationRequest{
		CourseID: course.ID,
		Title:    "Prova",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if evaluation.PassingScore != 70 {
		t.Fatalf("default passing score = %v, want 70", evaluation.PassingScore)
	}
}

func TestCreateEvaluationValidatesQuestions(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	course := fx.createCourse(t, teacher.ID)

	tests := []struct {
		name     string
		question QuestionRequest
		wantErr  bool
	}{
		{
			"true/false needs exactly one correct of two",
			QuestionRequest{Text: "q", QuestionType: model.QuestionTrueFalse, Options: []OptionRequest{
				{Text: "a", IsCorrect: true},
				{Text: "b", IsCorrect: true},
			}},
			true,
		},
		{
			"multiple choice needs a correct option",
			QuestionRequest{Text: "q", QuestionType: model.QuestionMultipleChoice, Options: []OptionRequest{
				{Text: "a"},
				{Text: "b"},
			}},
			true,
		},
		{
			"text questions cannot carry options",
			QuestionRequest{Text: "q", QuestionType: model.QuestionText, Options: []OptionRequest{
				{Text: "a"},
			}},
			true,
		},
		{
			"negative points rejected",
			QuestionRequest{Text: "q", QuestionType: model.QuestionText, Points: -2},
			true,
		},
		{
			"unknown type rejected",
			QuestionRequest{Text: "q", QuestionType: "matching"},
			true,
		},
		{
			"well formed essay accepted",
			QuestionRequest{Text: "q", QuestionType: model.QuestionText, Points: 3},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.evaluations.CreateEvaluation(EvaluationRequest{
				CourseID:  course.ID,
				Title:     "Prova",
				IsActive:  true,
				Questions: []QuestionRequest{tt.question},
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuestionPointsDefaultToOne(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	course := fx.createCourse(t, teacher.ID)

	evaluation := fx.createEvaluation(t, course.ID, 0, QuestionRequest{
		Text:         "Disserte",
		QuestionType: model.QuestionText,
	})
	if got := evaluation.Questions[0].Points; got != 1 {
		t.Fatalf("default points = %v, want 1", got)
	}
}

func TestGetEvaluationReturnsQuestionsInAuthoringOrder(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	course := fx.createCourse(t, teacher.ID)

	evaluation := fx.createEvaluation(t, course.ID, 0,
		QuestionRequest{
			Text:         "segunda",
			QuestionType: model.QuestionText,
			Order:        2,
		},
		QuestionRequest{
			Text:         "primeira",
			QuestionType: model.QuestionMultipleChoice,
			Order:        1,
			Options: []OptionRequest{
				{Text: "b", Order: 2},
				{Text: "a", IsCorrect: true, Order: 1},
			},
		},
	)

	loaded, err := fx.evaluations.GetEvaluation(evaluation.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(loaded.Questions))
	}
	if loaded.Questions[0].Text != "primeira" || loaded.Questions[1].Text != "segunda" {
		t.Fatalf("questions out of authoring order: %q, %q", loaded.Questions[0].Text, loaded.Questions[1].Text)
	}
	options := loaded.Questions[0].Options
	if len(options) != 2 || options[0].Text != "a" || options[1].Text != "b" {
		t.Fatalf("options out of authoring order: %+v", options)
	}
}

func TestDeleteEvaluationWithoutAttempts(t *testing.T) {
	fx := newFixture(t)
	teacher := fx.createUser(t, "Ana", "ana@example.com", model.Teacher)
	course := fx.createCourse(t, teacher.ID)
	evaluation := fx.createEvaluation(t, course.ID, 0, trueFalseQuestion(1))

	if err := fx.evaluations.DeleteEvaluation(evaluation.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := fx.evaluations.GetEvaluation(evaluation.ID); err == nil {
		t.Fatal("evaluation still readable after delete")
	}
}
