package grading

import (
	"encoding/json"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
)

// AnswerPayload is the raw learner response to a single question: selected
// option ids for objective questions, free text for essay questions.
type AnswerPayload struct {
	SelectedOptionIDs []uint `json:"selectedOptionIds,omitempty"`
	Text              string `json:"text,omitempty"`
}

func (p AnswerPayload) Marshal() string {
	b, _ := json.Marshal(p)
	return string(b)
}

// Result is the outcome of scoring one answered question. IsCorrect is nil
// when the question requires manual grading (essay questions).
type Result struct {
	Score     float64 `json:"score"`
	MaxPoints float64 `json:"maxPoints"`
	IsCorrect *bool   `json:"isCorrect"`
}

// ScoreQuestion scores one answer against the question's option set.
// It is a pure function and never fails: malformed or missing selections
// score zero.
func ScoreQuestion(q model.Question, ans AnswerPayload) Result {
	pts := q.Points
	if pts < 0 {
		pts = 0
	}

	switch q.QuestionType {
	case model.QuestionText:
		return Result{Score: 0, MaxPoints: pts, IsCorrect: nil}
	case model.QuestionTrueFalse:
		return scoreTrueFalse(q, ans, pts)
	case model.QuestionMultipleChoice:
		return scoreMultipleChoice(q, ans, pts)
	default:
		// unknown types are routed to manual grading
		return Result{Score: 0, MaxPoints: pts, IsCorrect: nil}
	}
}

func scoreTrueFalse(q model.Question, ans AnswerPayload, pts float64) Result {
	selected := dedupe(ans.SelectedOptionIDs)
	if len(selected) != 1 {
		return Result{Score: 0, MaxPoints: pts, IsCorrect: boolPtr(false)}
	}
	correct := correctSet(q.Options)
	if correct[selected[0]] {
		return Result{Score: pts, MaxPoints: pts, IsCorrect: boolPtr(true)}
	}
	return Result{Score: 0, MaxPoints: pts, IsCorrect: boolPtr(false)}
}

func scoreMultipleChoice(q model.Question, ans AnswerPayload, pts float64) Result {
	correct := correctSet(q.Options)
	selected := dedupe(ans.SelectedOptionIDs)

	if len(selected) == 0 || len(correct) == 0 {
		return Result{Score: 0, MaxPoints: pts, IsCorrect: boolPtr(false)}
	}

	hits := 0
	for _, id := range selected {
		if !correct[id] {
			// a single wrong pick forfeits all partial credit
			return Result{Score: 0, MaxPoints: pts, IsCorrect: boolPtr(false)}
		}
		hits++
	}

	ratio := float64(hits) / float64(len(correct))
	return Result{
		Score:     pts * ratio,
		MaxPoints: pts,
		IsCorrect: boolPtr(ratio == 1),
	}
}

// QuestionResult pairs a per-question score with the question it belongs to,
// for the attempt-level breakdown.
type QuestionResult struct {
	QuestionID uint    `json:"questionId"`
	Score      float64 `json:"score"`
	MaxPoints  float64 `json:"maxPoints"`
	IsCorrect  *bool   `json:"isCorrect"`
	Answered   bool    `json:"answered"`
}

// Summary is the aggregate of scoring every question of an evaluation.
type Summary struct {
	TotalScore float64          `json:"totalScore"`
	MaxScore   float64          `json:"maxScore"`
	Percentage float64          `json:"percentage"`
	HasPending bool             `json:"hasPending"`
	Passed     *bool            `json:"passed"`
	Questions  []QuestionResult `json:"questions"`
}

// Aggregate scores every question of an evaluation against the submitted
// answers. Unanswered questions score zero by the same rules as empty
// selections. An evaluation with no questions yields 0% and is not passed.
func Aggregate(questions []model.Question, answers map[uint]AnswerPayload, passingScore float64) Summary {
	sum := Summary{Questions: make([]QuestionResult, 0, len(questions))}

	for _, q := range questions {
		ans, answered := answers[q.ID]
		res := ScoreQuestion(q, ans)

		sum.TotalScore += res.Score
		sum.MaxScore += res.MaxPoints
		if res.IsCorrect == nil {
			sum.HasPending = true
		}
		sum.Questions = append(sum.Questions, QuestionResult{
			QuestionID: q.ID,
			Score:      res.Score,
			MaxPoints:  res.MaxPoints,
			IsCorrect:  res.IsCorrect,
			Answered:   answered,
		})
	}

	sum.Percentage = Percentage(sum.TotalScore, sum.MaxScore)
	if !sum.HasPending {
		sum.Passed = boolPtr(sum.Percentage >= passingScore)
	}
	return sum
}

// Percentage guards the zero-point evaluation: 0 possible points means 0%.
func Percentage(total, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return total / max * 100
}

// ClampGrade bounds a manually supplied grade into [0, points].
func ClampGrade(grade, points float64) float64 {
	if points < 0 {
		points = 0
	}
	if grade < 0 {
		return 0
	}
	if grade > points {
		return points
	}
	return grade
}

func correctSet(options []model.QuestionOption) map[uint]bool {
	set := make(map[uint]bool, len(options))
	for _, o := range options {
		if o.IsCorrect {
			set[o.ID] = true
		}
	}
	return set
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func boolPtr(v bool) *bool {
	return &v
}
