package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress      AttemptStatus = "in_progress"
	AttemptSubmitted       AttemptStatus = "submitted"
	AttemptAwaitingGrading AttemptStatus = "awaiting_grading"
	AttemptGraded          AttemptStatus = "graded"
)

// swagger:model Attempt
type Attempt struct {
	BaseModel
	EvaluationID uint          `gorm:"index;not null" json:"evaluationId"`
	UserID       uint          `gorm:"index;not null" json:"userId"`
	Status       AttemptStatus `gorm:"size:20;default:'in_progress'" json:"status"`

	StartedAt        time.Time  `json:"startedAt"`
	SubmittedAt      *time.Time `json:"submittedAt,omitempty"`
	TimeSpentMinutes int        `gorm:"default:0" json:"timeSpentMinutes"`

	AutoScore   float64  `gorm:"default:0" json:"autoScore"`
	ManualScore *float64 `json:"manualScore,omitempty"`
	TotalScore  float64  `gorm:"default:0" json:"totalScore"`
	MaxScore    float64  `gorm:"default:0" json:"maxScore"`
	Percentage  float64  `gorm:"default:0" json:"percentage"`

	// Passed stays nil while essay answers wait for manual grading.
	Passed *bool `json:"passed,omitempty"`

	GraderID *uint      `gorm:"index" json:"graderId,omitempty"`
	GradedAt *time.Time `json:"gradedAt,omitempty"`

	Answers []AttemptAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// AttemptAnswer stores one learner response per question within an attempt.
type AttemptAnswer struct {
	BaseModel
	AttemptID  uint `gorm:"index;uniqueIndex:idx_attempt_question" json:"attemptId"`
	QuestionID uint `gorm:"index;uniqueIndex:idx_attempt_question" json:"questionId"`

	// Payload is the raw answer as JSON: selected option ids or free text.
	Payload string `gorm:"type:text" json:"payload"`

	AutoScore   float64  `gorm:"default:0" json:"autoScore"`
	ManualScore *float64 `json:"manualScore,omitempty"`
	Feedback    string   `gorm:"type:text" json:"feedback"`
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}
