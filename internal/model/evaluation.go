package model

type QuestionType string

const (
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionText           QuestionType = "text"
)

// swagger:model Evaluation
type Evaluation struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	LessonID    *uint  `gorm:"index" json:"lessonId,omitempty"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	// PassingScore is a percentage in [0,100].
	PassingScore       float64 `gorm:"default:70" json:"passingScore"`
	MaxAttempts        int     `gorm:"default:0" json:"maxAttempts"` // 0 = unlimited
	RandomizeQuestions bool    `gorm:"default:false" json:"randomizeQuestions"`
	ShowResults        bool    `gorm:"default:true" json:"showResults"`
	ShowAnswers        bool    `gorm:"default:false" json:"showAnswers"`
	IsActive           bool    `gorm:"default:true" json:"isActive"`

	Questions []Question `gorm:"foreignKey:EvaluationID" json:"questions,omitempty"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}

// swagger:model Question
type Question struct {
	BaseModel
	EvaluationID uint         `gorm:"index;not null" json:"evaluationId"`
	Text         string       `gorm:"type:text;not null" json:"text"`
	QuestionType QuestionType `gorm:"size:30;not null" json:"questionType"`
	Points       float64      `gorm:"default:1" json:"points"`
	Required     bool         `gorm:"default:true" json:"required"`
	Order        int          `gorm:"column:sort_order;default:0" json:"order"`

	Options []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model QuestionOption
type QuestionOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Order      int    `gorm:"column:sort_order;default:0" json:"order"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
