package model

// swagger:model Category
type Category struct {
	BaseModel
	Name    string `gorm:"size:100;not null" json:"name"`
	Slug    string `gorm:"size:100;uniqueIndex" json:"slug"`
	Enabled bool   `gorm:"default:true" json:"enabled"`
}

func (Category) TableName() string {
	return "categories"
}

// swagger:model Course
type Course struct {
	BaseModel
	Title        string  `gorm:"size:255;not null" json:"title"`
	Description  string  `gorm:"type:text" json:"description"`
	InstructorID uint    `gorm:"index" json:"instructorId"`
	CategoryID   *uint   `gorm:"index" json:"categoryId,omitempty"`
	Price        float64 `gorm:"default:0" json:"price"`
	DurationHrs  int     `gorm:"default:0" json:"durationHours"`
	ThumbnailURL string  `gorm:"size:512" json:"thumbnailUrl"`
	IsPublished  bool    `gorm:"default:false" json:"isPublished"`

	// SIE integration: when set, completion/eligibility for this course is
	// authoritative in the external SIE system.
	IsSieCourse bool   `gorm:"default:false" json:"isSieCourse"`
	SieCourseID string `gorm:"size:100" json:"sieCourseId"`

	Lessons []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	VideoURL    string `gorm:"size:512" json:"videoUrl"`
	Order       int    `gorm:"column:sort_order;default:0" json:"order"`
}

func (Lesson) TableName() string {
	return "lessons"
}
