package model

import "time"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentSuspended EnrollmentStatus = "suspended"
)

// swagger:model Enrollment
type Enrollment struct {
	UUIDBase
	UserID   uint             `gorm:"index:idx_user_course,unique" json:"userId"`
	CourseID uint             `gorm:"index:idx_user_course,unique" json:"courseId"`
	Status   EnrollmentStatus `gorm:"size:20;default:'active'" json:"status"`
	Progress float64          `gorm:"default:0" json:"progress"` // 0-100

	// CompletedAt nil means the course is not finished; certificates are only
	// considered once it is set.
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// SIE correlation identifiers, present only for SIE-backed courses.
	SieUserID    string `gorm:"size:100" json:"sieUserId"`
	SieUserToken string `gorm:"size:255" json:"-"`

	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
