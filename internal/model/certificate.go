package model

import "time"

// Certificate is a historical document: the learner/course/instructor fields
// are snapshots taken at issuance and are never refreshed afterwards.
// The ID doubles as the public certificate number and is derived
// deterministically from the enrollment id.
//
// swagger:model Certificate
type Certificate struct {
	UUIDBase
	EnrollmentID string `gorm:"type:varchar(36);uniqueIndex" json:"enrollmentId"`

	StudentName    string    `gorm:"size:100;not null" json:"studentName"`
	DocumentNumber string    `gorm:"size:20" json:"documentNumber"`
	CourseName     string    `gorm:"size:255;not null" json:"courseName"`
	InstructorName string    `gorm:"size:100" json:"instructorName"`
	CompletionDate time.Time `json:"completionDate"`
	IssuedAt       time.Time `json:"issuedAt"`
	PdfURL         string    `gorm:"size:512" json:"pdfUrl"`
}

func (Certificate) TableName() string {
	return "certificates"
}
