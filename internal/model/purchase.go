package model

import "time"

type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "pending"
	PurchaseApproved PurchaseStatus = "approved"
	PurchaseRejected PurchaseStatus = "rejected"
	PurchaseRefunded PurchaseStatus = "refunded"
)

// swagger:model Purchase
type Purchase struct {
	UUIDBase
	UserID   uint           `gorm:"index" json:"userId"`
	CourseID uint           `gorm:"index" json:"courseId"`
	Amount   float64        `json:"amount"`
	Status   PurchaseStatus `gorm:"size:20;default:'pending'" json:"status"`

	// PaymentID is the gateway-side identifier reported by the webhook.
	PaymentID     string     `gorm:"size:100;index" json:"paymentId"`
	PaymentMethod string     `gorm:"size:50" json:"paymentMethod"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

func (Purchase) TableName() string {
	return "purchases"
}
