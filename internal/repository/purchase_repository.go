package repository

import (
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"gorm.io/gorm"
)

type PurchaseRepository struct {
	DB *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{DB: db}
}

func (r *PurchaseRepository) Create(purchase *model.Purchase) error {
	return r.DB.Create(purchase).Error
}

func (r *PurchaseRepository) Update(purchase *model.Purchase) error {
	return r.DB.Save(purchase).Error
}

func (r *PurchaseRepository) FindByID(id string) (*model.Purchase, error) {
	var p model.Purchase
	if err := r.DB.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepository) FindByPaymentID(paymentID string) (*model.Purchase, error) {
	var p model.Purchase
	if err := r.DB.Where("payment_id = ?", paymentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepository) ListByUser(userID uint) ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}
