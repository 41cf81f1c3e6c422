package repository

import (
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Create(certificate *model.Certificate) error {
	return r.DB.Create(certificate).Error
}

func (r *CertificateRepository) FindByID(id string) (*model.Certificate, error) {
	var c model.Certificate
	if err := r.DB.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CertificateRepository) FindByEnrollment(enrollmentID string) (*model.Certificate, error) {
	var c model.Certificate
	if err := r.DB.Where("enrollment_id = ?", enrollmentID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CertificateRepository) ListByUser(userID uint) ([]model.Certificate, error) {
	var certificates []model.Certificate
	err := r.DB.
		Joins("JOIN enrollments ON enrollments.id = certificates.enrollment_id").
		Where("enrollments.user_id = ?", userID).
		Order("certificates.issued_at DESC").
		Find(&certificates).Error
	return certificates, err
}
