package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/config"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/repository"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentGateway fetches the authoritative status of a payment from the
// gateway. Webhook bodies are not trusted beyond the payment id they carry.
type PaymentGateway interface {
	FetchStatus(ctx context.Context, paymentID string) (string, error)
}

type restyPaymentGateway struct {
	client *resty.Client
}

func NewPaymentGateway(cfg *config.PaymentConfig) PaymentGateway {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10 * time.Second).
		SetAuthToken(cfg.AccessToken)
	return &restyPaymentGateway{client: client}
}

func (g *restyPaymentGateway) FetchStatus(ctx context.Context, paymentID string) (string, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		Get("/v1/payments/" + paymentID)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("payment gateway returned status %d", resp.StatusCode())
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("payment gateway response malformed: %w", err)
	}
	return body.Status, nil
}

type PaymentService struct {
	PurchaseRepo   *repository.PurchaseRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Gateway        PaymentGateway
	Logger         *zap.Logger
}

func NewPaymentService(
	purchaseRepo *repository.PurchaseRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	gateway PaymentGateway,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		PurchaseRepo:   purchaseRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		Gateway:        gateway,
		Logger:         logger,
	}
}

// CreatePurchase opens a pending purchase for a paid course, priced from the
// current course record.
func (s *PaymentService) CreatePurchase(userID, courseID uint, paymentMethod string) (*model.Purchase, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	purchase := &model.Purchase{
		UserID:        userID,
		CourseID:      courseID,
		Amount:        course.Price,
		Status:        model.PurchasePending,
		PaymentMethod: paymentMethod,
	}
	if err := s.PurchaseRepo.Create(purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *PaymentService) ListMyPurchases(userID uint) ([]model.Purchase, error) {
	return s.PurchaseRepo.ListByUser(userID)
}

// ProcessWebhook handles a gateway notification for a payment id. The status
// is fetched back from the gateway rather than read from the webhook body.
// An approved payment reactivates a suspended enrollment for the same course
// if one exists.
func (s *PaymentService) ProcessWebhook(ctx context.Context, purchaseID, paymentID string) (*model.Purchase, error) {
	purchase, err := s.PurchaseRepo.FindByID(purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			purchase, err = s.PurchaseRepo.FindByPaymentID(paymentID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrPurchaseNotFound
			}
		}
		if err != nil {
			return nil, err
		}
	}

	status, err := s.Gateway.FetchStatus(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	purchase.PaymentID = paymentID
	switch status {
	case "approved", "paid":
		purchase.Status = model.PurchaseApproved
		now := time.Now()
		purchase.PaidAt = &now
	case "rejected", "cancelled":
		purchase.Status = model.PurchaseRejected
	case "refunded", "charged_back":
		purchase.Status = model.PurchaseRefunded
	default:
		purchase.Status = model.PurchasePending
	}

	if err := s.PurchaseRepo.Update(purchase); err != nil {
		return nil, err
	}

	if purchase.Status == model.PurchaseApproved {
		s.activateEnrollment(purchase)
	}
	return purchase, nil
}

func (s *PaymentService) activateEnrollment(purchase *model.Purchase) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(purchase.UserID, purchase.CourseID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.Logger.Warn("enrollment lookup failed after payment approval",
				zap.String("purchaseId", purchase.ID), zap.Error(err))
		}
		return
	}
	if enrollment.Status != model.EnrollmentSuspended {
		return
	}
	enrollment.Status = model.EnrollmentActive
	if err := s.EnrollmentRepo.Update(enrollment); err != nil {
		s.Logger.Warn("enrollment reactivation failed after payment approval",
			zap.String("purchaseId", purchase.ID), zap.Error(err))
	}
}
