package controller

import (
	"errors"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/service"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	PaymentService *service.PaymentService
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{PaymentService: paymentService}
}

type createPurchaseRequest struct {
	CourseID      uint   `json:"courseId" binding:"required"`
	PaymentMethod string `json:"paymentMethod"`
}

// CreatePurchase godoc
// @Summary Open a pending purchase for a paid course
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body createPurchaseRequest true "purchase data"
// @Success 201 {object} util.Response{data=model.Purchase}
// @Router /purchases [post]
func (c *PaymentController) CreatePurchase(ctx *gin.Context) {
	var req createPurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	purchase, err := c.PaymentService.CreatePurchase(claims.UserID, req.CourseID, req.PaymentMethod)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, purchase)
}

// ListMyPurchases godoc
// @Summary List the learner's purchases
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /purchases [get]
func (c *PaymentController) ListMyPurchases(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	purchases, err := c.PaymentService.ListMyPurchases(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, purchases)
}

type webhookRequest struct {
	PurchaseID string `json:"purchaseId"`
	PaymentID  string `json:"paymentId" binding:"required"`
}

// Webhook godoc
// @Summary Payment gateway notification endpoint
// @Tags payments
// @Accept json
// @Produce json
// @Param body body webhookRequest true "gateway notification"
// @Success 200 {object} util.Response{data=model.Purchase}
// @Failure 404 {object} util.Response
// @Router /payments/webhook [post]
func (c *PaymentController) Webhook(ctx *gin.Context) {
	var req webhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	purchase, err := c.PaymentService.ProcessWebhook(ctx.Request.Context(), req.PurchaseID, req.PaymentID)
	if err != nil {
		if errors.Is(err, util.ErrPurchaseNotFound) {
			util.NotFound(ctx, "purchase not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, purchase)
}
