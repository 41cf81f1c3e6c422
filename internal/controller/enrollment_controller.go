package controller

import (
	"errors"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/service"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// Enroll godoc
// @Summary Enroll the learner in a course
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.EnrollRequest true "enrollment data"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 403 {object} util.Response
// @Router /enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req service.EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	enrollment, err := c.EnrollmentService.Enroll(claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "course not found")
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, enrollment)
}

// ListMyEnrollments godoc
// @Summary List the learner's enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /enrollments [get]
func (c *EnrollmentController) ListMyEnrollments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	enrollments, err := c.EnrollmentService.ListMyEnrollments(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// GetEnrollment godoc
// @Summary Get one enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "enrollment id"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 404 {object} util.Response
// @Router /enrollments/{id} [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	enrollment, err := c.EnrollmentService.GetEnrollment(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrEnrollmentNotFound) {
			util.NotFound(ctx, "enrollment not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims.Role == model.Student && enrollment.UserID != claims.UserID {
		util.Forbidden(ctx)
		return
	}
	util.Success(ctx, enrollment)
}

type progressRequest struct {
	Progress float64 `json:"progress" binding:"min=0,max=100"`
}

// UpdateProgress godoc
// @Summary Update course progress; 100 marks the course completed
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "enrollment id"
// @Param body body progressRequest true "progress percentage"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Router /enrollments/{id}/progress [put]
func (c *EnrollmentController) UpdateProgress(ctx *gin.Context) {
	var req progressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	enrollment, err := c.EnrollmentService.UpdateProgress(claims.UserID, ctx.Param("id"), req.Progress)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrEnrollmentNotFound):
			util.NotFound(ctx, "enrollment not found")
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, enrollment)
}
