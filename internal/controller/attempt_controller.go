package controller

import (
	"errors"
	"strconv"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/service"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// StartAttempt godoc
// @Summary Start an attempt on an evaluation
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param evaluationId path int true "evaluation id"
// @Success 201 {object} util.Response{data=service.StartAttemptResponse}
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /evaluations/{evaluationId}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	evaluationID, err := strconv.ParseUint(ctx.Param("evaluationId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid evaluation id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	resp, err := c.AttemptService.StartAttempt(claims.UserID, uint(evaluationID))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrEvaluationNotFound):
			util.NotFound(ctx, "evaluation not found")
		case errors.Is(err, util.ErrEnrollmentNotFound):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrAttemptLimitReached):
			util.Conflict(ctx, "attempt limit reached for this evaluation")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, resp)
}

type submitAttemptRequest struct {
	Answers []service.AnswerSubmission `json:"answers"`
}

// SubmitAttempt godoc
// @Summary Submit the answers of an attempt for grading
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "attempt id"
// @Param body body submitAttemptRequest true "submitted answers"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 409 {object} util.Response
// @Router /attempts/{id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	var req submitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.AttemptService.SubmitAttempt(claims.UserID, uint(id), req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx, "attempt not found")
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrAttemptSubmitted):
			util.Conflict(ctx, "attempt was already submitted")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

type manualGradeRequest struct {
	Grades []service.ManualGradeInput `json:"grades" binding:"required"`
}

// ManualGrade godoc
// @Summary Grade the essay answers of an attempt (teacher)
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "attempt id"
// @Param body body manualGradeRequest true "per-question grades and feedback"
// @Success 200 {object} util.Response{data=service.ManualGradeResult}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /teacher/attempts/{id}/grade [post]
func (c *AttemptController) ManualGrade(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	var req manualGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.AttemptService.ManualGrade(claims.UserID, uint(id), req.Grades)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx, "attempt not found")
		case errors.Is(err, util.ErrAttemptNotPending):
			util.Conflict(ctx, "attempt is not awaiting grading")
		case errors.Is(err, util.ErrInvalidGradeTarget):
			util.BadRequest(ctx, "grade targets a question that cannot be manually graded")
		case errors.Is(err, util.ErrQuestionNotAnswered):
			util.BadRequest(ctx, "grade targets a question the learner did not answer")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// ListAwaitingGrading godoc
// @Summary List attempts waiting for manual grading (teacher)
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param evaluationId query int false "filter by evaluation"
// @Success 200 {object} util.Response
// @Router /teacher/attempts/pending [get]
func (c *AttemptController) ListAwaitingGrading(ctx *gin.Context) {
	evaluationID, _ := strconv.ParseUint(ctx.Query("evaluationId"), 10, 32)

	attempts, err := c.AttemptService.ListAwaitingGrading(uint(evaluationID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// ListMyAttempts godoc
// @Summary List the learner's attempts on an evaluation
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param evaluationId path int true "evaluation id"
// @Success 200 {object} util.Response
// @Router /evaluations/{evaluationId}/attempts [get]
func (c *AttemptController) ListMyAttempts(ctx *gin.Context) {
	evaluationID, err := strconv.ParseUint(ctx.Param("evaluationId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid evaluation id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	attempts, err := c.AttemptService.ListMyAttempts(claims.UserID, uint(evaluationID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// GetAttempt godoc
// @Summary Get one attempt with its answers
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response{data=model.Attempt}
// @Failure 403 {object} util.Response
// @Router /attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	attempt, err := c.AttemptService.GetAttempt(uint(id), claims.UserID, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx, "attempt not found")
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, attempt)
}
