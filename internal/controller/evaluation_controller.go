package controller

import (
	"errors"
	"strconv"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/service"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"github.com/gin-gonic/gin"
)

type EvaluationController struct {
	EvaluationService *service.EvaluationService
}

func NewEvaluationController(evaluationService *service.EvaluationService) *EvaluationController {
	return &EvaluationController{EvaluationService: evaluationService}
}

// CreateEvaluation godoc
// @Summary Create an evaluation with its questions (teacher)
// @Tags evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.EvaluationRequest true "evaluation data"
// @Success 201 {object} util.Response{data=model.Evaluation}
// @Failure 400 {object} util.Response
// @Router /teacher/evaluations [post]
func (c *EvaluationController) CreateEvaluation(ctx *gin.Context) {
	var req service.EvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	evaluation, err := c.EvaluationService.CreateEvaluation(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, evaluation)
}

// GetEvaluation godoc
// @Summary Get an evaluation with questions and options (teacher)
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param id path int true "evaluation id"
// @Success 200 {object} util.Response{data=model.Evaluation}
// @Failure 404 {object} util.Response
// @Router /teacher/evaluations/{id} [get]
func (c *EvaluationController) GetEvaluation(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid evaluation id")
		return
	}

	evaluation, err := c.EvaluationService.GetEvaluation(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrEvaluationNotFound) {
			util.NotFound(ctx, "evaluation not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, evaluation)
}

// ListByCourse godoc
// @Summary List a course's evaluations
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param courseId query int true "course id"
// @Param active query bool false "active only"
// @Success 200 {object} util.Response
// @Router /evaluations [get]
func (c *EvaluationController) ListByCourse(ctx *gin.Context) {
	courseID, err := strconv.ParseUint(ctx.Query("courseId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	activeOnly := ctx.DefaultQuery("active", "true") == "true"

	evaluations, err := c.EvaluationService.ListByCourse(uint(courseID), activeOnly)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, evaluations)
}

// UpdateEvaluation godoc
// @Summary Update an evaluation's settings (teacher)
// @Tags evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "evaluation id"
// @Param body body service.EvaluationRequest true "evaluation data"
// @Success 200 {object} util.Response{data=model.Evaluation}
// @Router /teacher/evaluations/{id} [put]
func (c *EvaluationController) UpdateEvaluation(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid evaluation id")
		return
	}
	var req service.EvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	evaluation, err := c.EvaluationService.UpdateEvaluation(uint(id), req)
	if err != nil {
		if errors.Is(err, util.ErrEvaluationNotFound) {
			util.NotFound(ctx, "evaluation not found")
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, evaluation)
}

// DeleteEvaluation godoc
// @Summary Delete an evaluation without attempts (teacher)
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param id path int true "evaluation id"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /teacher/evaluations/{id} [delete]
func (c *EvaluationController) DeleteEvaluation(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid evaluation id")
		return
	}

	if err := c.EvaluationService.DeleteEvaluation(uint(id)); err != nil {
		switch {
		case errors.Is(err, util.ErrEvaluationNotFound):
			util.NotFound(ctx, "evaluation not found")
		case errors.Is(err, util.ErrEvaluationHasTries):
			util.Conflict(ctx, "evaluation has recorded attempts and cannot be deleted")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// AddQuestion godoc
// @Summary Add a question to an evaluation (teacher)
// @Tags evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "evaluation id"
// @Param body body service.QuestionRequest true "question data"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /teacher/evaluations/{id}/questions [post]
func (c *EvaluationController) AddQuestion(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid evaluation id")
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.EvaluationService.AddQuestion(uint(id), req)
	if err != nil {
		if errors.Is(err, util.ErrEvaluationNotFound) {
			util.NotFound(ctx, "evaluation not found")
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, question)
}

// UpdateQuestion godoc
// @Summary Update a question and replace its options (teacher)
// @Tags evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "evaluation id"
// @Param questionId path int true "question id"
// @Param body body service.QuestionRequest true "question data"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /teacher/evaluations/{id}/questions/{questionId} [put]
func (c *EvaluationController) UpdateQuestion(ctx *gin.Context) {
	evaluationID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid evaluation id")
		return
	}
	questionID, err := strconv.ParseUint(ctx.Param("questionId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.EvaluationService.UpdateQuestion(uint(evaluationID), uint(questionID), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrEvaluationNotFound):
			util.NotFound(ctx, "evaluation not found")
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary Remove a question from an evaluation (teacher)
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param id path int true "evaluation id"
// @Param questionId path int true "question id"
// @Success 200 {object} util.Response
// @Router /teacher/evaluations/{id}/questions/{questionId} [delete]
func (c *EvaluationController) DeleteQuestion(ctx *gin.Context) {
	evaluationID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid evaluation id")
		return
	}
	questionID, err := strconv.ParseUint(ctx.Param("questionId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	if err := c.EvaluationService.DeleteQuestion(uint(evaluationID), uint(questionID)); err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
