package controller

import (
	"errors"
	"strconv"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/service"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// ListCatalog godoc
// @Summary List published courses
// @Tags courses
// @Produce json
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Param categoryId query int false "filter by category"
// @Success 200 {object} util.PageResponse
// @Router /courses [get]
func (c *CourseController) ListCatalog(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	categoryID, _ := strconv.ParseUint(ctx.Query("categoryId"), 10, 32)

	courses, total, err := c.CourseService.ListCatalog(ctx.Request.Context(), page, limit, uint(categoryID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// GetCourse godoc
// @Summary Get one course with its lessons
// @Tags courses
// @Produce json
// @Param id path int true "course id"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	course, err := c.CourseService.GetCourse(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}

// ListCategories godoc
// @Summary List course categories
// @Tags courses
// @Produce json
// @Success 200 {object} util.Response
// @Router /categories [get]
func (c *CourseController) ListCategories(ctx *gin.Context) {
	categories, err := c.CourseService.ListCategories()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// CreateCourse godoc
// @Summary Create a course (teacher)
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CourseRequest true "course data"
// @Success 201 {object} util.Response{data=model.Course}
// @Router /teacher/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.CreateCourse(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary Update a course (teacher)
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Param body body service.CourseRequest true "course data"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /teacher/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.UpdateCourse(uint(id), req)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}

// ListAllCourses godoc
// @Summary List all courses including unpublished (teacher)
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.PageResponse
// @Router /teacher/courses [get]
func (c *CourseController) ListAllCourses(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	courses, total, err := c.CourseService.ListAll(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// DeleteCourse godoc
// @Summary Delete a course (teacher)
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /teacher/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	if err := c.CourseService.DeleteCourse(uint(id)); err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// UploadThumbnail godoc
// @Summary Upload a course thumbnail (teacher)
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Param file formData file true "thumbnail image"
// @Success 200 {object} util.Response
// @Router /teacher/courses/{id}/thumbnail [post]
func (c *CourseController) UploadThumbnail(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	url, err := c.CourseService.UploadThumbnail(ctx.Request.Context(), uint(id), file.Filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

// AddLesson godoc
// @Summary Add a lesson to a course (teacher)
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Param body body service.LessonRequest true "lesson data"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /teacher/courses/{id}/lessons [post]
func (c *CourseController) AddLesson(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.CourseService.AddLesson(uint(id), req)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, lesson)
}

// UpdateLesson godoc
// @Summary Update a lesson (teacher)
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Param lessonId path int true "lesson id"
// @Param body body service.LessonRequest true "lesson data"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /teacher/courses/{id}/lessons/{lessonId} [put]
func (c *CourseController) UpdateLesson(ctx *gin.Context) {
	courseID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	lessonID, err := strconv.ParseUint(ctx.Param("lessonId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid lesson id")
		return
	}
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.CourseService.UpdateLesson(uint(courseID), uint(lessonID), req)
	if err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lesson)
}

// DeleteLesson godoc
// @Summary Remove a lesson from a course (teacher)
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Param lessonId path int true "lesson id"
// @Success 200 {object} util.Response
// @Router /teacher/courses/{id}/lessons/{lessonId} [delete]
func (c *CourseController) DeleteLesson(ctx *gin.Context) {
	courseID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	lessonID, err := strconv.ParseUint(ctx.Param("lessonId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid lesson id")
		return
	}

	if err := c.CourseService.DeleteLesson(uint(courseID), uint(lessonID)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
