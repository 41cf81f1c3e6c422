package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/repository"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const catalogCacheTTL = 5 * time.Minute

type CourseService struct {
	CourseRepo *repository.CourseRepository
	Storage    *StorageService
	Redis      *redis.Client
}

func NewCourseService(courseRepo *repository.CourseRepository, storage *StorageService, rdb *redis.Client) *CourseService {
	return &CourseService{CourseRepo: courseRepo, Storage: storage, Redis: rdb}
}

type CourseRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	CategoryID  *uint   `json:"categoryId"`
	Price       float64 `json:"price"`
	DurationHrs int     `json:"durationHours"`
	IsPublished bool    `json:"isPublished"`
	IsSieCourse bool    `json:"isSieCourse"`
	SieCourseID string  `json:"sieCourseId"`
}

func (s *CourseService) CreateCourse(instructorID uint, req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: instructorID,
		CategoryID:   req.CategoryID,
		Price:        req.Price,
		DurationHrs:  req.DurationHrs,
		IsPublished:  req.IsPublished,
		IsSieCourse:  req.IsSieCourse,
		SieCourseID:  req.SieCourseID,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	s.invalidateCatalog(context.Background())
	return course, nil
}

func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(id uint, req CourseRequest) (*model.Course, error) {
	course, err := s.GetCourse(id)
	if err != nil {
		return nil, err
	}

	course.Title = req.Title
	course.Description = req.Description
	course.CategoryID = req.CategoryID
	course.Price = req.Price
	course.DurationHrs = req.DurationHrs
	course.IsPublished = req.IsPublished
	course.IsSieCourse = req.IsSieCourse
	course.SieCourseID = req.SieCourseID

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.invalidateCatalog(context.Background())
	return course, nil
}

func (s *CourseService) DeleteCourse(id uint) error {
	if _, err := s.GetCourse(id); err != nil {
		return err
	}
	if err := s.CourseRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateCatalog(context.Background())
	return nil
}

// ListCatalog serves the public course catalog, cached in redis per page.
func (s *CourseService) ListCatalog(ctx context.Context, page, limit int, categoryID uint) ([]model.Course, int64, error) {
	type cached struct {
		Courses []model.Course `json:"courses"`
		Total   int64          `json:"total"`
	}

	key := fmt.Sprintf("catalog:%d:%d:%d", page, limit, categoryID)
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var c cached
			if json.Unmarshal([]byte(raw), &c) == nil {
				return c.Courses, c.Total, nil
			}
		}
	}

	courses, total, err := s.CourseRepo.List(page, limit, true, categoryID)
	if err != nil {
		return nil, 0, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(cached{Courses: courses, Total: total}); err == nil {
			s.Redis.Set(ctx, key, raw, catalogCacheTTL)
		}
	}
	return courses, total, nil
}

func (s *CourseService) ListAll(page, limit int) ([]model.Course, int64, error) {
	return s.CourseRepo.List(page, limit, false, 0)
}

func (s *CourseService) ListCategories() ([]model.Category, error) {
	return s.CourseRepo.ListCategories()
}

func (s *CourseService) UploadThumbnail(ctx context.Context, courseID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("courses/%d/thumbnail%s", courseID, filepath.Ext(filename))
	url, err := s.Storage.Upload(ctx, key, reader, size, contentType)
	if err != nil {
		return "", err
	}

	course.ThumbnailURL = url
	if err := s.CourseRepo.Update(course); err != nil {
		return "", err
	}
	s.invalidateCatalog(ctx)
	return url, nil
}

type LessonRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
	Order       int    `json:"order"`
}

func (s *CourseService) AddLesson(courseID uint, req LessonRequest) (*model.Lesson, error) {
	if _, err := s.GetCourse(courseID); err != nil {
		return nil, err
	}
	lesson := &model.Lesson{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Order:       req.Order,
	}
	if err := s.CourseRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) UpdateLesson(courseID, lessonID uint, req LessonRequest) (*model.Lesson, error) {
	lesson, err := s.CourseRepo.FindLessonByID(lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != courseID {
		return nil, util.ErrPermissionDenied
	}

	lesson.Title = req.Title
	lesson.Description = req.Description
	lesson.VideoURL = req.VideoURL
	lesson.Order = req.Order

	if err := s.CourseRepo.UpdateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) DeleteLesson(courseID, lessonID uint) error {
	lesson, err := s.CourseRepo.FindLessonByID(lessonID)
	if err != nil {
		return err
	}
	if lesson.CourseID != courseID {
		return util.ErrPermissionDenied
	}
	return s.CourseRepo.DeleteLesson(lessonID)
}

func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	iter := s.Redis.Scan(ctx, 0, "catalog:*", 100).Iterator()
	for iter.Next(ctx) {
		s.Redis.Del(ctx, iter.Val())
	}
}
