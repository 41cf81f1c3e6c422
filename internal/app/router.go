package app

import (
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/docs"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/config"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/middleware"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/monitoring"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		public.GET("/courses", c.course.ListCatalog)
		public.GET("/courses/:id", c.course.GetCourse)
		public.GET("/categories", c.course.ListCategories)

		// public certificate verification by number
		public.GET("/certificates/verify/:number", c.certificate.VerifyCertificate)

		// payment gateway callback
		public.POST("/payments/webhook", c.payment.Webhook)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.user.GetProfile)
	rg.PUT("/profile", c.user.UpdateProfile)
	rg.POST("/profile/avatar", c.user.UploadAvatar)

	rg.POST("/enrollments", c.enrollment.Enroll)
	rg.GET("/enrollments", c.enrollment.ListMyEnrollments)
	rg.GET("/enrollments/:id", c.enrollment.GetEnrollment)
	rg.PUT("/enrollments/:id/progress", c.enrollment.UpdateProgress)

	rg.GET("/evaluations", c.evaluation.ListByCourse)
	rg.POST("/evaluations/:evaluationId/attempts", c.attempt.StartAttempt)
	rg.GET("/evaluations/:evaluationId/attempts", c.attempt.ListMyAttempts)
	rg.POST("/attempts/:id/submit", c.attempt.SubmitAttempt)
	rg.GET("/attempts/:id", c.attempt.GetAttempt)

	rg.GET("/enrollments/:id/certificate/eligibility", c.certificate.CheckEligibility)
	rg.POST("/enrollments/:id/certificate", c.certificate.GenerateCertificate)
	rg.GET("/certificates", c.certificate.ListMyCertificates)

	rg.POST("/purchases", c.payment.CreatePurchase)
	rg.GET("/purchases", c.payment.ListMyPurchases)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.GET("/courses", c.course.ListAllCourses)
		teacher.POST("/courses", c.course.CreateCourse)
		teacher.PUT("/courses/:id", c.course.UpdateCourse)
		teacher.DELETE("/courses/:id", c.course.DeleteCourse)
		teacher.POST("/courses/:id/thumbnail", c.course.UploadThumbnail)
		teacher.POST("/courses/:id/lessons", c.course.AddLesson)
		teacher.PUT("/courses/:id/lessons/:lessonId", c.course.UpdateLesson)
		teacher.DELETE("/courses/:id/lessons/:lessonId", c.course.DeleteLesson)

		teacher.POST("/evaluations", c.evaluation.CreateEvaluation)
		teacher.GET("/evaluations/:id", c.evaluation.GetEvaluation)
		teacher.PUT("/evaluations/:id", c.evaluation.UpdateEvaluation)
		teacher.DELETE("/evaluations/:id", c.evaluation.DeleteEvaluation)
		teacher.POST("/evaluations/:id/questions", c.evaluation.AddQuestion)
		teacher.PUT("/evaluations/:id/questions/:questionId", c.evaluation.UpdateQuestion)
		teacher.DELETE("/evaluations/:id/questions/:questionId", c.evaluation.DeleteQuestion)

		teacher.GET("/attempts/pending", c.attempt.ListAwaitingGrading)
		teacher.POST("/attempts/:id/grade", c.attempt.ManualGrade)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.ListUsers)
	}
}
