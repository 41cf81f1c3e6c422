package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/config"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/controller"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/repository"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/service"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/database"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/logger"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/monitoring"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/security"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/tracing"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user        *repository.UserRepository
	course      *repository.CourseRepository
	enrollment  *repository.EnrollmentRepository
	evaluation  *repository.EvaluationRepository
	attempt     *repository.AttemptRepository
	certificate *repository.CertificateRepository
	purchase    *repository.PurchaseRepository
}

type services struct {
	storage     *service.StorageService
	auth        *service.AuthService
	user        *service.UserService
	course      *service.CourseService
	enrollment  *service.EnrollmentService
	evaluation  *service.EvaluationService
	attempt     *service.AttemptService
	certificate *service.CertificateService
	payment     *service.PaymentService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	course      *controller.CourseController
	enrollment  *controller.EnrollmentController
	evaluation  *controller.EvaluationController
	attempt     *controller.AttemptController
	certificate *controller.CertificateController
	payment     *controller.PaymentController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		course:      repository.NewCourseRepository(db),
		enrollment:  repository.NewEnrollmentRepository(db),
		evaluation:  repository.NewEvaluationRepository(db),
		attempt:     repository.NewAttemptRepository(db),
		certificate: repository.NewCertificateRepository(db),
		purchase:    repository.NewPurchaseRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, s.storage)
	s.course = service.NewCourseService(repos.course, s.storage, rdb)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.course, repos.purchase)
	s.evaluation = service.NewEvaluationService(repos.evaluation, repos.attempt, db)

	notifier := service.NewNotifier(&cfg.Email)
	s.attempt = service.NewAttemptService(repos.attempt, repos.evaluation, repos.enrollment, repos.user, notifier, db, logger.Log)

	sie := service.NewSieClient(&cfg.Sie)
	s.certificate = service.NewCertificateService(
		repos.certificate, repos.enrollment, repos.evaluation, repos.attempt,
		repos.user, repos.course, sie, rdb, logger.Log,
	)

	gateway := service.NewPaymentGateway(&cfg.Payment)
	s.payment = service.NewPaymentService(repos.purchase, repos.course, repos.enrollment, gateway, logger.Log)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth, s.user),
		user:        controller.NewUserController(s.user),
		course:      controller.NewCourseController(s.course),
		enrollment:  controller.NewEnrollmentController(s.enrollment),
		evaluation:  controller.NewEvaluationController(s.evaluation),
		attempt:     controller.NewAttemptController(s.attempt),
		certificate: controller.NewCertificateController(s.certificate),
		payment:     controller.NewPaymentController(s.payment),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("logger initialized")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("redis unavailable, caches disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("ead-platform", cfg.Server.Mode, cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
