package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learning_copilot_backend/internal/ai"
	"learning_copilot_backend/internal/config"
	"learning_copilot_backend/internal/controller"
	"learning_copilot_backend/internal/repository"
	"learning_copilot_backend/internal/search"
	"learning_copilot_backend/internal/service"
	"learning_copilot_backend/pkg/database"
	"learning_copilot_backend/pkg/logger"
	"learning_copilot_backend/pkg/monitoring"
	"learning_copilot_backend/pkg/security"
	"learning_copilot_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user    *repository.UserRepository
	event   *repository.EventRepository
	content *repository.ContentRepository
	plan    *repository.PlanRepository
	profile *repository.ProfileRepository
	report  *repository.ReportRepository
}

type services struct {
	auth    *service.AuthService
	content *service.ContentService
	plan    *service.PlanService
	qa      *service.QAService
	report  *service.ReportService
	storage *service.StorageService
	tracker service.TaskTracker
}

type controllers struct {
	auth    *controller.AuthController
	user    *controller.UserController
	content *controller.ContentController
	plan    *controller.PlanController
	task    *controller.TaskController
	qa      *controller.QAController
	report  *controller.ReportController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig applies the hot-reloadable settings from a fresh config.
// Services share a.Config by pointer, so tunables take effect immediately.
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config.Plan = cfg.Plan
	a.Config.Timeout = cfg.Timeout
	a.Config.AI.Temperature = cfg.AI.Temperature

	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB, searchClient *search.Client) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		event:   repository.NewEventRepository(db),
		content: repository.NewContentRepository(searchClient),
		plan:    repository.NewPlanRepository(searchClient),
		profile: repository.NewProfileRepository(searchClient),
		report:  repository.NewReportRepository(searchClient),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	aiClient := ai.NewClient(cfg.AI)

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	taskTTL := time.Duration(cfg.Plan.TaskTTLMinutes) * time.Minute
	var tracker service.TaskTracker
	if cfg.Plan.TrackerBackend == "redis" {
		tracker = service.NewRedisTaskTracker(rdb, taskTTL)
	} else {
		tracker = service.NewMemoryTaskTracker(taskTTL)
	}

	s := &services{}
	s.storage = storage
	s.tracker = tracker
	s.auth = service.NewAuthService(repos.user, repos.profile, cfg)
	s.content = service.NewContentService(repos.content, cfg, rdb)
	s.plan = service.NewPlanService(aiClient, s.content, repos.plan, repos.event, cfg)
	s.qa = service.NewQAService(aiClient, s.content, repos.event)
	s.report = service.NewReportService(aiClient, storage, repos.report, repos.event)
	return s, nil
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		user:    controller.NewUserController(s.auth, repos.event),
		content: controller.NewContentController(s.content),
		plan:    controller.NewPlanController(s.plan, s.auth, s.tracker),
		task:    controller.NewTaskController(s.tracker),
		qa:      controller.NewQAController(s.qa, s.auth),
		report:  controller.NewReportController(s.report),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(func(c *gin.Context) {
		c.Set("config", a.Config)
		c.Next()
	})

	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	searchClient := search.NewClient(cfg.Search)

	repos := app.initRepositories(db, searchClient)
	services, err := app.initServices(repos, cfg, rdb)
	if err != nil {
		logger.Log.Fatal("failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, repos, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("learning-copilot", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Error("failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

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
		logger.Log.Info("server listening", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("server exited")
	logger.Log.Sync()
}
