package app

import (
	"context"
	"errors"
	"log"
	"music_exam_backend/internal/config"
	"music_exam_backend/internal/controller"
	"music_exam_backend/internal/grading"
	"music_exam_backend/internal/repository"
	"music_exam_backend/internal/service"
	"music_exam_backend/pkg/configwatcher"
	"music_exam_backend/pkg/database"
	"music_exam_backend/pkg/logger"
	"music_exam_backend/pkg/monitoring"
	"music_exam_backend/pkg/security"
	"music_exam_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config     *config.Config
	ConfigFile string
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client

	services *services
	tracer   *sdktrace.TracerProvider
	limiter  *security.RateLimiter

	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	exam    *repository.ExamRepository
	attempt *repository.AttemptRepository
	grading *repository.GradingStore
}

type services struct {
	storage      *service.StorageService
	content      *service.NotationContentService
	orchestrator *grading.Orchestrator
	exam         *service.ExamService
	attempt      *service.AttemptService
	grade        *service.GradeService
	evaluation   *service.EvaluationService
}

type controllers struct {
	evaluation *controller.EvaluationController
	exam       *controller.ExamController
	attempt    *controller.AttemptController
	grade      *controller.GradeController
	upload     *controller.UploadController
	health     *controller.HealthController
}

// RegisterConfigCallback 配置文件热更新后依次回调
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) reloadConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		exam:    repository.NewExamRepository(db),
		attempt: repository.NewAttemptRepository(db),
		grading: repository.NewGradingStore(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.content = service.NewNotationContentService(s.storage, cfg, rdb)
	s.orchestrator = grading.NewOrchestrator(repos.grading, s.content, grading.SettingsFromConfig(cfg.Grading))

	s.exam = service.NewExamService(repos.exam)
	s.attempt = service.NewAttemptService(repos.attempt, repos.exam, s.orchestrator)
	s.grade = service.NewGradeService(s.orchestrator)
	s.evaluation = service.NewEvaluationService(func() float64 {
		return s.orchestrator.Settings().Tolerance
	})

	// 存储与数据库连接的变更需要重启
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.orchestrator.UpdateSettings(grading.SettingsFromConfig(newCfg.Grading))
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		evaluation: controller.NewEvaluationController(s.evaluation),
		exam:       controller.NewExamController(s.exam),
		attempt:    controller.NewAttemptController(s.attempt),
		grade:      controller.NewGradeController(s.grade, s.attempt),
		upload:     controller.NewUploadController(s.storage),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, window, "/metrics", "/api/health")
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp configFile 为 config.yaml 路径，用于热更新
func NewApp(cfg *config.Config, configFile string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config:     cfg,
		ConfigFile: configFile,
		DB:         db,
	}
	if cfg.MigrateOnly {
		return app
	}

	// redis 只作乐谱缓存，连接失败时降级为直连存储
	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, notation cache disabled", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg.Log.Level)
	})

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, app.Redis)
	app.services = services
	controllers := app.initControllers(services, db, app.Redis)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing, continuing without it", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	if a.limiter != nil {
		go a.limiter.Cleanup(ctx)
	}
	if a.ConfigFile == "" {
		return
	}
	go func() {
		if err := configwatcher.WatchConfig(ctx, a.ConfigFile, a.reloadConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.String("file", a.ConfigFile), zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.startBackgroundTasks(ctx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}

// ConfigFilePath 目录下的 config.yaml
func ConfigFilePath(dir string) string {
	return filepath.Join(dir, "config.yaml")
}
