package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"zorides_backend/internal/config"
	"zorides_backend/internal/controller"
	"zorides_backend/internal/repository"
	"zorides_backend/internal/service"
	"zorides_backend/pkg/database"
	"zorides_backend/pkg/logger"
	"zorides_backend/pkg/monitoring"
	"zorides_backend/pkg/security"
	"zorides_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	rateLimiter     *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user      *repository.UserRepository
	event     *repository.EventRepository
	group     *repository.GroupRepository
	member    *repository.MemberRepository
	message   *repository.MessageRepository
	post      *repository.PostRepository
	feedCache *repository.FeedCache
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	event      *service.EventService
	group      *service.GroupService
	membership *service.MembershipService
	message    *service.MessageService
	feed       *service.FeedService
	post       *service.PostService
	admin      *service.AdminService
	storage    *service.StorageService
}

type controllers struct {
	auth    *controller.AuthController
	user    *controller.UserController
	event   *controller.EventController
	group   *controller.GroupController
	message *controller.MessageController
	feed    *controller.FeedController
	post    *controller.PostController
	admin   *controller.AdminController
	upload  *controller.UploadController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口，依次通知已注册的回调
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		event:     repository.NewEventRepository(db),
		group:     repository.NewGroupRepository(db),
		member:    repository.NewMemberRepository(db),
		message:   repository.NewMessageRepository(db),
		post:      repository.NewPostRepository(db),
		feedCache: repository.NewFeedCache(rdb, time.Duration(cfg.Feed.CacheTTLSeconds)*time.Second),
	}
}

func initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.event, repos.group)
	s.event = service.NewEventService(repos.event, repos.feedCache)
	s.group = service.NewGroupService(repos.group, repos.event, repos.feedCache)
	s.membership = service.NewMembershipService(
		db,
		repos.group,
		repos.member,
		repos.user,
		repos.event,
		repos.message,
		repos.feedCache,
	)
	s.message = service.NewMessageService(repos.message, repos.user, repos.group, repos.member)
	s.feed = service.NewFeedService(repos.event, repos.group, repos.member, repos.feedCache, cfg.Feed.Limit)
	s.post = service.NewPostService(repos.post, repos.event)
	s.admin = service.NewAdminService(
		db,
		repos.user,
		repos.event,
		repos.group,
		repos.member,
		repos.message,
		repos.post,
		repos.feedCache,
	)

	return s
}

func initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth, s.user),
		user:    controller.NewUserController(s.user),
		event:   controller.NewEventController(s.event, s.group),
		group:   controller.NewGroupController(s.group, s.membership),
		message: controller.NewMessageController(s.message),
		feed:    controller.NewFeedController(s.feed),
		post:    controller.NewPostController(s.post),
		admin:   controller.NewAdminController(s.admin),
		upload:  controller.NewUploadController(s.storage),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.rateLimiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.rateLimiter.Middleware())
	a.RegisterConfigCallback(func(c *config.Config) {
		a.rateLimiter.SetLimit(c.RateLimit.MaxRequests, time.Duration(c.RateLimit.WindowMinutes)*time.Minute)
	})

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 组装路由，供 NewApp 和接口测试共用
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := initRepositories(db, rdb, cfg)
	svcs := initServices(repos, cfg, db)
	ctrls := initControllers(svcs, db, rdb)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == "debug" {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, repos, cfg)

	if cfg.Storage.Type == "" || cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetMode(c.Server.Mode)
	})
	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式默认跳过迁移，除非显式 -migrate
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		if err := database.Seed(db, &cfg.Admin); err != nil {
			logger.Log.Fatal("Failed to seed database", zap.Error(err))
		}
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	monitoring.Init()

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
