package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/uangku/uangku/internal/config"
	"github.com/uangku/uangku/internal/db"
	"github.com/uangku/uangku/internal/limiter"
	"github.com/uangku/uangku/internal/repository"
	"github.com/uangku/uangku/internal/service"
)

type App struct {
	Cfg   *config.Config
	DB    *sqlx.DB
	Redis *redis.Client

	AuthService        *service.AuthService
	UserService        *service.UserService
	EmailService       *service.EmailService
	CategoryService    *service.CategoryService
	TransactionService *service.TransactionService
	DashboardService   *service.DashboardService
	SiteViewService    *service.SiteViewService
	LoginLimiter       *limiter.Limiter
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Repositories
	userRepository := repository.NewUserRepository(database)
	codeRepository := repository.NewVerificationCodeRepository(database)
	categoryRepository := repository.NewCategoryRepository(database)
	transactionRepository := repository.NewTransactionRepository(database)
	siteViewRepository := repository.NewSiteViewRepository(database)

	// Throttles share the Redis counter store so limits hold across instances
	limiterStore := limiter.NewRedisStore(redisClient)
	registerLimiter := limiter.New(limiterStore, cfg.RegisterMaxAttempts, cfg.RegisterDecay)
	resendLimiter := limiter.New(limiterStore, cfg.ResendMaxAttempts, cfg.ResendDecay)
	loginLimiter := limiter.New(limiterStore, cfg.LoginMaxAttempts, cfg.LoginDecay)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppName,
		cfg.VerifyCodeExpiry,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		codeRepository,
		emailService,
		registerLimiter,
		resendLimiter,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.VerifyCodeExpiry,
	)
	userService := service.NewUserService(userRepository, codeRepository, authService, emailService)
	categoryService := service.NewCategoryService(categoryRepository)
	transactionService := service.NewTransactionService(transactionRepository, categoryRepository)
	dashboardService := service.NewDashboardService(transactionRepository)
	siteViewService := service.NewSiteViewService(
		siteViewRepository,
		userRepository,
		redisClient,
		cfg.AppKey,
		cfg.StatsCacheTTL,
	)

	return &App{
		Cfg:                cfg,
		DB:                 database,
		Redis:              redisClient,
		AuthService:        authService,
		UserService:        userService,
		EmailService:       emailService,
		CategoryService:    categoryService,
		TransactionService: transactionService,
		DashboardService:   dashboardService,
		SiteViewService:    siteViewService,
		LoginLimiter:       loginLimiter,
	}, nil
}

func (a *App) Close() error {
	// Drain queued mail before shutting down connections
	if a.EmailService != nil {
		a.EmailService.Close()
	}

	if a.Redis != nil {
		err := a.Redis.Close()
		if err != nil {
			return err
		}
	}

	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
