package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"blogplatform-backend/internal/config"
	infraAI "blogplatform-backend/internal/infrastructure/ai"
	infraCache "blogplatform-backend/internal/infrastructure/cache"
	"blogplatform-backend/internal/infrastructure/database"
	"blogplatform-backend/internal/infrastructure/email"
	"blogplatform-backend/internal/infrastructure/identity"
	"blogplatform-backend/internal/infrastructure/storage"
	"blogplatform-backend/migrations"
	"blogplatform-backend/pkg/cache"
	"blogplatform-backend/pkg/jwt"

	accountHandler "blogplatform-backend/internal/domains/account/handler"
	accountRepo "blogplatform-backend/internal/domains/account/repository"
	accountService "blogplatform-backend/internal/domains/account/service"
	aiHandler "blogplatform-backend/internal/domains/ai/handler"
	aiService "blogplatform-backend/internal/domains/ai/service"
	otpRepo "blogplatform-backend/internal/domains/otp/repository"
	otpService "blogplatform-backend/internal/domains/otp/service"
	postHandler "blogplatform-backend/internal/domains/post/handler"
	postRepo "blogplatform-backend/internal/domains/post/repository"
	postService "blogplatform-backend/internal/domains/post/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything in it is a
// singleton living for the whole process.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================

	Config        *config.Config
	DB            *database.PostgresDB
	RedisClient   *infraCache.RedisClient
	Cache         cache.Cache
	JWTManager    *jwt.Manager
	AsynqClient   *asynq.Client
	EmailService  email.EmailService
	Storage       *storage.MinIOStorage
	Gemini        *infraAI.GeminiClient
	IdentityStore identity.Store

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================

	OtpRepo     otpRepo.OtpRepository
	PostRepo    postRepo.PostRepository
	ProfileRepo accountRepo.ProfileRepository

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================

	OtpService     otpService.OtpService
	PostService    postService.PostService
	AccountService accountService.AccountService
	AIService      aiService.SuggestionService

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	PostHandler    *postHandler.PostHandler
	AccountHandler *accountHandler.AccountHandler
	AIHandler      *aiHandler.AIHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer initializes the whole dependency graph, in order:
// Config -> Infrastructure (DB, Redis, MinIO, ...) -> Repositories ->
// Services -> Handlers. A wrong order panics, so keep the stages.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	if err := db.Migrate(migrations.Embed); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE REDIS
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisClient := infraCache.NewRedisClient(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err := redisClient.Connect(context.Background()); err != nil {
		// Redis failure is non-critical: cache misses fall back to the
		// database, the worker queue reconnects on its own.
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}

	c.RedisClient = redisClient
	c.Cache = cache.NewRedisCache(redisClient.Client)

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// ========================================
	// STEP 4: INITIALIZE EXTERNAL SERVICES
	// ========================================
	log.Println("🔌 Initializing external services...")

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	c.EmailService = email.NewSMTPEmailService(cfg.SMTP)
	c.Gemini = infraAI.NewGeminiClient(cfg.Gemini)

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = minioStorage

	c.IdentityStore = identity.NewPostgresStore(db.Pool)
	log.Println("✅ External services initialized")

	// ========================================
	// STEP 5: INITIALIZE REPOSITORIES
	// ========================================
	log.Println("📦 Initializing repositories...")

	c.initRepositories()
	log.Println("✅ Repositories initialized")

	// ========================================
	// STEP 6: INITIALIZE SERVICES
	// ========================================
	log.Println("⚙️  Initializing services...")

	c.initServices()
	log.Println("✅ Services initialized")

	// ========================================
	// STEP 7: INITIALIZE HANDLERS
	// ========================================
	log.Println("🎯 Initializing handlers...")

	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.OtpRepo = otpRepo.NewOtpRepository(pool)
	c.PostRepo = postRepo.NewPostRepository(pool, c.Cache)
	c.ProfileRepo = accountRepo.NewProfileRepository(pool, c.Cache)
}

func (c *Container) initServices() {
	c.OtpService = otpService.NewOtpService(
		c.OtpRepo,
		c.AsynqClient,
		c.Config.OTP,
	)

	c.PostService = postService.NewPostService(
		c.PostRepo,
		c.Storage,
	)

	c.AccountService = accountService.NewAccountService(
		c.DB.Pool,
		c.IdentityStore,
		c.ProfileRepo,
		c.OtpService,
		c.JWTManager,
		c.Storage,
	)

	c.AIService = aiService.NewSuggestionService(c.Gemini)
}

func (c *Container) initHandlers() {
	c.PostHandler = postHandler.NewPostHandler(c.PostService)
	c.AccountHandler = accountHandler.NewAccountHandler(c.AccountService)
	c.AIHandler = aiHandler.NewAIHandler(c.AIService)
}

// ========================================
// CLEANUP
// ========================================

// Cleanup releases resources on shutdown. Called from the server's
// graceful shutdown path.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close asynq client: %v", err)
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
