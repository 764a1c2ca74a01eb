package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/database"
	"task-tracker/backend/internal/handlers"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/monitoring"
	"task-tracker/backend/internal/repositories"
	"task-tracker/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Application holds all application dependencies and state.
type Application struct {
	Config *config.Config
	DB     *database.DatabasePool
	Cache  cache.Cache
	Redis  *redis.Client
	Router *gin.Engine
	Server *http.Server

	AuthService services.AuthService
	UserService services.UserService
	TaskService services.TaskService
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startServer()
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	log.Println("🚀 Initializing Task Tracker Backend...")
	log.Printf("📋 Environment: %s", cfg.Server.Environment)

	pool, err := database.NewDatabasePool(database.PoolConfigFromApp(cfg))
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.DB = pool

	log.Println("✅ Database connected and configured")

	migrationConfig := &repositories.MigrationConfig{
		MigrationsPath: "file://migrations",
		DBName:         cfg.Database.Name,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}

	if err := repositories.RunMigrations(pool.DB, migrationConfig); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis unavailable: %v (continuing with memory cache only)", err)
		redisClient = nil
	} else {
		app.Redis = redisClient
		log.Println("✅ Redis connected")
	}

	if redisClient != nil {
		app.Cache = cache.NewRedisCacheWithClient(redisClient)
		log.Println("✅ Redis cache initialized")
	} else {
		app.Cache = cache.NewMemoryCache()
		log.Println("✅ Memory cache initialized (fallback mode)")
	}

	app.AuthService = services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	app.UserService = services.NewUserService()
	app.TaskService = services.NewCachedTaskService(services.NewTaskService(), app.Cache)

	log.Println("✅ All services initialized")

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		return app.DB.Health()
	})
	if app.Redis != nil {
		monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}

	return app, nil
}

func (app *Application) setupRoutes() {
	r := gin.New()

	// Global middleware stack (order matters!)
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.SecureHeader())

	if app.Redis != nil {
		limiter := middleware.NewDistributedRateLimiter(app.Redis)
		r.Use(limiter.CreateMiddleware("global", &middleware.RateLimit{
			Rate:    app.Config.RateLimit.RequestsPerMin,
			Window:  time.Minute,
			KeyFunc: middleware.IPKeyFunc,
		}))
	} else {
		rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
		r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health and monitoring endpoints (no auth required)
	r.GET("/health", monitoring.HealthHandler())
	r.GET("/ready", monitoring.ReadinessHandler())
	r.GET("/live", monitoring.LivenessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	db := app.DB.DB

	authHandler := handlers.NewAuthHandler(db, app.AuthService, app.UserService)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	auth := middleware.Auth(db, app.AuthService)
	adminAuth := middleware.AdminAuth(db, app.AuthService)

	taskHandler := handlers.NewTaskHandler(db, app.TaskService, app.Config.Tasks.DeleteOwnerOnly)
	taskRoutes := r.Group("/tasks", auth)
	{
		taskRoutes.GET("", taskHandler.GetTasks)
		taskRoutes.GET("/:id", taskHandler.GetTaskByID)
		taskRoutes.POST("", taskHandler.CreateTask)
		taskRoutes.PUT("/:id", taskHandler.UpdateTask)
		taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
		taskRoutes.PATCH("/:id/status", taskHandler.SetStatus)
		taskRoutes.PATCH("/:id/priority", taskHandler.SetPriority)
	}

	userHandler := handlers.NewUserHandler(db, app.UserService)
	userRoutes := r.Group("/users")
	{
		userRoutes.GET("", auth, userHandler.GetUsers)
		userRoutes.POST("", adminAuth, userHandler.CreateUser)
		userRoutes.DELETE("/:id", adminAuth, userHandler.DeleteUser)
	}

	cacheHandler := handlers.NewCacheHandler(app.Cache)
	cacheRoutes := r.Group("/cache", adminAuth)
	{
		cacheRoutes.GET("/stats", cacheHandler.GetCacheStats)
		cacheRoutes.GET("/health", cacheHandler.GetCacheHealth)
	}

	app.Router = r
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}

		app.cleanup()
		log.Println("✅ Server stopped gracefully")
	}()

	log.Printf("🚀 Server starting on %s", addr)
	log.Printf("💚 Health check at http://%s/health", addr)

	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

func (app *Application) cleanup() {
	log.Println("🧹 Cleaning up resources...")

	// The Redis cache owns the client, so closing the cache closes Redis too.
	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			log.Printf("⚠️  Error closing cache: %v", err)
		}
	}

	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			log.Printf("⚠️  Error closing database: %v", err)
		}
	}

	log.Println("✅ Cleanup complete")
}
