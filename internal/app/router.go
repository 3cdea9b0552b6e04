package app

import (
	"log"
	"time"

	"studybuddy/internal/config"
	"studybuddy/internal/middleware"
	"studybuddy/internal/model"
	"studybuddy/internal/repository"
	"studybuddy/internal/service"
	"studybuddy/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	// Set Gin mode
	if cfg.ServerPort == "5000" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware(cfg.ClientURL))

	// Rate limiting middleware (if enabled)
	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}

	// Auto migrate
	if err := db.AutoMigrate(&model.User{}, &model.FriendRequest{}, &model.Friendship{}, &model.Presence{}, &model.Notification{}); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// AutoMigrate cannot express a partial unique index, so the duplicate
	// suppression constraint is created with raw DDL.
	if err := db.Exec(model.PendingPairIndexDDL).Error; err != nil {
		panic("Failed to create pending request index: " + err.Error())
	}

	// Initialize Redis with retry logic
	redisClient := initRedisWithRetry(cfg)

	// Initialize RabbitMQ with retry logic
	rabbitMQ := initRabbitMQWithRetry(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewFriendRequestRepository(db, redisClient)
	friendshipRepo := repository.NewFriendshipRepository(db, redisClient)
	presenceRepo := repository.NewPresenceRepository(db, redisClient)
	notificationRepo := repository.NewNotificationRepository(db, redisClient)

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo, rabbitMQ)
	presenceService := service.NewPresenceService(presenceRepo)
	requestService := service.NewFriendRequestService(requestRepo, friendshipRepo, userRepo, notificationService)
	friendService := service.NewFriendService(friendshipRepo, userRepo, presenceService, notificationService)

	// Initialize notification worker if RabbitMQ is available
	if rabbitMQ != nil {
		worker := service.NewNotificationWorker(notificationRepo, rabbitMQ)
		if err := worker.Start(); err != nil {
			log.Printf("Warning: Failed to start notification worker: %v", err)
		}
	} else {
		log.Println("Notification worker not started - friend events will be stored directly")
	}

	// Initialize handlers
	requestHandler := NewFriendRequestHandler(requestService)
	friendHandler := NewFriendHandler(friendService)
	presenceHandler := NewPresenceHandler(presenceService)
	notificationHandler := NewNotificationHandler(notificationService)

	auth := middleware.Auth(cfg.JWTSecret)

	// API routes
	api := r.Group("/api/v1")
	{
		// Friend routes
		friends := api.Group("/friends")
		friends.Use(auth)
		{
			friends.POST("/requests", requestHandler.Send)
			friends.GET("/requests/incoming", requestHandler.ListIncoming)
			friends.GET("/requests/outgoing", requestHandler.ListOutgoing)
			friends.POST("/requests/:id/accept", requestHandler.Accept)
			friends.POST("/requests/:id/reject", requestHandler.Reject)
			friends.DELETE("/requests/:id", requestHandler.Cancel)

			friends.GET("", friendHandler.ListFriends)
			friends.GET("/online", friendHandler.ListOnlineFriends)
			friends.DELETE("/:userID", friendHandler.RemoveFriend)
		}

		// Presence routes
		presence := api.Group("/presence")
		presence.Use(auth)
		{
			presence.POST("/heartbeat", presenceHandler.Heartbeat)
			presence.GET("/:userID", presenceHandler.GetPresence)
		}

		// Notification routes
		notifications := api.Group("/notifications")
		notifications.Use(auth)
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread", notificationHandler.GetUnreadNotifications)
			notifications.GET("/unread/count", notificationHandler.GetUnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
			notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = "host=" + cfg.PostgresHost +
			" port=" + cfg.PostgresPort +
			" user=" + cfg.PostgresUser +
			" password=" + cfg.PostgresPassword +
			" dbname=" + cfg.PostgresDB +
			" sslmode=" + cfg.PostgresSSLMode
	}

	// TranslateError maps the pending-pair index violation onto
	// gorm.ErrDuplicatedKey so the service can answer DuplicateRequest on a
	// lost race.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// initRedisWithRetry attempts to connect to Redis with exponential backoff retry
func initRedisWithRetry(cfg *config.Config) *util.RedisClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		redisClient, err := util.NewRedisClient(cfg)
		if err == nil {
			log.Printf("Redis connected successfully on attempt %d", attempt)
			return redisClient
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}

			log.Printf("Failed to connect to Redis (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to Redis after %d attempts: %v. Caching will be disabled.", maxRetries, err)
			log.Println("Note: Application will continue without Redis caching")
		}
	}

	return nil
}

// initRabbitMQWithRetry attempts to connect to RabbitMQ with exponential backoff retry
func initRabbitMQWithRetry(cfg *config.Config) *util.RabbitMQClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		rabbitMQ, err := util.NewRabbitMQClient(cfg)
		if err == nil {
			log.Printf("RabbitMQ connected successfully on attempt %d", attempt)
			return rabbitMQ
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}

			log.Printf("Failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to RabbitMQ after %d attempts: %v. Friend events will be stored directly.", maxRetries, err)
		}
	}

	return nil
}

func corsMiddleware(clientURL string) gin.HandlerFunc {
	// Allowed origins (whitelist)
	allowedOrigins := []string{
		clientURL, // Default from config
		"http://localhost:3000",
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is in whitelist
		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		// If origin is allowed, set it; otherwise, use default
		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", clientURL)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
