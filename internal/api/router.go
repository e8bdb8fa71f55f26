package api

import (
	"context"
	"net/http"
	"time"

	"recipe-keeper/internal/api/handlers/health"
	recipeHandler "recipe-keeper/internal/api/handlers/recipe"
	"recipe-keeper/internal/api/middleware"
	"recipe-keeper/internal/core/dedup"
	recipeService "recipe-keeper/internal/core/recipe"
	"recipe-keeper/internal/infrastructure/cache"
	"recipe-keeper/internal/infrastructure/config"
	"recipe-keeper/internal/infrastructure/storage"
	"recipe-keeper/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// Request timeout for the whole chain.
	timeoutDuration = 30 * time.Second
	// Request body size limit (1MB); recipes are small.
	maxBodySize = 1 << 20
)

// SetupRouter wires middleware, services and routes.
func SetupRouter(cfg *config.Config, store *storage.Store, cacheManager *cache.Manager) (*gin.Engine, error) {
	common.LogInfo("starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	dedupSvc := dedup.NewService(store, cacheManager, &cfg.Dedup)
	recipeSvc := recipeService.NewService(store)

	common.LogInfo("services initialized",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Float64("similarity_threshold", cfg.Dedup.SimilarityThreshold),
		zap.Int("scan_limit", cfg.Dedup.ScanLimit),
	)

	// Per-request timeout plus shared context values.
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Set("config", cfg)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"success": false,
				"error":   "Request timeout",
				"code":    common.ErrCodeRequestTimeout,
			})
			c.Abort()
		}
	})

	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		handler := recipeHandler.NewHandler(recipeSvc, dedupSvc)

		recipes := api.Group("/recipes")
		{
			recipes.POST("", middleware.Deduplication(cfg), handler.HandleCreate)
			recipes.GET("", handler.HandleList)
			recipes.GET("/:id", handler.HandleGet)
			recipes.PUT("/:id", middleware.Deduplication(cfg), handler.HandleUpdate)
			recipes.DELETE("/:id", handler.HandleDelete)

			recipes.POST("/check-duplicates", handler.HandleCheckDuplicates)
		}

		duplicates := api.Group("/duplicates")
		{
			duplicates.GET("", handler.HandleScanDuplicates)
			duplicates.GET("/stats", handler.HandleDuplicateStats)
			duplicates.POST("/merge", middleware.Deduplication(cfg), handler.HandleMergeDuplicates)
		}
	}

	common.LogInfo("router setup completed",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
