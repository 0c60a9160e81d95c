package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/procurehq/bid-leveler/internal/cache"
	"github.com/procurehq/bid-leveler/internal/config"
	"github.com/procurehq/bid-leveler/internal/database"
	"github.com/procurehq/bid-leveler/internal/errors"
	"github.com/procurehq/bid-leveler/internal/leveling"
	"github.com/procurehq/bid-leveler/internal/monitoring"
	"github.com/procurehq/bid-leveler/internal/ratelimit"
	"github.com/procurehq/bid-leveler/internal/types"
)

// serverDeps collects the wired services handed to the router. The repo and
// db fields may be nil, which disables run persistence and its endpoints.
type serverDeps struct {
	cfg     config.Config
	engine  *leveling.Engine
	repo    *database.Repository
	db      *database.DB
	limiter *ratelimit.RateLimiter
	metrics *monitoring.Metrics
	logger  *monitoring.Logger
	cache   *cache.Cache
}

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	engine := leveling.NewEngineWithConfig(leveling.Config{
		OutlierThreshold:    cfg.OutlierThreshold,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	})

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	// Persistence is optional: without a data dir the service still levels
	// bids, it just cannot replay past runs.
	var db *database.DB
	var repo *database.Repository
	if cfg.DataDir != "" {
		var err error
		db, err = database.NewDB(cfg.DataDir)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer errors.SafeClose(db, "database")
		repo = database.NewRepository(db)
	} else {
		slog.Warn("DATA_DIR not set, run persistence disabled")
	}

	redisClient, err := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("Redis unavailable, continuing with in-memory rate limiting", "error", err)
	}
	defer errors.SafeClose(redisClient, "redis")

	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
		IPLimitPerMin:      cfg.IPLimitPerMin,
		AnalyzeLimitPerMin: cfg.AnalyzeLimitPerMin,
		BurstMultiplier:    2,
	}, appMetrics)

	r := setupRouter(serverDeps{
		cfg:     cfg,
		engine:  engine,
		repo:    repo,
		db:      db,
		limiter: limiter,
		metrics: appMetrics,
		logger:  appLogger,
		cache:   cache.NewCache(cfg.CacheTTL),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func setupRouter(deps serverDeps) *gin.Engine {
	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = deps.cfg.CORSAllowOrigins
	if len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Request-ID")
	r.Use(cors.New(corsConfig))

	r.Use(monitoring.MonitoringMiddleware(deps.metrics, deps.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	if deps.limiter != nil {
		r.Use(deps.limiter.IPRateLimitMiddleware())
	}

	if deps.cache != nil {
		r.Use(deps.cache.Middleware(deps.metrics))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"metrics":   deps.metrics.GetStats(),
		})
	})

	analyze := r.Group("/")
	if deps.limiter != nil {
		analyze.Use(deps.limiter.EndpointRateLimitMiddleware("analyze", deps.cfg.AnalyzeLimitPerMin))
	}
	analyze.POST("/analyze", handleAnalyze(deps))

	r.GET("/settings", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.engine.Settings())
	})

	r.PUT("/settings", handleUpdateSettings(deps))

	r.GET("/analyses", handleListRuns(deps))
	r.GET("/analyses/:id", handleGetRun(deps))

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.metrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.cache.Stats())
	})

	if deps.limiter != nil {
		r.GET("/ratelimit/stats", deps.limiter.HandleRateLimitStatus())
		r.DELETE("/ratelimit/ip/:ip", deps.limiter.HandleInvalidateIP())
	}

	r.GET("/pools/database", func(c *gin.Context) {
		if deps.db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence not configured"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"pool":  "database",
			"stats": deps.db.GetPoolStats(),
		})
	})

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Performance profiling endpoints (development only)
	if deps.cfg.EnableProfiling {
		slog.Info("Enabling performance profiling endpoints")
		r.GET("/debug/pprof/*filepath", gin.WrapF(pprof.Index))
		r.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
		r.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
		r.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
		r.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	}

	return r
}

func handleAnalyze(deps serverDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var req types.AnalyzeRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid request body", err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		if len(req.LineItems) == 0 {
			appErr := errors.NewValidationError("line_items cannot be empty")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		start := time.Now()
		report := deps.engine.AnalyzeBids(req.LineItems)

		outliers := 0
		for _, g := range report.GroupedItems {
			outliers += len(g.Outliers)
		}
		deps.metrics.RecordAnalysis(len(req.LineItems), outliers)
		deps.logger.AnalysisLogger(
			len(req.LineItems),
			len(report.GroupedItems),
			len(report.VendorPerformance),
			outliers,
			time.Since(start),
			false,
		)

		response := gin.H{"report": report}

		if deps.repo != nil {
			runID, err := deps.repo.SaveRun(ctx, report, len(req.LineItems))
			if err != nil {
				// The analysis already succeeded; losing the history row is
				// not worth failing the request over.
				slog.Error("Failed to persist analysis run", "error", err)
			} else {
				deps.metrics.IncrementRunPersisted()
				response["run_id"] = runID
			}
		}

		c.JSON(http.StatusOK, response)
	}
}

func handleUpdateSettings(deps serverDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.SettingsRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid request body", err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		cfg := deps.engine.Settings()
		if req.OutlierThreshold != nil {
			cfg.OutlierThreshold = *req.OutlierThreshold
		}
		if req.ConfidenceThreshold != nil {
			cfg.ConfidenceThreshold = *req.ConfidenceThreshold
		}

		if err := deps.engine.UpdateSettings(cfg); err != nil {
			appErr := errors.NewValidationError("invalid settings", err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		// Cached reports were computed under the old settings and must not
		// be replayed for identical payloads.
		if deps.cache != nil {
			deps.cache.Clear()
		}

		slog.Info("Engine settings updated",
			"outlier_threshold", cfg.OutlierThreshold,
			"confidence_threshold", cfg.ConfidenceThreshold)

		c.JSON(http.StatusOK, cfg)
	}
}

func handleListRuns(deps serverDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.repo == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence not configured"})
			return
		}

		limit := 20
		if limitStr := c.Query("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil {
				limit = l
			}
		}

		runs, err := deps.repo.ListRuns(c.Request.Context(), limit)
		if err != nil {
			appErr := errors.NewStorageError("failed to list analysis runs", err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		c.JSON(http.StatusOK, gin.H{"runs": runs})
	}
}

func handleGetRun(deps serverDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.repo == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence not configured"})
			return
		}

		id := c.Param("id")

		run, err := deps.repo.GetRun(c.Request.Context(), id)
		if err != nil {
			var appErr *errors.AppError
			if stderrors.Is(err, database.ErrRunNotFound) {
				appErr = errors.NewNotFoundError("analysis run", id)
			} else {
				appErr = errors.NewStorageError("failed to load analysis run", err)
			}
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		c.JSON(http.StatusOK, run)
	}
}
