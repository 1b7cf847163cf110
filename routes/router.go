package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/serenity-app/serenity/config"
	"github.com/serenity-app/serenity/controllers"
	"github.com/serenity-app/serenity/gamification"
	"github.com/serenity-app/serenity/middleware"
	"github.com/serenity-app/serenity/utils"
)

// Deps are the engine registries the HTTP layer serves. Guests may be nil.
type Deps struct {
	Users  *gamification.Registry
	Guests *gamification.Registry
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Access log and panic recovery go to their own rolling file
	gl, err := utils.NewRollingFileLogger(utils.RollingFile{
		Path:       cfg.GinPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}, cfg.LogLevel)
	if err == nil {
		r.Use(ginzap.GinzapWithConfig(gl, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			Context: func(c *gin.Context) []zapcore.Field {
				if rid := c.GetString(middleware.RequestIDKey); rid != "" {
					return []zapcore.Field{zap.String("request_id", rid)}
				}
				return nil
			},
		}))
		r.Use(ginzap.RecoveryWithZap(gl, true))
	} else {
		utils.Sugar.Warnf("gin file logger unavailable, using default recovery: %v", err)
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		// credentials cannot be combined with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	var catalog *gamification.Catalog
	if deps.Users != nil {
		catalog = deps.Users.Catalog()
	}
	gameController := controllers.NewGamificationController(deps.Users, deps.Guests)
	configController := controllers.NewConfigController(catalog)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	api := r.Group("/api/v1")
	api.GET("/config/rules", configController.GetRules)

	game := api.Group("/gamification")
	game.Use(middleware.Identity(cfg.JWTSecret, deps.Guests != nil))
	game.GET("", gameController.GetState)
	game.GET("/badges", gameController.Badges)
	game.GET("/events", gameController.Events)
	game.POST("/award", limiter.Middleware(), gameController.Award)
	game.POST("/sync", limiter.Middleware(), gameController.Sync)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, utils.CodeNotFound, "api route not found")
	})

	return r
}
