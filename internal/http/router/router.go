// Package router builds the gin engine from the application modules.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apphttp "phonebook_backend/internal/http"
	"phonebook_backend/internal/http/middleware"
	"phonebook_backend/platform/httpkit"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Version   string `json:"version"`
}

// New creates the engine with global middleware, ops endpoints and every
// module's routes under /api/v1.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.Recovery(app.Logger))
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))
	if app.Metrics != nil {
		engine.Use(app.Metrics.Middleware())
		engine.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
	}

	engine.GET("/api/health", healthHandler(app))

	v1 := engine.Group("/api/v1")
	limiter := httpkit.NewIPRateLimiter(rate.Limit(app.Config.GetRateLimitRPS()), app.Config.GetRateLimitBurst(), app.Logger)
	v1.Use(limiter.RateLimit())

	ctx := &apphttp.RouterContext{
		Engine: engine,
		V1:     v1,
		Config: app.Config,
	}
	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		app.Logger.Debug("module routes registered", "module", module.Name())
	}

	engine.NoRoute(func(c *gin.Context) {
		httpkit.Error(c, http.StatusNotFound, "route not found", nil)
	})

	return engine
}

func healthHandler(app *apphttp.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Success:   true,
			Message:   "phone book API is running",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Database:  "connected",
			Version:   app.Config.GetAppVersion(),
		}
		status := http.StatusOK

		if app.Health != nil {
			if err := app.Health.Ping(c.Request.Context()); err != nil {
				app.Logger.WithContext(c.Request.Context()).DatabaseError("health ping", err)
				resp.Success = false
				resp.Message = "database unavailable"
				resp.Database = "disconnected"
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, resp)
	}
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", httpkit.HeaderRequestID},
		ExposeHeaders:    []string{httpkit.HeaderRequestID, "Content-Disposition"},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() || len(cfg.GetCORSOrigins()) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.GetCORSOrigins()
	}
	return c
}
