package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eion/technotes/internal/directory"
	"github.com/eion/technotes/internal/health"
)

// RouterConfig holds what the router needs beyond the directory
type RouterConfig struct {
	AllowedOrigins []string
	MaxRequestSize int64
}

// NewRouter builds the gin engine serving the directory
func NewRouter(dir *directory.Directory, healthManager *health.Manager, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(corsMiddleware(cfg.AllowedOrigins))
	router.Use(RequestLogger(logger))
	router.Use(gin.Recovery())
	router.Use(BodyLimit(cfg.MaxRequestSize))

	router.GET("/health", func(c *gin.Context) {
		if healthManager != nil {
			if err := healthManager.Healthy(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "unhealthy",
					"timestamp": time.Now().Format(time.RFC3339),
					"error":     err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	NewUserHandlers(dir.Users, logger).RegisterRoutes(router)
	NewNoteHandlers(dir.Notes, logger).RegisterRoutes(router)
	NewAuditHandlers(dir.Audit, logger).RegisterRoutes(router)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		return cors.Default()
	}
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	cfg.AllowCredentials = true
	return cors.New(cfg)
}
