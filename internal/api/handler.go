// Package api exposes the HTTP surface of the service: auth, thesis
// analysis and retrieval, and the admin panel.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/acadlabs/bibliometer/internal/analysis"
	"github.com/acadlabs/bibliometer/internal/auth"
	"github.com/acadlabs/bibliometer/internal/cache"
	"github.com/acadlabs/bibliometer/internal/config"
	"github.com/acadlabs/bibliometer/internal/database"
	"github.com/acadlabs/bibliometer/internal/errors"
	"github.com/acadlabs/bibliometer/internal/monitoring"
	"github.com/acadlabs/bibliometer/internal/predictor"
	"github.com/acadlabs/bibliometer/internal/ratelimit"
)

// Handler carries the wired dependencies for all routes.
type Handler struct {
	cfg       *config.Config
	repo      *database.Repository
	analyzer  *analysis.Analyzer
	predictor *predictor.Client
	tokens    *auth.TokenService
	metrics   *monitoring.Metrics
	cache     *cache.Cache
	limiter   *ratelimit.Limiter
}

// NewHandler creates the API handler.
func NewHandler(
	cfg *config.Config,
	repo *database.Repository,
	analyzer *analysis.Analyzer,
	pred *predictor.Client,
	tokens *auth.TokenService,
	metrics *monitoring.Metrics,
	responseCache *cache.Cache,
	limiter *ratelimit.Limiter,
) *Handler {
	return &Handler{
		cfg:       cfg,
		repo:      repo,
		analyzer:  analyzer,
		predictor: pred,
		tokens:    tokens,
		metrics:   metrics,
		cache:     responseCache,
		limiter:   limiter,
	}
}

// Router builds the Gin engine with all middleware and routes.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()

	r.Use(monitoring.Middleware(h.metrics))
	r.Use(errors.RecoveryHandler())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	r.GET("/health", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	protected := r.Group("/api", auth.Middleware(h.tokens, h.repo))

	theses := protected.Group("/theses")
	{
		theses.POST("/analyze", h.limiter.Middleware(), h.AnalyzeThesis)
		theses.GET("", h.ListTheses)
		theses.GET("/stats", h.cache.Middleware(principalCacheKey, h.metrics), h.UserStats)
		theses.GET("/:id", h.GetThesis)
		theses.DELETE("/:id", h.DeleteThesis)
		theses.GET("/:id/download", h.DownloadThesis)
	}

	admin := protected.Group("/admin", auth.RequireRole(database.RoleAdmin))
	{
		admin.GET("/stats", h.cache.Middleware(principalCacheKey, h.metrics), h.AdminStats)
		admin.GET("/users", h.ListUsers)
		admin.PATCH("/users/:id", h.UpdateUser)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.GET("/activity", h.RecentActivity)
	}

	return r
}

func principalCacheKey(c *gin.Context) string {
	principal, _ := auth.FromContext(c)
	return principal.UserID
}

// Health godoc
// @Summary Service health and metrics snapshot
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"metrics":   h.metrics.GetStats(),
	})
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}
