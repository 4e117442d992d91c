package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "docchat-backend/internal/auth"
	"docchat-backend/internal/documents"
	"docchat-backend/internal/pdfs"
	"docchat-backend/internal/services/health"
	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/server/respond"
	"docchat-backend/internal/users"
)

const (
	rateGroupChat   = "chat"
	rateGroupUpload = "upload"
)

// RouterDeps are the handlers and policies the router mounts.
type RouterDeps struct {
	Config          config.Config
	PDFHandler      *pdfs.Handler
	UserHandler     *users.Handler
	DocumentHandler *documents.Handler
	GoogleAuth      *googleauth.GoogleService
	Health          *health.Service
	PrincipalLookup middleware.PrincipalLookup
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	requireAuth := middleware.Auth(deps.PrincipalLookup)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			rateGroupChat:   {Rate: deps.Config.ChatRateLimit.RPS, Burst: deps.Config.ChatRateLimit.Burst},
			rateGroupUpload: {Rate: deps.Config.UploadRateLimit.RPS, Burst: deps.Config.UploadRateLimit.Burst},
		},
		GroupFor: rateGroupFor,
		Limiter:  deps.RateLimiter,
	}))

	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, healthSvc.Status())
	})

	if deps.PDFHandler != nil {
		deps.PDFHandler.RegisterRoutes(api)
		deps.PDFHandler.RegisterFileRoutes(r)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api, requireAuth)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api.Group("/docs", requireAuth))
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}

func rateGroupFor(c *gin.Context) string {
	switch strings.TrimSuffix(c.FullPath(), "/") {
	case "/api/chat":
		return rateGroupChat
	case "/api/upload":
		return rateGroupUpload
	default:
		return ""
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
