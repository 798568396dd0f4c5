package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/smallbiznis/prepquiz/internal/config"
	"github.com/smallbiznis/prepquiz/internal/http/handler"
	"github.com/smallbiznis/prepquiz/internal/http/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(
	cfg config.Config,
	logger *zap.Logger,
	authHandler *handler.AuthHandler,
	questionHandler *handler.QuestionHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware *middleware.Auth,
	metrics *middleware.Metrics,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger, "/healthz", "/metrics"))
	if metrics != nil {
		r.Use(metrics.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(rateLimiter.Exempt("/healthz", "/metrics").Handler())
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.POST("/signup", authHandler.Signup)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	r.GET("/main", authMiddleware.VerifyUser, authHandler.Main)
	r.GET("/me", authMiddleware.VerifyUser, authHandler.Me)

	api := r.Group("/api")
	{
		api.POST("/generate-questions", questionHandler.GenerateQuestions)
	}

	r.GET("/healthz", healthHandler.Healthz)
	if metrics != nil {
		r.GET("/metrics", metrics.Exposition())
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}
