package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/prepquiz/internal/service"
)

// HealthHandler reports whether the credential store is reachable.
type HealthHandler struct {
	Auth   *service.AuthService
	logger *zap.Logger
}

func NewHealthHandler(auth *service.AuthService, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{Auth: auth, logger: logger}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Auth.Ping(ctx); err != nil {
		h.logger.Warn("store ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
