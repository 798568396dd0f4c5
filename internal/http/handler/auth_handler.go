package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/prepquiz/internal/config"
	"github.com/smallbiznis/prepquiz/internal/http/middleware"
	"github.com/smallbiznis/prepquiz/internal/service"
)

// AuthHandler serves signup, login, logout and the session checks.
type AuthHandler struct {
	Auth          *service.AuthService
	secureCookies bool
	logger        *zap.Logger
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(auth *service.AuthService, cfg config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, secureCookies: cfg.IsProduction(), logger: logger}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup registers a user and returns an access token in the body.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create user", "details": err.Error()})
		return
	}

	result, err := h.Auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSignup) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create user", "details": err.Error()})
			return
		}
		h.logger.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   result.AccessToken,
		"message": "User created and logged in successfully!",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and sets the session cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"Login": false, "message": "Invalid payload."})
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondDenied(c, h.logger, "Login", err)
		return
	}

	middleware.SetCookie(c, middleware.AccessTokenCookie, result.AccessToken, int(h.Auth.AccessTokenTTL().Seconds()), false, http.SameSiteDefaultMode)
	middleware.SetCookie(c, middleware.RefreshTokenCookie, result.RefreshToken, int(h.Auth.RefreshTokenTTL().Seconds()), h.secureCookies, http.SameSiteStrictMode)

	c.JSON(http.StatusOK, gin.H{"Login": true, "token": result.AccessToken, "name": result.User.Name})
}

// Logout clears both session cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.SetCookie(c, middleware.AccessTokenCookie, "", -1, false, http.SameSiteDefaultMode)
	middleware.SetCookie(c, middleware.RefreshTokenCookie, "", -1, h.secureCookies, http.SameSiteStrictMode)
	c.JSON(http.StatusOK, gin.H{"status": true})
}

// Main is the protected endpoint the client calls to check its session.
func (h *AuthHandler) Main(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"valid": true, "message": "authorised"})
}

// Me returns the identity carried by the session.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"valid": false, "message": service.ErrInvalidAccessToken.Reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "name": identity.Name, "email": identity.Email})
}

// respondDenied writes a *service.DeniedError as 200 with flag set to false;
// anything else is an internal error.
func respondDenied(c *gin.Context, logger *zap.Logger, flag string, err error) {
	var denied *service.DeniedError
	if errors.As(err, &denied) {
		c.JSON(http.StatusOK, gin.H{flag: false, "message": denied.Reason})
		return
	}
	logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
