package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/prepquiz/internal/domain"
	"github.com/smallbiznis/prepquiz/internal/service"
)

const identityKey = "identity"

type identityContextKey struct{}

// Auth verifies the session cookies and attaches the caller identity.
type Auth struct {
	AuthService *service.AuthService
	Logger      *zap.Logger
}

// NewAuth constructs the session verifier middleware.
func NewAuth(authService *service.AuthService, logger *zap.Logger) *Auth {
	return &Auth{AuthService: authService, Logger: logger}
}

// VerifyUser authorizes the request from the accessToken and refreshToken
// cookies. Denials end the request with 200 and {"valid": false}.
func (m *Auth) VerifyUser(c *gin.Context) {
	accessToken, _ := c.Cookie(AccessTokenCookie)
	refreshToken, _ := c.Cookie(RefreshTokenCookie)

	auth, err := m.AuthService.Authorize(c.Request.Context(), accessToken, refreshToken)
	if err != nil {
		var denied *service.DeniedError
		if errors.As(err, &denied) {
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"valid": false, "message": denied.Reason})
			return
		}
		m.log().Error("authorize request", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"valid": false, "message": "Failed to verify session."})
		return
	}

	if auth.ReissuedAccessToken != "" {
		SetCookie(c, AccessTokenCookie, auth.ReissuedAccessToken, int(m.AuthService.AccessTokenTTL().Seconds()), false, http.SameSiteDefaultMode)
	}

	c.Set(identityKey, auth.Identity)
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), auth.Identity))
	c.Next()
}

func (m *Auth) log() *zap.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return zap.L()
}

// GetIdentity returns the identity bound by VerifyUser.
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok
}

// WithIdentity stores identity on ctx.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFrom extracts the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(domain.Identity)
	return identity, ok
}
