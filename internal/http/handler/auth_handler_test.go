package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/prepquiz/internal/config"
	"github.com/smallbiznis/prepquiz/internal/domain"
	httpHandler "github.com/smallbiznis/prepquiz/internal/http/handler"
	"github.com/smallbiznis/prepquiz/internal/http/middleware"
	"github.com/smallbiznis/prepquiz/internal/jwt"
)

func newAuthEngine(t *testing.T, repo *memoryUserRepo, cfg config.Config) (*gin.Engine, *jwt.Issuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authSvc, issuer := newTestAuthService(t, repo)
	h := httpHandler.NewAuthHandler(authSvc, cfg, zap.NewNop())
	verifier := middleware.NewAuth(authSvc, zap.NewNop())

	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.GET("/main", verifier.VerifyUser, h.Main)
	r.GET("/me", verifier.VerifyUser, h.Me)
	return r, issuer
}

func doJSON(r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func findCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignup(t *testing.T) {
	repo := newMemoryUserRepo()
	r, issuer := newAuthEngine(t, repo, config.Config{})

	w := doJSON(r, http.MethodPost, "/signup", `{"name":"Ada","email":"ada@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "User created and logged in successfully!", body["message"])

	identity, err := issuer.Verify(body["token"].(string), jwt.Access)
	require.NoError(t, err)
	require.Equal(t, domain.Identity{Name: "Ada", Email: "ada@example.com"}, identity)

	w = doJSON(r, http.MethodPost, "/signup", `{"name":"Ada","email":"ada@example.com","password":"pw"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body = decode(t, w)
	require.Equal(t, "Failed to create user", body["error"])
	require.NotEmpty(t, body["details"])
}

func TestSignupRejectsMissingFields(t *testing.T) {
	r, _ := newAuthEngine(t, newMemoryUserRepo(), config.Config{})

	for _, payload := range []string{`{"name":"Ada","email":"ada@example.com"}`, `not json`, `{"name":" ","email":"a@b.c","password":"pw"}`} {
		w := doJSON(r, http.MethodPost, "/signup", payload)
		require.Equal(t, http.StatusBadRequest, w.Code, payload)
		require.Equal(t, "Failed to create user", decode(t, w)["error"])
	}
}

func TestLoginSetsSessionCookies(t *testing.T) {
	repo := newMemoryUserRepo()
	r, issuer := newAuthEngine(t, repo, config.Config{Environment: "production"})

	w := doJSON(r, http.MethodPost, "/signup", `{"name":"Ada","email":"ada@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/login", `{"email":"ada@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["Login"])
	require.Equal(t, "Ada", body["name"])
	require.NotEmpty(t, body["token"])

	res := w.Result()
	access := findCookie(res, middleware.AccessTokenCookie)
	require.NotNil(t, access)
	require.True(t, access.HttpOnly)
	require.Equal(t, 3600, access.MaxAge)
	require.Equal(t, body["token"], access.Value)

	refresh := findCookie(res, middleware.RefreshTokenCookie)
	require.NotNil(t, refresh)
	require.True(t, refresh.HttpOnly)
	require.True(t, refresh.Secure)
	require.Equal(t, http.SameSiteStrictMode, refresh.SameSite)
	require.Equal(t, 86400, refresh.MaxAge)

	_, err := issuer.Verify(refresh.Value, jwt.Refresh)
	require.NoError(t, err)
}

func TestLoginDenials(t *testing.T) {
	repo := newMemoryUserRepo()
	r, _ := newAuthEngine(t, repo, config.Config{})
	doJSON(r, http.MethodPost, "/signup", `{"name":"Ada","email":"ada@example.com","password":"pw"}`)

	w := doJSON(r, http.MethodPost, "/login", `{"email":"ada@example.com","password":"nope"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{"Login": false, "message": "Invalid Password"}, decode(t, w))
	require.Empty(t, w.Result().Cookies())

	w = doJSON(r, http.MethodPost, "/login", `{"email":"ghost@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{"Login": false, "message": "User not found"}, decode(t, w))
}

func TestLoginStoreFailure(t *testing.T) {
	repo := newMemoryUserRepo()
	repo.err = errors.New("store offline")
	r, _ := newAuthEngine(t, repo, config.Config{})

	w := doJSON(r, http.MethodPost, "/login", `{"email":"ada@example.com","password":"pw"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, decode(t, w)["error"], "store offline")
}

func TestLogoutClearsCookies(t *testing.T) {
	r, _ := newAuthEngine(t, newMemoryUserRepo(), config.Config{})

	w := doJSON(r, http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{"status": true}, decode(t, w))

	res := w.Result()
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		c := findCookie(res, name)
		require.NotNil(t, c, name)
		require.Less(t, c.MaxAge, 0)
	}
}

func TestMainRequiresSession(t *testing.T) {
	r, issuer := newAuthEngine(t, newMemoryUserRepo(), config.Config{})
	identity := domain.Identity{Name: "Ada", Email: "ada@example.com"}

	w := doJSON(r, http.MethodGet, "/main", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{"valid": false, "message": "No refresh token"}, decode(t, w))

	access, err := issuer.Issue(identity, jwt.Access)
	require.NoError(t, err)
	w = doJSON(r, http.MethodGet, "/main", "", &http.Cookie{Name: middleware.AccessTokenCookie, Value: access})
	require.Equal(t, map[string]any{"valid": true, "message": "authorised"}, decode(t, w))
	require.Nil(t, findCookie(w.Result(), middleware.AccessTokenCookie))

	w = doJSON(r, http.MethodGet, "/me", "", &http.Cookie{Name: middleware.AccessTokenCookie, Value: access})
	require.Equal(t, map[string]any{"valid": true, "name": "Ada", "email": "ada@example.com"}, decode(t, w))
}
