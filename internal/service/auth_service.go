package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/smallbiznis/prepquiz/internal/domain"
	"github.com/smallbiznis/prepquiz/internal/jwt"
	"github.com/smallbiznis/prepquiz/internal/password"
	"github.com/smallbiznis/prepquiz/internal/repository"
)

// SignupResult is returned after a successful registration.
type SignupResult struct {
	User        domain.User
	AccessToken string
}

// LoginResult carries the issued token pair for an authenticated user.
type LoginResult struct {
	User         domain.User
	AccessToken  string
	RefreshToken string
}

// Authorization is the outcome of a successful Authorize call.
// ReissuedAccessToken is set only when the access token was minted from a
// refresh token.
type Authorization struct {
	Identity            domain.Identity
	ReissuedAccessToken string
}

// AuthService encapsulates signup, login and request authorization.
type AuthService struct {
	users     repository.UserRepository
	hasher    *password.Hasher
	tokens    *jwt.Issuer
	snowflake *snowflake.Node
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewAuthService wires dependencies.
func NewAuthService(users repository.UserRepository, hasher *password.Hasher, tokens *jwt.Issuer, node *snowflake.Node, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		snowflake: node,
		logger:    logger,
		tracer:    otel.Tracer("github.com/smallbiznis/prepquiz/internal/service"),
	}
}

// AccessTokenTTL returns the lifetime of issued access tokens.
func (s *AuthService) AccessTokenTTL() time.Duration {
	return s.tokens.TTL(jwt.Access)
}

// RefreshTokenTTL returns the lifetime of issued refresh tokens.
func (s *AuthService) RefreshTokenTTL() time.Duration {
	return s.tokens.TTL(jwt.Refresh)
}

// Signup stores a new user with a hashed password and returns an access token.
func (s *AuthService) Signup(ctx context.Context, name, email, plain string) (SignupResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Signup")
	defer span.End()

	name = strings.TrimSpace(name)
	normalized := normalizeEmail(email)
	if name == "" || normalized == "" || plain == "" {
		return SignupResult{}, ErrInvalidSignup
	}

	hashed, err := s.hasher.Hash(plain)
	if err != nil {
		span.RecordError(err)
		return SignupResult{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:           s.snowflake.Generate().Int64(),
		Name:         name,
		Email:        normalized,
		PasswordHash: hashed,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		return SignupResult{}, err
	}

	access, err := s.tokens.Issue(created.Identity(), jwt.Access)
	if err != nil {
		span.RecordError(err)
		return SignupResult{}, fmt.Errorf("issue access token: %w", err)
	}

	s.audit("signup.success", "user_id", created.ID)
	return SignupResult{User: created, AccessToken: access}, nil
}

// Login checks the credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, email, plain string) (LoginResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	normalized := normalizeEmail(email)
	if normalized == "" {
		return LoginResult{}, ErrUserNotFound
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrUserNotFound
		}
		span.RecordError(err)
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}

	ok, err := s.hasher.Verify(plain, user.PasswordHash)
	if err != nil {
		s.log().Warn("stored password hash unreadable", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	if err != nil || !ok {
		s.audit("login.invalid_password", "user_id", user.ID)
		return LoginResult{}, ErrInvalidPassword
	}

	identity := user.Identity()
	access, err := s.tokens.Issue(identity, jwt.Access)
	if err != nil {
		span.RecordError(err)
		return LoginResult{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.Issue(identity, jwt.Refresh)
	if err != nil {
		span.RecordError(err)
		return LoginResult{}, fmt.Errorf("issue refresh token: %w", err)
	}

	s.audit("login.success", "user_id", user.ID)
	return LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Authorize decides whether a request carrying the given tokens may proceed.
//
// A usable access token alone decides the outcome, and one that fails
// verification for any reason other than expiry is denied without looking at
// the refresh token. An expired access token counts as absent, matching a
// browser that has already dropped the cookie. Without an access token a
// valid refresh token is exchanged for a freshly minted access token that
// carries the same identity. Denials are returned as *DeniedError.
func (s *AuthService) Authorize(ctx context.Context, accessToken, refreshToken string) (Authorization, error) {
	_, span := s.startSpan(ctx, "AuthService.Authorize")
	defer span.End()

	if accessToken != "" {
		identity, err := s.tokens.Verify(accessToken, jwt.Access)
		switch {
		case err == nil:
			return Authorization{Identity: identity}, nil
		case errors.Is(err, jwt.ErrExpired):
			span.AddEvent("access token expired")
		default:
			span.RecordError(err)
			return Authorization{}, ErrInvalidAccessToken
		}
	}

	if refreshToken == "" {
		return Authorization{}, ErrMissingRefreshToken
	}

	identity, err := s.tokens.Verify(refreshToken, jwt.Refresh)
	if err != nil {
		span.RecordError(err)
		return Authorization{}, ErrInvalidRefreshToken
	}

	access, err := s.tokens.Issue(identity, jwt.Access)
	if err != nil {
		span.RecordError(err)
		return Authorization{}, fmt.Errorf("reissue access token: %w", err)
	}

	s.audit("access_token.reissued", "email", identity.Email)
	return Authorization{Identity: identity, ReissuedAccessToken: access}, nil
}

// Ping checks the credential store.
func (s *AuthService) Ping(ctx context.Context) error {
	return s.users.Ping(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *AuthService) audit(event string, attrs ...any) {
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	s.log().Info("audit", fields...)
}

func (s *AuthService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}
