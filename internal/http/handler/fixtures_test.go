package handler_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/prepquiz/internal/domain"
	"github.com/smallbiznis/prepquiz/internal/jwt"
	"github.com/smallbiznis/prepquiz/internal/password"
	"github.com/smallbiznis/prepquiz/internal/repository"
	"github.com/smallbiznis/prepquiz/internal/service"
)

func newTestAuthService(t *testing.T, repo repository.UserRepository) (*service.AuthService, *jwt.Issuer) {
	t.Helper()
	issuer, err := jwt.NewIssuer(jwt.Options{
		Issuer:  "prepquiz",
		Access:  jwt.KeyConfig{Secret: []byte(strings.Repeat("a", 32)), TTL: time.Hour},
		Refresh: jwt.KeyConfig{Secret: []byte(strings.Repeat("r", 32)), TTL: 24 * time.Hour},
	})
	require.NoError(t, err)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	hasher := password.NewHasher(password.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	return service.NewAuthService(repo, hasher, issuer, node, zap.NewNop()), issuer
}

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
	err   error
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]domain.User{}}
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.User{}, m.err
	}
	user, ok := m.users[email]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.User{}, m.err
	}
	if _, ok := m.users[user.Email]; ok {
		return domain.User{}, repository.ErrDuplicateEmail
	}
	m.users[user.Email] = user
	return user, nil
}

func (m *memoryUserRepo) Ping(ctx context.Context) error {
	return m.err
}
