package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/prepquiz/internal/domain"
)

// UserRepository exposes persistence for registered users.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Ping(ctx context.Context) error
}

// QuestionCache stores generated question sets keyed by document digest.
// Get returns (nil, nil) on a miss.
type QuestionCache interface {
	Get(ctx context.Context, key string) (domain.QuestionSet, error)
	Set(ctx context.Context, key string, questions domain.QuestionSet, ttl time.Duration) error
}
