package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallbiznis/prepquiz/internal/domain"
	"github.com/smallbiznis/prepquiz/internal/repository"
)

const questionKeyPrefix = "prepquiz:questions:"

// RedisQuestionCache implements QuestionCache backed by Redis.
type RedisQuestionCache struct {
	client redis.UniversalClient
}

var _ repository.QuestionCache = (*RedisQuestionCache)(nil)

// NewRedisQuestionCache constructs a Redis-backed question cache.
func NewRedisQuestionCache(client redis.UniversalClient) *RedisQuestionCache {
	return &RedisQuestionCache{client: client}
}

// Get loads and decodes a cached question set. A miss returns (nil, nil).
func (c *RedisQuestionCache) Get(ctx context.Context, key string) (domain.QuestionSet, error) {
	payload, err := c.client.Get(ctx, questionKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load questions: %w", err)
	}
	var questions domain.QuestionSet
	if err := json.Unmarshal(payload, &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}

// Set stores the encoded question set with ttl.
func (c *RedisQuestionCache) Set(ctx context.Context, key string, questions domain.QuestionSet, ttl time.Duration) error {
	payload, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	if err := c.client.Set(ctx, questionKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist questions: %w", err)
	}
	return nil
}

// NoopQuestionCache never stores anything. It is used when Redis is not configured.
type NoopQuestionCache struct{}

var _ repository.QuestionCache = NoopQuestionCache{}

func (NoopQuestionCache) Get(context.Context, string) (domain.QuestionSet, error) { return nil, nil }

func (NoopQuestionCache) Set(context.Context, string, domain.QuestionSet, time.Duration) error {
	return nil
}
