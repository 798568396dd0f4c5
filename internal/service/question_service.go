package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/smallbiznis/prepquiz/internal/adapter/model"
	"github.com/smallbiznis/prepquiz/internal/config"
	"github.com/smallbiznis/prepquiz/internal/domain"
	"github.com/smallbiznis/prepquiz/internal/quiz"
	"github.com/smallbiznis/prepquiz/internal/repository"
)

// QuestionService turns document text into a multiple-choice question set.
type QuestionService struct {
	model    model.Model
	cache    repository.QuestionCache
	cacheTTL time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewQuestionService(m model.Model, cache repository.QuestionCache, cfg config.Config, logger *zap.Logger) *QuestionService {
	return &QuestionService{
		model:    m,
		cache:    cache,
		cacheTTL: cfg.QuestionCacheTTL,
		timeout:  cfg.GenerationTimeout,
		logger:   logger,
		tracer:   otel.Tracer("github.com/smallbiznis/prepquiz/internal/service"),
	}
}

// Generate builds the prompt for text, asks the model and parses its reply.
// Identical prompts are answered from the cache when one is configured.
func (s *QuestionService) Generate(ctx context.Context, text string) (domain.QuestionSet, error) {
	ctx, span := s.tracer.Start(ctx, "QuestionService.Generate")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	prompt := quiz.BuildPrompt(text)
	key := cacheKey(prompt)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("question cache lookup failed", zap.Error(err))
		} else if cached != nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	raw, err := s.model.Generate(callCtx, prompt)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("question model call failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	result := quiz.Parse(raw)
	if result.Kind != quiz.Valid {
		s.logger.Warn("model returned malformed question set",
			zap.String("reason", result.Reason),
			zap.Int("raw_length", len(raw)),
		)
		return nil, fmt.Errorf("%w: %s", ErrMalformedOutput, result.Reason)
	}

	span.SetAttributes(attribute.Int("questions.count", len(result.Questions)))
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result.Questions, s.cacheTTL); err != nil {
			s.logger.Warn("question cache store failed", zap.Error(err))
		}
	}
	return result.Questions, nil
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
