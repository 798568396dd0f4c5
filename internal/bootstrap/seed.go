package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/prepquiz/internal/config"
	"github.com/smallbiznis/prepquiz/internal/repository"
	"github.com/smallbiznis/prepquiz/internal/service"
)

// EnsureSeedUser registers the configured seed account on startup when it
// does not exist yet. Nothing happens when SEED_USER_EMAIL is unset.
func EnsureSeedUser(lc fx.Lifecycle, cfg config.Config, auth *service.AuthService, logger *zap.Logger) {
	if cfg.SeedUserEmail == "" {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureSeedUser(ctx, cfg, auth, logger)
		},
	})
}

func ensureSeedUser(ctx context.Context, cfg config.Config, auth *service.AuthService, logger *zap.Logger) error {
	name := cfg.SeedUserName
	if name == "" {
		name = "Admin"
	}

	created, err := auth.Signup(ctx, name, cfg.SeedUserEmail, cfg.SeedUserPassword)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap seed user: %w", err)
	}

	if logger != nil {
		logger.Info("bootstrap seed user created",
			zap.String("email", created.User.Email),
			zap.Int64("user_id", created.User.ID),
		)
	}
	return nil
}
