package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cacheadapter "github.com/smallbiznis/prepquiz/internal/adapter/cache"
	"github.com/smallbiznis/prepquiz/internal/adapter/model"
	"github.com/smallbiznis/prepquiz/internal/bootstrap"
	"github.com/smallbiznis/prepquiz/internal/config"
	httptransport "github.com/smallbiznis/prepquiz/internal/http"
	"github.com/smallbiznis/prepquiz/internal/http/handler"
	httpmiddleware "github.com/smallbiznis/prepquiz/internal/http/middleware"
	"github.com/smallbiznis/prepquiz/internal/jwt"
	"github.com/smallbiznis/prepquiz/internal/password"
	"github.com/smallbiznis/prepquiz/internal/pdf"
	"github.com/smallbiznis/prepquiz/internal/repository"
	"github.com/smallbiznis/prepquiz/internal/server"
	"github.com/smallbiznis/prepquiz/internal/service"
	"github.com/smallbiznis/prepquiz/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newUserRepository,
			newQuestionCache,
			newHasher,
			newTokenIssuer,
			newModel,
			newExtractor,
			newRateLimiter,
			httpmiddleware.NewMetrics,
			service.NewAuthService,
			service.NewQuestionService,
			handler.NewAuthHandler,
			handler.NewQuestionHandler,
			handler.NewHealthHandler,
			httpmiddleware.NewAuth,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, bootstrap.EnsureSeedUser, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func newUserRepository(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (repository.UserRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StorePostgres:
		return newPostgresUserRepository(ctx, lc, cfg, logger)
	default:
		return newMongoUserRepository(ctx, lc, cfg, logger)
	}
}

func newMongoUserRepository(ctx context.Context, lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (repository.UserRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	repo := repository.NewMongoUserRepo(client.Database(cfg.MongoDatabase).Collection(repository.UsersCollection))
	if err := repo.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	logger.Info("user store ready", zap.String("driver", config.StoreMongo), zap.String("database", cfg.MongoDatabase))
	return repo, nil
}

func newPostgresUserRepository(ctx context.Context, lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (repository.UserRepository, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := repository.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	logger.Info("user store ready", zap.String("driver", config.StorePostgres))
	return repository.NewPostgresUserRepo(pool), nil
}

func newQuestionCache(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (repository.QuestionCache, error) {
	if cfg.RedisAddr == "" {
		logger.Info("question cache disabled")
		return cacheadapter.NoopQuestionCache{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return cacheadapter.NewRedisQuestionCache(client), nil
}

func newHasher() *password.Hasher {
	return password.NewHasher(password.DefaultParams)
}

func newTokenIssuer(cfg config.Config) (*jwt.Issuer, error) {
	return jwt.NewIssuer(jwt.Options{
		Issuer:  cfg.ServiceName,
		Access:  jwt.KeyConfig{Secret: []byte(cfg.AccessTokenSecret), TTL: cfg.AccessTokenTTL},
		Refresh: jwt.KeyConfig{Secret: []byte(cfg.RefreshTokenSecret), TTL: cfg.RefreshTokenTTL},
	})
}

func newModel(cfg config.Config) (model.Model, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return model.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
}

func newExtractor() pdf.Extractor {
	return pdf.NewTextExtractor()
}

func newRateLimiter(cfg config.Config, metrics *httpmiddleware.Metrics) *httpmiddleware.RateLimiter {
	return httpmiddleware.NewRateLimiter(cfg.RateLimitRPM, metrics)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
