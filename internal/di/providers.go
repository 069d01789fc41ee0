package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gochat/internal/chat/repository"
	"gochat/internal/common"
	"gochat/internal/config"
	"gochat/internal/dbmongo"
	"gochat/internal/dbmysql"
	"gochat/internal/server"
	"gochat/internal/user"
)

// Application is everything cmd/chat-api needs to serve.
type Application struct {
	Config *config.Config
	Logger *zap.Logger
	Server *server.HTTPServer
}

// Store groups the repositories of the configured backend.
type Store struct {
	Accounts user.AccountRepository
	Messages repository.ChatRepository
	Health   server.HealthChecker
}

func ProvideConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := common.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With(zap.String("environment", cfg.Server.Environment))
	restore := zap.ReplaceGlobals(logger)
	return logger, func() {
		_ = logger.Sync()
		restore()
	}, nil
}

func ProvideTokenManager(cfg *config.Config) *common.TokenManager {
	return common.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMins)*time.Minute)
}

func ProvidePasswordHasher(cfg *config.Config) *common.PasswordHasher {
	return common.NewPasswordHasher(cfg.Auth.BcryptCost)
}

// ProvideStore connects to the backend named by STORE_DRIVER.
func ProvideStore(cfg *config.Config, log *zap.Logger) (*Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, err := dbmongo.NewMongoConnection(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(ctx); err != nil {
				log.Warn("closing MongoDB", zap.Error(err))
			}
		}
		return &Store{
			Accounts: user.NewMongoAccountRepository(client.Database),
			Messages: repository.NewMongoChatRepository(client.Database),
			Health:   client,
		}, cleanup, nil

	case config.StoreMySQL:
		db, err := dbmysql.NewMySQL(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := dbmysql.Close(db); err != nil {
				log.Warn("closing MySQL", zap.Error(err))
			}
		}
		return &Store{
			Accounts: user.NewGormAccountRepository(db),
			Messages: repository.NewChatRepository(db),
			Health: server.HealthCheckFunc(func(ctx context.Context) error {
				return dbmysql.Ping(ctx, db)
			}),
		}, cleanup, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
}

func ProvideAccountRepository(s *Store) user.AccountRepository {
	return s.Accounts
}

func ProvideChatRepository(s *Store) repository.ChatRepository {
	return s.Messages
}

func ProvideHealthChecker(s *Store) server.HealthChecker {
	return s.Health
}
