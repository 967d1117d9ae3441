package app

import (
	"context"
	"log/slog"
	"time"
	"todosome/internal/api/mail"
	httpapp "todosome/internal/app/http"
	"todosome/internal/config"
	"todosome/internal/lib/jwt"
	"todosome/internal/services/access"
	"todosome/internal/services/auth"
	authinterfaces "todosome/internal/services/auth/interfaces"
	"todosome/internal/services/tasks"
	tasksinterfaces "todosome/internal/services/tasks/interfaces"
	"todosome/internal/services/verification"
	verificationinterfaces "todosome/internal/services/verification/interfaces"
	"todosome/internal/storage/cached_postgres"
	"todosome/internal/storage/memory"
	"todosome/internal/storage/postgres"
	"todosome/internal/storage/protected"
	"todosome/internal/storage/redis"
)

const startupTimeout = 30 * time.Second

// Storage is implemented by both postgres and memory storages
type Storage interface {
	authinterfaces.UserStorage
	authinterfaces.UserProvider
	authinterfaces.ProfileProvider
	verificationinterfaces.VerificationStorage
	verificationinterfaces.VerificationProvider
	tasksinterfaces.TaskStorage
	tasksinterfaces.TaskProvider
	Ping(ctx context.Context) error
}

type App struct {
	HTTPSrv *httpapp.App
	log     *slog.Logger
	closers []func()
}

// New wires storages and services, it panics if any dependency is unreachable
func New(
	log *slog.Logger,
	cfg *config.Config,
) *App {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	a := &App{log: log}

	storage := a.mustStorage(ctx, cfg)

	var (
		userStorage     authinterfaces.UserStorage     = storage
		profileProvider authinterfaces.ProfileProvider = storage
	)
	if cfg.Redis.Enabled {
		cache, err := redis.NewCache(ctx, &cfg.Redis)
		if err != nil {
			panic(err)
		}
		a.closers = append(a.closers, func() { _ = cache.Close() })
		cachedStorage := cached_postgres.NewCachedStorage(log, storage, cache)
		userStorage = cachedStorage
		profileProvider = cachedStorage
	}

	tokenProvider, err := jwt.New(mustJWTSecret(ctx, log, cfg), cfg.TokenTTL)
	if err != nil {
		panic(err)
	}

	mailer, err := mail.New(log, cfg.Mail)
	if err != nil {
		panic(err)
	}
	a.closers = append(a.closers, func() { _ = mailer.Close() })

	verificationService := verification.New(log, storage, storage)
	authService := auth.New(
		log,
		userStorage,
		storage,
		profileProvider,
		verificationService,
		mailer,
		tokenProvider,
		cfg.Mail.Timeout,
	)
	accessService := access.New(log, tokenProvider)
	tasksService := tasks.New(log, storage, storage)

	a.HTTPSrv = httpapp.New(cfg.Env, log, cfg.HTTP, authService, tasksService, accessService, storage)
	return a
}

// mustStorage opens postgres, memory storage is allowed only for local env without storage path
func (a *App) mustStorage(ctx context.Context, cfg *config.Config) Storage {
	if cfg.StoragePath == "" && cfg.Env == config.EnvLocal {
		a.log.Warn("storage path is empty, using in-memory storage")
		return memory.New()
	}
	storage, err := postgres.New(ctx, cfg.StoragePath)
	if err != nil {
		panic(err)
	}
	a.closers = append(a.closers, storage.CloseStorage)
	return storage
}

// mustJWTSecret reads secret from Vault if it's configured, else from config
func mustJWTSecret(ctx context.Context, log *slog.Logger, cfg *config.Config) string {
	if cfg.Vault.Address == "" {
		return cfg.JWT.Secret
	}
	v, err := protected.NewVaultClient(log, cfg.Vault)
	if err != nil {
		panic(err)
	}
	if err = v.AuthUser(ctx); err != nil {
		panic(err)
	}
	secret, err := v.JWTSecret(ctx)
	if err != nil {
		panic(err)
	}
	return secret
}

// Stop stops HTTP server and releases connections
func (a *App) Stop() {
	a.HTTPSrv.Stop()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
