// Package app wires storage, cache and services for the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"scriptdesk/internal/cache"
	"scriptdesk/internal/config"
	"scriptdesk/internal/database"
	"scriptdesk/internal/domain/repositories"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	librarySvc "scriptdesk/internal/domain/services/library"
	"scriptdesk/internal/repository/memory"
	"scriptdesk/internal/repository/postgres"
	postgresLibrary "scriptdesk/internal/repository/postgres/library"
	serviceLibrary "scriptdesk/internal/service/library"
)

// Services holds every library service plus the storage handles behind them
type Services struct {
	Projects librarySvc.ProjectService
	Folders  librarySvc.FolderService
	Scripts  librarySvc.ScriptService
	Audit    librarySvc.AuditService

	// Pool is nil for the in-memory backend
	Pool *pgxpool.Pool

	redis *redis.Client
}

// Options controls optional setup steps
type Options struct {
	// Migrate applies pending migrations after connecting (postgres only)
	Migrate bool
	// SkipCache leaves the report cache disabled even when REDIS_ADDR is set
	SkipCache bool
}

// Setup connects the configured backend and builds the services.
// Callers must Close the result.
func Setup(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (*Services, error) {
	s := &Services{}

	var (
		projectRepo libraryRepo.ProjectRepository
		scriptRepo  libraryRepo.ScriptRepository
		txManager   repositories.TransactionManager
	)

	switch cfg.StorageBackend {
	case config.StorageMemory:
		store := memory.NewStore()
		projectRepo = memory.NewProjectRepository(store)
		scriptRepo = memory.NewScriptRepository(store)
		txManager = memory.NewTransactionManager(store)
		logger.Warn("using in-memory storage, data is lost on exit")
	case config.StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the %s backend", config.StoragePostgres)
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.Pool = pool
		logger.Info("database connected", "max_conns", pool.Config().MaxConns, "table_prefix", cfg.TablePrefix)

		if opts.Migrate {
			if err := database.Migrate(ctx, pool, cfg.TablePrefix, logger); err != nil {
				s.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		projectRepo = postgresLibrary.NewProjectRepository(repoConfig)
		scriptRepo = postgresLibrary.NewScriptRepository(repoConfig)
		txManager = postgres.NewTransactionManager(pool, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	reportCache := cache.NewNoop()
	if cfg.RedisAddr != "" && !opts.SkipCache {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			// The cache is an optimization; run without it
			logger.Warn("report cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			s.redis = client
			reportCache = cache.NewReportCache(client, cfg.ReportCacheTTL, logger)
		}
	}

	coordinator := serviceLibrary.NewCoordinator(projectRepo, scriptRepo, reportCache, logger)
	s.Projects = serviceLibrary.NewProjectService(projectRepo, txManager, coordinator, logger)
	s.Folders = serviceLibrary.NewFolderService(projectRepo, coordinator, logger)
	s.Scripts = serviceLibrary.NewScriptService(projectRepo, scriptRepo, coordinator, serviceLibrary.NewContentAnalyzer(), logger)
	s.Audit = serviceLibrary.NewAuditService(projectRepo, scriptRepo, txManager, coordinator, reportCache, logger)

	return s, nil
}

// Close releases the database pool and the Redis client
func (s *Services) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
}
