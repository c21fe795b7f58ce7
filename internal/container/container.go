package container

import (
	"context"

	"gov-be/internal/config"
	"gov-be/internal/repository"
	"gov-be/internal/service"
	"gov-be/pkg/database"
	"gov-be/pkg/logger"
	"gov-be/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	Repositories *repository.Repositories
	Services     *service.Services
}

// New creates a new dependency injection container. Redis is optional: when
// unavailable the services run straight against storage.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without caching")
	}

	repos := &repository.Repositories{
		Member:   repository.NewMemberRepository(db),
		Action:   repository.NewActionRepository(db),
		Election: repository.NewElectionRepository(db),
	}

	notifier := service.NewLogNotifier(logger.Logger)
	executor := service.NewRelayExecutor(cfg.ExecutorURL, logger.Logger)

	entitlements := service.NewEntitlementService(repos.Member, redisClient, logger.Logger)
	actions := service.NewActionService(
		repos.Action,
		repos.Member,
		entitlements,
		executor,
		notifier,
		redisClient,
		logger.Logger,
		cfg.DefaultApprovalThreshold,
		cfg.ExecutionTimeout,
	)
	elections := service.NewElectionService(repos.Election, entitlements, notifier, redisClient, logger.Logger)

	services := &service.Services{
		Entitlements: entitlements,
		Actions:      actions,
		Elections:    elections,
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		RedisClient:  redisClient,
		Repositories: repos,
		Services:     services,
	}, nil
}

// GetEntitlementRegistry returns the entitlement registry
func (c *Container) GetEntitlementRegistry() service.EntitlementRegistry {
	return c.Services.Entitlements
}

// GetActionQueue returns the action queue
func (c *Container) GetActionQueue() service.ActionQueue {
	return c.Services.Actions
}

// GetElectionEngine returns the election engine
func (c *Container) GetElectionEngine() service.ElectionEngine {
	return c.Services.Elections
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetDB returns the database connection pool
func (c *Container) GetDB() *database.PostgresDB {
	return c.DB
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
