// Package container builds the application's shared components once at
// startup and hands out per-request repositories and use cases.
package container

import (
	"context"
	"errors"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/config"
	"github.com/oksasatya/medication-reminder/internal/application/usecase"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/identity"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/memory"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/notify"
	pginfra "github.com/oksasatya/medication-reminder/internal/infrastructure/postgres"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/remote"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/search"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/storage"
	"github.com/oksasatya/medication-reminder/pkg/helpers"
)

// Container holds the singletons shared by every request.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Pool      *pgxpool.Pool
	Redis     *redis.Client
	GCS       *gcs.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher

	JWT      *helpers.JWTManager
	Memory   *memory.Store
	Identity *identity.Service
	Profiles remote.ProfileStore
	Sessions identity.Sessions
	Files    repository.FileStorage
	Notifier *notify.Notifier
}

// Option adjusts a container built by NewMemory.
type Option func(*Container)

// WithStore replaces the in-memory store.
func WithStore(s *memory.Store) Option { return func(c *Container) { c.Memory = s } }

// WithFiles replaces the file storage.
func WithFiles(f repository.FileStorage) Option { return func(c *Container) { c.Files = f } }

// WithPublisher wires a job publisher into the notifier.
func WithPublisher(p notify.Publisher) Option {
	return func(c *Container) { c.Notifier = notify.New(p, c.Config, c.Logger) }
}

// NewMemory builds a container on the in-memory backend with no external
// services. Tests and local runs use it.
func NewMemory(cfg *config.Config, logger *logrus.Logger, opts ...Option) *Container {
	if logger == nil {
		logger = logrus.New()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
		JWT:    helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL),
		Memory: memory.New(),
		Files:  storage.NewMemory(cfg.PublicBaseURL),
	}
	c.Sessions = identity.NewTokenSessions(c.JWT, nil, logger)
	c.Notifier = notify.New(nil, cfg, logger)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New connects every configured service. Optional services (Redis,
// Elasticsearch, RabbitMQ, GCS) are skipped with a warning when they are
// not configured or unreachable; Postgres is required by its backend.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
		JWT:    helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL),
	}

	if rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pctx).Err()
		cancel()
		if err != nil {
			logger.WithError(err).Warn("redis unreachable; sessions and rate limits stay in process")
			_ = rdb.Close()
		} else {
			c.Redis = rdb
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch client init failed; search disabled")
		} else if err := search.EnsureIndex(ctx, es, cfg.ESMedicamentosIndex); err != nil {
			logger.WithError(err).Warn("elasticsearch index check failed; search disabled")
		} else {
			c.ES = es
		}
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; emails will not be queued")
		} else {
			c.RabbitPub = pub
		}
	}
	var pub notify.Publisher
	if c.RabbitPub != nil {
		pub = c.RabbitPub
	}
	c.Notifier = notify.New(pub, cfg, logger)

	if cfg.GCSBucket != "" {
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.GCS = client
		c.Files = storage.NewGCS(client, cfg.GCSBucket)
	} else {
		c.Files = storage.NewMemory(cfg.PublicBaseURL)
	}

	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Pool = pool
		c.Identity = identity.NewService(pginfra.NewAccountStore(pool), c.JWT, c.Redis, logger)
		c.Profiles = pginfra.NewProfileStore(pool)
		c.Sessions = c.Identity
	case config.BackendRemote:
		c.Identity = identity.NewService(identity.NewMemoryAccountStore(), c.JWT, c.Redis, logger)
		c.Profiles = remote.NewMemoryProfileStore()
		c.Memory = memory.New()
		c.Sessions = c.Identity
	default:
		c.Memory = memory.New()
		c.Sessions = identity.NewTokenSessions(c.JWT, c.Redis, logger)
	}
	return c, nil
}

// Close releases every connection the container opened.
func (c *Container) Close() {
	if c.RabbitPub != nil {
		c.RabbitPub.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}

var errNoBackend = errors.New("container: no user backend configured")

// UserRepository returns the user repository of the configured backend.
func (c *Container) UserRepository() (repository.UserRepository, error) {
	switch {
	case c.Identity != nil && c.Profiles != nil:
		return remote.NewUserRepository(c.Identity, c.Profiles, c.Logger), nil
	case c.Memory != nil:
		return c.Memory.Users(), nil
	}
	return nil, errNoBackend
}

// MedicamentoRepository returns userID's repository, wrapped with the search
// index when Elasticsearch is connected.
func (c *Container) MedicamentoRepository(userID string) (repository.MedicamentoRepository, error) {
	var repo repository.MedicamentoRepository
	switch {
	case c.Pool != nil:
		repo = pginfra.NewMedicamentoRepository(c.Pool, userID)
	case c.Memory != nil:
		repo = c.Memory.Medicamentos(userID)
	default:
		return nil, errNoBackend
	}
	if c.ES != nil {
		repo = search.NewIndexedMedicamentoRepository(repo, c.ES, c.Config.ESMedicamentosIndex, userID, c.Logger)
	}
	return repo, nil
}

func (c *Container) UserUseCases() (usecase.UserUseCases, error) {
	repo, err := c.UserRepository()
	if err != nil {
		return usecase.UserUseCases{}, err
	}
	return usecase.NewUserUseCases(repo), nil
}

func (c *Container) MedicamentoUseCases(userID string) (usecase.MedicamentoUseCases, error) {
	repo, err := c.MedicamentoRepository(userID)
	if err != nil {
		return usecase.MedicamentoUseCases{}, err
	}
	return usecase.NewMedicamentoUseCases(repo), nil
}

func (c *Container) UploadFile() *usecase.UploadFile {
	return usecase.NewUploadFile(c.Files)
}
