package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"saldo/internal/ledger"
	"saldo/internal/ledger/gcs"
	"saldo/internal/ledger/memory"
	"saldo/internal/ledger/redisstore"
	"saldo/internal/lock"
	applog "saldo/internal/log"
	"saldo/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger.With(applog.FieldComponent, applog.ComponentBackend),
	}
}

// build collects what CreateBackend opens so a later failure can close it.
type build struct {
	redis    *redis.Client
	cleanups []CleanupFunc
}

func (b *build) onCleanup(fn CleanupFunc) {
	b.cleanups = append(b.cleanups, fn)
}

func (b *build) cleanup() error {
	var errs []error
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		if err := b.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	b := &build{}
	kv, err := f.createKV(ctx, config, b)
	if err != nil {
		_ = b.cleanup()
		return nil, err
	}
	locker, err := f.createLocker(ctx, config, b)
	if err != nil {
		_ = b.cleanup()
		return nil, err
	}

	f.logger.Info("Initialized ledger backend",
		applog.FieldBackend, config.Type.String(),
		"lock", string(config.Lock))

	return &Result{
		Store:   ledger.NewKVStore(kv),
		Locker:  locker,
		Cleanup: b.cleanup,
	}, nil
}

func (f *DefaultFactory) createKV(ctx context.Context, config Config, b *build) (ledger.KV, error) {
	switch config.Type {
	case MemoryBackend:
		dataDir := config.DataDirectory
		if dataDir == "" {
			dataDir = "data" // Default directory
		}
		f.logger.Info("Initialized memory backend", "data_directory", dataDir)
		return memory.NewFromFiles(dataDir), nil

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		b.onCleanup(repo.Close)
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil

	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(ctx, config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		b.onCleanup(repo.Close)
		f.logger.Info("Initialized Postgres backend")
		return repo, nil

	case RedisBackend:
		rdb, err := f.redisClient(ctx, config, b)
		if err != nil {
			return nil, err
		}
		f.logger.Info("Initialized Redis backend",
			"addr", config.RedisAddr,
			"prefix", config.RedisKeyPrefix)
		return redisstore.New(rdb, config.RedisKeyPrefix), nil

	case GCSBackend:
		store, err := gcs.New(ctx, config.GCSBucket, config.GCSPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS store: %w", err)
		}
		b.onCleanup(store.Close)
		f.logger.Info("Initialized GCS backend",
			"bucket", config.GCSBucket,
			"prefix", config.GCSPrefix)
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createLocker(ctx context.Context, config Config, b *build) (lock.Locker, error) {
	if config.Lock != RedisLock {
		return lock.NewLocal(), nil
	}
	rdb, err := f.redisClient(ctx, config, b)
	if err != nil {
		return nil, err
	}
	return lock.NewRedis(rdb, config.RedisKeyPrefix, config.LockTTL), nil
}

// redisClient connects once per build; the store and the lock share it.
func (f *DefaultFactory) redisClient(ctx context.Context, config Config, b *build) (*redis.Client, error) {
	if b.redis != nil {
		return b.redis, nil
	}
	rdb, err := redisstore.Connect(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	b.redis = rdb
	b.onCleanup(rdb.Close)
	return rdb, nil
}
