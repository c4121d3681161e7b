package backend

import (
	"context"
	"time"

	"saldo/internal/ledger"
	"saldo/internal/lock"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the ledger store, its lock and a cleanup function that
// releases every connection opened for them.
type Result struct {
	Store   ledger.Store
	Locker  lock.Locker
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType
	Lock LockType

	// Memory backend seed directory
	DataDirectory string

	// SQLite / Postgres
	SQLiteDBPath string
	PostgresDSN  string

	// Redis store and lock
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
	LockTTL        time.Duration

	// GCS
	GCSBucket string
	GCSPrefix string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	RedisBackend    BackendType = "redis"
	GCSBackend      BackendType = "gcs"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend, RedisBackend, GCSBackend:
		return true
	default:
		return false
	}
}

// LockType selects the ledger lock implementation.
type LockType string

const (
	LocalLock LockType = "local"
	RedisLock LockType = "redis"
)

func (lt LockType) IsValid() bool {
	return lt == LocalLock || lt == RedisLock
}
