// Package lookup resolves reference codes to values and back against a
// configurable backend.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownBackend is returned by Open for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown lookup backend")

// Backend names.
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendSQLServer = "sqlserver"
	BackendRedis     = "redis"
	BackendMongo     = "mongo"
)

// Backends lists every supported backend name.
var Backends = []string{
	BackendMemory, BackendSQLite, BackendPostgres, BackendSQLServer, BackendRedis, BackendMongo,
}

// TableName is the SQL table holding reference codes.
const TableName = "ref_codes"

// Entry is one reference code of a kind, e.g. kind "state", code "TX",
// value "Texas".
type Entry struct {
	Kind  string `json:"kind" bson:"kind"`
	Code  string `json:"code" bson:"code"`
	Value string `json:"value" bson:"value"`
}

// Lookup resolves reference codes.
type Lookup interface {
	// Value returns the value of code within kind.
	Value(ctx context.Context, kind, code string) (string, bool, error)
	// IsValid reports whether code exists for any kind.
	IsValid(ctx context.Context, code string) (bool, error)
	// Code returns the code whose value within kind equals value.
	Code(ctx context.Context, kind, value string) (string, bool, error)
	Close() error
}

// Backend is a Lookup that can also be loaded with entries. Put replaces the
// value of an existing (kind, code) pair.
type Backend interface {
	Lookup
	Put(ctx context.Context, entries []Entry) error
}

// Config selects and configures a backend.
type Config struct {
	Backend string `yaml:"backend" env:"WELLS_LOOKUP_BACKEND"`
	// DSN is the connection string or URI of SQL, Redis and Mongo backends.
	DSN string `yaml:"dsn" env:"WELLS_LOOKUP_DSN"`
	// Prefix namespaces Redis keys.
	Prefix string `yaml:"prefix" env:"WELLS_LOOKUP_PREFIX"`
	// Database and Collection locate Mongo documents.
	Database   string `yaml:"database" env:"WELLS_LOOKUP_DATABASE"`
	Collection string `yaml:"collection" env:"WELLS_LOOKUP_COLLECTION"`
	// Cache memoizes Value results.
	Cache bool `yaml:"cache" env:"WELLS_LOOKUP_CACHE"`
	// Codes preloads the memory backend, keyed by kind then code.
	Codes map[string]map[string]string `yaml:"codes"`
}

// DefaultConfig returns a cached in-memory lookup.
func DefaultConfig() Config {
	return Config{
		Backend:    BackendMemory,
		Prefix:     "refcodes",
		Database:   "wells",
		Collection: TableName,
		Cache:      true,
	}
}

// ValidateBackend returns ErrUnknownBackend for unsupported names.
func ValidateBackend(name string) error {
	if !slices.Contains(Backends, name) {
		return fmt.Errorf("%q: %w", name, ErrUnknownBackend)
	}
	return nil
}

// Open connects to the configured backend and verifies it is reachable. SQL
// and Mongo backends create their table or index when missing.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	if err := ValidateBackend(cfg.Backend); err != nil {
		return nil, err
	}
	if cfg.Backend != BackendMemory && cfg.DSN == "" {
		return nil, fmt.Errorf("%s lookup backend requires a dsn", cfg.Backend)
	}

	var (
		b   Backend
		err error
	)
	switch cfg.Backend {
	case BackendMemory:
		b = NewMemory(cfg.Codes)
	case BackendSQLite:
		b, err = OpenSQLite(ctx, cfg.DSN)
	case BackendSQLServer:
		b, err = OpenSQLServer(ctx, cfg.DSN)
	case BackendPostgres:
		b, err = OpenPostgres(ctx, cfg.DSN)
	case BackendRedis:
		b, err = OpenRedis(ctx, cfg.DSN, cfg.Prefix)
	case BackendMongo:
		b, err = OpenMongo(ctx, cfg.DSN, cfg.Database, cfg.Collection)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Cache {
		return NewCached(b), nil
	}
	return b, nil
}
