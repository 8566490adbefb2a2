// Package store provides the key-value persistence gateway. Saves are best
// effort: callers log failures and carry on with in-memory state.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/config"
)

// ErrKeyNotFound is returned by Get when the key has no value.
var ErrKeyNotFound = errors.New("key not found")

// KV is the persistence gateway contract: durable best-effort save/load of
// opaque blobs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open creates the KV backend selected by config.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (KV, error) {
	switch cfg.StorageBackend {
	case "redis":
		return NewRedisStore(cfg.RedisURL, cfg.KeyPrefix)
	case "postgres":
		return NewPostgresStore(ctx, cfg.DatabaseURL, cfg.KeyPrefix)
	case "memory":
		logger.Warn("using in-memory storage - session state will not survive restarts")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Key builders for the per-session persistence streams.

func ContentKey(sessionID string) string     { return "session:" + sessionID + ":content" }
func ChatKey(sessionID string) string        { return "session:" + sessionID + ":chat" }
func PreferencesKey(sessionID string) string { return "session:" + sessionID + ":prefs" }
func VersionsKey(sessionID string) string    { return "session:" + sessionID + ":versions" }
func MetaKey(sessionID string) string        { return "session:" + sessionID + ":meta" }
