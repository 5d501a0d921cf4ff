// Package localstore is the storefront's durable key/value storage. The cart is
// kept under KeyCart and the signed-in session under KeyUser.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/angelmondragon/webmarket/pkg/config"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/angelmondragon/webmarket/pkg/redis"
)

const (
	KeyCart = "cart"
	KeyUser = "user"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("localstore: key not found")

// Store persists opaque values by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the store selected by the storefront configuration.
func Open(ctx context.Context, cfg *config.StorefrontConfig, logg *logger.Logger) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storefront config is required")
	}
	switch cfg.Store {
	case config.LocalStoreMemory:
		return NewMemory(), nil
	case config.LocalStoreRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("connecting redis local store: %w", err)
		}
		return NewRedis(client, cfg.Namespace), nil
	case config.LocalStoreSQLite, "":
		if dir := filepath.Dir(cfg.StorePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating local store dir %q: %w", dir, err)
			}
		}
		return OpenSQLite(ctx, cfg.StorePath, cfg.Namespace)
	default:
		return nil, fmt.Errorf("unknown local store %q", cfg.Store)
	}
}
