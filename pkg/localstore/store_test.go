package localstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/webmarket/pkg/config"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, KeyCart)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyCart, []byte(`{"lines":[]}`)))
	got, err := store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[]}`, string(got))

	require.NoError(t, store.Set(ctx, KeyCart, []byte(`{"lines":[{"productId":1}]}`)))
	got, err = store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[{"productId":1}]}`, string(got))

	require.NoError(t, store.Set(ctx, KeyUser, []byte(`{"id":1}`)))
	require.NoError(t, store.Delete(ctx, KeyCart))
	_, err = store.Get(ctx, KeyCart)
	require.ErrorIs(t, err, ErrNotFound)

	got, err = store.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(got))

	require.NoError(t, store.Delete(ctx, "never-written"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemory()
	value := []byte("abc")
	require.NoError(t, store.Set(context.Background(), "k", value))
	value[0] = 'z'

	got, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	store, err := OpenSQLite(context.Background(), path, "default")
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	first, err := OpenSQLite(ctx, path, "default")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyCart, []byte("persisted")))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path, "default")
	require.NoError(t, err)
	defer second.Close()
	got, err := second.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))

	other, err := OpenSQLite(ctx, path, "other")
	require.NoError(t, err)
	defer other.Close()
	_, err = other.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNotFound, "namespaces must not share entries")
}

func TestRedisStore(t *testing.T) {
	backend := newFakeRedis()
	exerciseStore(t, NewRedis(backend, "default"))

	_, ok := backend.data["wm-test:default:user"]
	assert.True(t, ok, "expected namespaced key, got %v", backend.data)
}

func TestRedisStorePropagatesErrors(t *testing.T) {
	backend := newFakeRedis()
	backend.err = errors.New("connection refused")
	_, err := NewRedis(backend, "default").Get(context.Background(), KeyCart)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, &config.StorefrontConfig{Store: config.LocalStoreMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, store)

	store, err = Open(ctx, &config.StorefrontConfig{
		Store:     config.LocalStoreSQLite,
		StorePath: filepath.Join(t.TempDir(), "nested", "store.db"),
		Namespace: "default",
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, &config.StorefrontConfig{Store: "etcd"}, nil)
	require.Error(t, err)

	_, err = Open(ctx, nil, nil)
	require.Error(t, err)
}

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeRedis) LocalStoreKey(namespace, key string) string {
	return "wm-test:" + namespace + ":" + key
}

func (f *fakeRedis) Close() error { return nil }
