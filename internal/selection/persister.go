package selection

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	pkgredis "github.com/angelmondragon/discountsync/pkg/redis"
)

// MemoryPersister keeps the last selection for the lifetime of the process.
type MemoryPersister struct {
	mu    sync.Mutex
	scope int64
	ok    bool
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load(context.Context) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scope, m.ok, nil
}

func (m *MemoryPersister) Save(_ context.Context, scope int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scope, m.ok = scope, true
	return nil
}

func (m *MemoryPersister) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scope, m.ok = 0, false
	return nil
}

type keyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SelectionKey(contextName string) string
}

// RedisPersister stores the last selected scope id under a namespaced key.
type RedisPersister struct {
	store keyValueStore
	key   string
	ttl   time.Duration
}

// NewRedisPersister binds a persister to the selection kind name.
func NewRedisPersister(store keyValueStore, name string, ttl time.Duration) *RedisPersister {
	return &RedisPersister{store: store, key: store.SelectionKey(name), ttl: ttl}
}

func (r *RedisPersister) Load(ctx context.Context) (int64, bool, error) {
	raw, err := r.store.Get(ctx, r.key)
	if errors.Is(err, pkgredis.ErrNil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	scope, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// unreadable value, treat as no selection
		return 0, false, nil
	}
	return scope, true, nil
}

func (r *RedisPersister) Save(ctx context.Context, scope int64) error {
	return r.store.Set(ctx, r.key, strconv.FormatInt(scope, 10), r.ttl)
}

func (r *RedisPersister) Clear(ctx context.Context) error {
	return r.store.Del(ctx, r.key)
}
