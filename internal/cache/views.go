// Package cache holds rendered storefront views until a catalog or
// configuration change invalidates them.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Minute

// View keys invalidated after every catalog or configuration mutation.
const (
	ViewAdminDashboard = "/admin/dashboard"
	ViewProducts       = "/productos"
	ViewHome           = "/"
)

// MutationViews are the three views every mutation invalidates.
var MutationViews = []string{ViewAdminDashboard, ViewProducts, ViewHome}

// ProductView is the detail page key for one product.
func ProductView(id int64) string {
	return ViewProducts + "/" + strconv.FormatInt(id, 10)
}

type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

type Views interface {
	Invalidator
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

type memEntry struct {
	body      []byte
	fetchedAt time.Time
}

// Memory is a process-local view cache with a fixed TTL.
type Memory struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]memEntry
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, entries: map[string]memEntry{}}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok || time.Since(e.fetchedAt) >= m.ttl {
		return nil, false
	}
	return e.body, true
}

func (m *Memory) Set(_ context.Context, key string, body []byte) {
	cp := append([]byte(nil), body...)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memEntry{body: cp, fetchedAt: time.Now()}
}

func (m *Memory) Invalidate(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}
