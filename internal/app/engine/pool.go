package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"goalbridge/internal/observability"
)

const (
	defaultPoolSize    = 256
	defaultPoolTTL     = 5 * time.Minute
	defaultInitTimeout = 10 * time.Second
)

// PoolConfig sizes the engine cache. InitTimeout bounds one shared
// Initialize call.
type PoolConfig struct {
	Size        int
	TTL         time.Duration
	InitTimeout time.Duration
}

type poolEntry struct {
	engine    *Engine
	expiresAt time.Time
}

// Pool caches initialized engines per organization and department so the
// configuration and rules are not reloaded on every request. Every engine it
// builds shares one audit tracker, so Drain covers all of them.
type Pool struct {
	deps    Deps
	ttl     time.Duration
	initTTL time.Duration
	cache   *lru.Cache[string, poolEntry]
	group   singleflight.Group
	metrics *observability.PoolMetrics
	bare    *Engine

	mu sync.Mutex
}

// NewPool builds a pool. metrics may be nil.
func NewPool(deps Deps, config PoolConfig, metrics *observability.PoolMetrics) (*Pool, error) {
	deps = deps.withDefaults()
	if config.Size <= 0 {
		config.Size = defaultPoolSize
	}
	if config.TTL <= 0 {
		config.TTL = defaultPoolTTL
	}
	if config.InitTimeout <= 0 {
		config.InitTimeout = defaultInitTimeout
	}
	p := &Pool{deps: deps, ttl: config.TTL, initTTL: config.InitTimeout, metrics: metrics}
	cache, err := lru.NewWithEvict[string, poolEntry](config.Size, func(string, poolEntry) {
		p.metrics.RecordEviction()
	})
	if err != nil {
		return nil, fmt.Errorf("create engine cache: %w", err)
	}
	p.cache = cache
	p.bare = New(deps)
	return p, nil
}

func poolKey(organizationID, departmentID string) string {
	return organizationID + "|" + departmentID
}

// Get returns an engine initialized for the organization and department.
// Concurrent misses for the same key share one Initialize call, which runs
// detached from ctx so one caller going away does not fail the others.
func (p *Pool) Get(ctx context.Context, organizationID, departmentID string) (*Engine, error) {
	if organizationID == "" {
		return p.bare, nil
	}
	key := poolKey(organizationID, departmentID)
	if entry, ok := p.cache.Get(key); ok {
		if p.deps.Now().Before(entry.expiresAt) {
			p.metrics.RecordHit()
			return entry.engine, nil
		}
		p.cache.Remove(key)
	}
	p.metrics.RecordMiss()

	v, err, _ := p.group.Do(key, func() (any, error) {
		initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.initTTL)
		defer cancel()
		engine := New(p.deps)
		if err := engine.Initialize(initCtx, organizationID, departmentID); err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.cache.Add(key, poolEntry{engine: engine, expiresAt: p.deps.Now().Add(p.ttl)})
		p.metrics.SetSize(p.cache.Len())
		p.mu.Unlock()
		return engine, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Engine), nil
}

// Bare returns the engine that is not bound to any organization.
func (p *Pool) Bare() *Engine { return p.bare }

// Invalidate drops every cached engine of the organization.
func (p *Pool) Invalidate(organizationID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefix := organizationID + "|"
	for _, key := range p.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			p.cache.Remove(key)
		}
	}
	p.metrics.SetSize(p.cache.Len())
}

// Len reports the number of cached engines.
func (p *Pool) Len() int { return p.cache.Len() }

// Drain waits for audit writes started by any pooled engine.
func (p *Pool) Drain(ctx context.Context) error {
	return p.deps.Tracker.Wait(ctx)
}
