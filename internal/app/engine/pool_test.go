package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goalbridge/internal/domain/framework"
	"goalbridge/internal/observability"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestPool(t *testing.T, store *fakeStore, clock *testClock) *Pool {
	t.Helper()
	pool, err := NewPool(Deps{
		Configurations: store,
		Rules:          store,
		Metrics:        store,
		Audit:          store,
		Now:            clock.Now,
	}, PoolConfig{Size: 2, TTL: time.Minute}, observability.NewPoolMetricsWithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	return pool
}

func TestPoolCachesInitializedEngines(t *testing.T) {
	store := &fakeStore{config: &framework.Configuration{GoalFramework: framework.KindOKR}}
	clock := &testClock{now: fixedNow}
	pool := newTestPool(t, store, clock)

	first, err := pool.Get(context.Background(), "org-1", "")
	require.NoError(t, err)
	second, err := pool.Get(context.Background(), "org-1", "")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "org-1", first.OrganizationID())
	assert.Equal(t, 1, store.configLoads)
	assert.Equal(t, 1, pool.Len())

	other, err := pool.Get(context.Background(), "org-1", "dept-1")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, store.configLoads)
}

func TestPoolExpiresEntries(t *testing.T) {
	store := &fakeStore{}
	clock := &testClock{now: fixedNow}
	pool := newTestPool(t, store, clock)

	first, err := pool.Get(context.Background(), "org-1", "")
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	second, err := pool.Get(context.Background(), "org-1", "")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, store.configLoads)
}

func TestPoolInvalidate(t *testing.T) {
	store := &fakeStore{}
	pool := newTestPool(t, store, &testClock{now: fixedNow})

	_, err := pool.Get(context.Background(), "org-1", "")
	require.NoError(t, err)
	_, err = pool.Get(context.Background(), "org-2", "")
	require.NoError(t, err)
	require.Equal(t, 2, pool.Len())

	pool.Invalidate("org-1")
	assert.Equal(t, 1, pool.Len())
}

func TestPoolBareEngineForAnonymousCallers(t *testing.T) {
	store := &fakeStore{}
	pool := newTestPool(t, store, &testClock{now: fixedNow})

	e, err := pool.Get(context.Background(), "", "")
	require.NoError(t, err)
	assert.Same(t, pool.Bare(), e)
	assert.Zero(t, store.configLoads)
}

func TestPoolDrainCoversPooledEngines(t *testing.T) {
	store := &fakeStore{}
	pool := newTestPool(t, store, &testClock{now: fixedNow})

	e, err := pool.Get(context.Background(), "org-1", "")
	require.NoError(t, err)
	_, err = e.TranslateObjective(context.Background(), keyResult(), "okr", TranslateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Drain(ctx))
	records, _ := store.recorded()
	assert.Len(t, records, 1)
}

// cancellableStore fails configuration loads once ctx is done.
type cancellableStore struct {
	*fakeStore
}

func (s cancellableStore) ActiveConfiguration(ctx context.Context, organizationID, departmentID string) (*framework.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.fakeStore.ActiveConfiguration(ctx, organizationID, departmentID)
}

func TestPoolInitializeOutlivesCallerContext(t *testing.T) {
	store := cancellableStore{&fakeStore{config: &framework.Configuration{GoalFramework: framework.KindEOS}}}
	pool, err := NewPool(Deps{
		Configurations: store,
		Rules:          store,
		Metrics:        store,
		Audit:          store,
		Now:            (&testClock{now: fixedNow}).Now,
	}, PoolConfig{Size: 2, TTL: time.Minute, InitTimeout: time.Second}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e, err := pool.Get(ctx, "org-1", "")
	require.NoError(t, err)
	assert.Equal(t, "org-1", e.OrganizationID())
	assert.Equal(t, 1, pool.Len())
}
