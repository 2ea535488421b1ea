package vision

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultPoolSize bounds concurrent upstream model calls.
	DefaultPoolSize = 4
	AcquireTimeout  = 30 * time.Second
)

// SlotPool bounds how many vision-model calls may be in flight at once.
// The Gemini client itself is safe for concurrent use; the pool exists to
// keep a burst of uploads from fanning out into unbounded upstream spend.
type SlotPool struct {
	slots   chan struct{}
	size    int
	mu      sync.Mutex
	closed  bool
	metrics *PoolMetrics
}

type PoolMetrics struct {
	mu              sync.RWMutex
	inUse           int
	totalAcquired   int64
	totalReleased   int64
	acquireFailures int64
	waitTime        time.Duration
}

// MetricsSnapshot is a copyable view of the pool counters for the
// monitoring route.
type MetricsSnapshot struct {
	PoolSize        int           `json:"pool_size"`
	InUse           int           `json:"slots_in_use"`
	TotalAcquired   int64         `json:"total_acquired"`
	TotalReleased   int64         `json:"total_released"`
	AcquireFailures int64         `json:"acquire_failures"`
	WaitTime        time.Duration `json:"total_wait_ns"`
}

func NewSlotPool(size int) *SlotPool {
	if size <= 0 {
		size = DefaultPoolSize
	}

	pool := &SlotPool{
		slots:   make(chan struct{}, size),
		size:    size,
		metrics: &PoolMetrics{},
	}
	for i := 0; i < size; i++ {
		pool.slots <- struct{}{}
	}

	return pool
}

func (p *SlotPool) Acquire(ctx context.Context) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return fmt.Errorf("pool is closed")
	}

	start := time.Now()
	defer func() {
		p.metrics.mu.Lock()
		p.metrics.waitTime += time.Since(start)
		p.metrics.mu.Unlock()
	}()

	select {
	case <-p.slots:
		p.metrics.mu.Lock()
		p.metrics.inUse++
		p.metrics.totalAcquired++
		p.metrics.mu.Unlock()
		return nil
	case <-time.After(AcquireTimeout):
		p.metrics.mu.Lock()
		p.metrics.acquireFailures++
		p.metrics.mu.Unlock()
		return fmt.Errorf("timeout waiting for an analysis slot")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *SlotPool) Release() {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}

	p.metrics.mu.Lock()
	p.metrics.inUse--
	p.metrics.totalReleased++
	p.metrics.mu.Unlock()

	p.slots <- struct{}{}
}

// Close rejects further acquires. The slots channel is deliberately left
// open: a Release racing Close may still send its token back, which is
// harmless on a buffered channel but would panic on a closed one.
func (p *SlotPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
}

func (p *SlotPool) Snapshot() MetricsSnapshot {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()

	return MetricsSnapshot{
		PoolSize:        p.size,
		InUse:           p.metrics.inUse,
		TotalAcquired:   p.metrics.totalAcquired,
		TotalReleased:   p.metrics.totalReleased,
		AcquireFailures: p.metrics.acquireFailures,
		WaitTime:        p.metrics.waitTime,
	}
}

// Analyzer is the outbound capability this package implements.
type Analyzer interface {
	Analyze(ctx context.Context, instruction, imageDataURL string) (string, error)
}

// Limited wraps an analyzer so each upstream call first takes a pool slot.
// The pipeline stays unaware of the limiting.
type Limited struct {
	inner Analyzer
	pool  *SlotPool
}

func Limit(inner Analyzer, pool *SlotPool) *Limited {
	return &Limited{inner: inner, pool: pool}
}

func (l *Limited) Analyze(ctx context.Context, instruction, imageDataURL string) (string, error) {
	if err := l.pool.Acquire(ctx); err != nil {
		return "", err
	}
	defer l.pool.Release()

	return l.inner.Analyze(ctx, instruction, imageDataURL)
}
