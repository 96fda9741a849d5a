package query

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stoutes/chapel/internal/errors"
)

// Memo caches the results of one query kind, keyed by K.
type Memo[K comparable, V any] struct {
	name   string
	qc     *Context
	mu     sync.Mutex
	cells  map[K]*cell[V]
	builds atomic.Int64
}

type cell[V any] struct {
	done  chan struct{}
	owner *task
	val   V
	err   error
}

// NewMemo creates a memo table owned by qc. The name is used in logs and in
// cycle reports.
func NewMemo[K comparable, V any](qc *Context, name string) *Memo[K, V] {
	m := &Memo[K, V]{name: name, qc: qc, cells: map[K]*cell[V]{}}
	qc.register(m)
	return m
}

func (m *Memo[K, V]) queryName() string { return m.name }

func (m *Memo[K, V]) reset() {
	m.mu.Lock()
	m.cells = map[K]*cell[V]{}
	m.mu.Unlock()
}

// cellFor returns the cell for key and whether the caller created it.
func (m *Memo[K, V]) cellFor(key K, owner *task) (*cell[V], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.cells[key]; ok {
		return c, false
	}
	c := &cell[V]{done: make(chan struct{}), owner: owner}
	m.cells[key] = c
	return c, true
}

// Get returns the cached result for key, computing it with compute on the
// first request of the current generation. The result, including an error,
// is shared by every caller for the key.
//
// compute receives a context that records key as in progress. A key that
// depends on itself fails with an assertion error instead of deadlocking,
// whether the dependency loops back on the same goroutine or runs through
// queries in progress on other goroutines. compute must not share its
// context with goroutines that issue queries of their own.
func (m *Memo[K, V]) Get(ctx context.Context, key K, compute func(ctx context.Context) (V, error)) (V, error) {
	fr := frame{memo: m, key: key}
	if inProgress(ctx, fr) {
		var zero V
		return zero, m.cycle(key)
	}

	ctx, self := withTask(ctx)
	c, created := m.cellFor(key, self)
	if created {
		m.build(ctx, c, key, fr, compute)
		return c.val, c.err
	}

	if !m.qc.waitFor(self, c.owner, c.done) {
		var zero V
		return zero, m.cycle(key)
	}
	<-c.done
	m.qc.doneWaiting(self)
	return c.val, c.err
}

func (m *Memo[K, V]) build(ctx context.Context, c *cell[V], key K, fr frame, compute func(ctx context.Context) (V, error)) {
	defer close(c.done)
	defer func() {
		if r := recover(); r != nil {
			c.err = errors.AssertionFailedf("query %s panicked for key %v: %v", m.name, key, r)
		}
	}()
	m.builds.Add(1)
	m.qc.log.Debugw("query cache miss",
		"query", m.name,
		"key", key,
		"depth", depth(ctx),
		"generation", m.qc.Generation().Seq)
	c.val, c.err = compute(push(ctx, fr))
}

func (m *Memo[K, V]) cycle(key K) error {
	return errors.AssertionFailedf("query %s depends on its own result for key %v", m.name, key)
}

// Builds reports how many computations this memo has run since it was
// created, across generations.
func (m *Memo[K, V]) Builds() int64 { return m.builds.Load() }

// Len reports the number of keys cached in the current generation.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cells)
}
