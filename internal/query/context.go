// Package query memoizes resolution queries for one compilation.
//
// A Context owns every Memo created against it. Each Memo maps a comparable
// key to the single result computed for it in the current generation: the
// first caller runs the computation, concurrent callers for the same key
// block until it finishes, and everyone observes the same value. Advance
// starts a new generation and drops every cached result at once, which is
// how an incremental rebuild invalidates the previous run.
package query

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stoutes/chapel/internal/logger"
)

// Generation identifies one lifetime of cached results.
type Generation struct {
	Seq uint64
	ID  uuid.UUID
}

type resettable interface {
	reset()
	queryName() string
}

type Context struct {
	mu    sync.RWMutex
	gen   Generation
	log   *zap.SugaredLogger
	memos []resettable

	waitMu sync.Mutex
	waits  map[*task]*task
}

type Option func(*Context)

// WithLogger routes query logging to l instead of the global logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

func NewContext(opts ...Option) *Context {
	c := &Context{
		gen:   Generation{Seq: 1, ID: uuid.New()},
		log:   logger.Named("query"),
		waits: map[*task]*task{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context) Generation() Generation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Advance discards every memoized result and starts a new generation.
func (c *Context) Advance() Generation {
	c.mu.Lock()
	prev := c.gen
	c.gen = Generation{Seq: prev.Seq + 1, ID: uuid.New()}
	memos := append([]resettable(nil), c.memos...)
	next := c.gen
	c.mu.Unlock()

	for _, m := range memos {
		m.reset()
	}
	c.log.Infow("query generation advanced",
		"from", prev.Seq,
		"to", next.Seq,
		"generation_id", next.ID.String(),
		"queries", len(memos))
	return next
}

func (c *Context) register(m resettable) {
	c.mu.Lock()
	c.memos = append(c.memos, m)
	c.mu.Unlock()
}

// Logger returns the logger queries report to.
func (c *Context) Logger() *zap.SugaredLogger { return c.log }
