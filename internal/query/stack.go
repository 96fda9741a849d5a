package query

import (
	"context"
	"sync/atomic"
)

// frame names one in-progress query computation.
type frame struct {
	memo any
	key  any
}

type stackKey struct{}

type stack struct {
	top  frame
	next *stack
}

func push(ctx context.Context, fr frame) context.Context {
	prev, _ := ctx.Value(stackKey{}).(*stack)
	return context.WithValue(ctx, stackKey{}, &stack{top: fr, next: prev})
}

func inProgress(ctx context.Context, fr frame) bool {
	for s, _ := ctx.Value(stackKey{}).(*stack); s != nil; s = s.next {
		if s.top == fr {
			return true
		}
	}
	return false
}

// depth reports how many query computations are in progress on ctx.
func depth(ctx context.Context) int {
	n := 0
	for s, _ := ctx.Value(stackKey{}).(*stack); s != nil; s = s.next {
		n++
	}
	return n
}

// A task is the chain of nested queries started by one top-level Get. It
// runs on a single goroutine, so it blocks on at most one cell at a time.
type task struct{ id uint64 }

type taskKey struct{}

var taskSeq atomic.Uint64

func withTask(ctx context.Context) (context.Context, *task) {
	if t, ok := ctx.Value(taskKey{}).(*task); ok {
		return ctx, t
	}
	t := &task{id: taskSeq.Add(1)}
	return context.WithValue(ctx, taskKey{}, t), t
}

// waitFor records that self is about to block until owner finishes the cell
// behind done. It fails when owner is already waiting, directly or through
// other tasks, on self: neither could ever finish.
func (c *Context) waitFor(self, owner *task, done <-chan struct{}) bool {
	c.waitMu.Lock()
	defer c.waitMu.Unlock()
	select {
	case <-done:
		return true
	default:
	}
	for t := owner; t != nil; t = c.waits[t] {
		if t == self {
			return false
		}
	}
	c.waits[self] = owner
	return true
}

func (c *Context) doneWaiting(self *task) {
	c.waitMu.Lock()
	delete(c.waits, self)
	c.waitMu.Unlock()
}
