package query

import "sync"

// Handle is a stable reference to an interned value. Zero is never issued.
type Handle uint32

const NoHandle Handle = 0

func (h Handle) IsValid() bool { return h != NoHandle }

// Interner stores one canonical value per structural key. Values outlive any
// single generation: re-interning an equal value after Advance returns the
// same instance and handle.
type Interner[T any] struct {
	mu    sync.Mutex
	byKey map[string]Handle
	vals  []T // vals[h-1]
}

func NewInterner[T any]() *Interner[T] {
	return &Interner[T]{byKey: map[string]Handle{}}
}

// Intern returns the canonical value for key, calling build with the new
// handle the first time key is seen.
func (in *Interner[T]) Intern(key string, build func(h Handle) T) T {
	in.mu.Lock()
	defer in.mu.Unlock()
	if h, ok := in.byKey[key]; ok {
		return in.vals[h-1]
	}
	h := Handle(len(in.vals) + 1)
	v := build(h)
	in.vals = append(in.vals, v)
	in.byKey[key] = h
	return v
}

// Get resolves a handle issued by this interner.
func (in *Interner[T]) Get(h Handle) (T, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	var zero T
	if !h.IsValid() || int(h) > len(in.vals) {
		return zero, false
	}
	return in.vals[h-1], true
}

func (in *Interner[T]) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.vals)
}
