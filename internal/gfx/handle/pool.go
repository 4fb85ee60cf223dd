package handle

import (
	"errors"
	"fmt"
)

// Errors reported by Pool. The gfx package re-exports them so callers can
// match with errors.Is against either name.
var (
	ErrCapacity      = errors.New("handle pool capacity exhausted")
	ErrInvalidHandle = errors.New("invalid handle")
	ErrStaleHandle   = errors.New("stale handle")
)

const noFree = -1

type slot[Tag any, T any] struct {
	value      T
	handle     Handle[Tag] // invalid while free
	generation uint8       // generation the next allocation of this slot gets
	nextFree   int32
}

// Pool is a slot allocator. Slots are reused LIFO through a free list
// threaded through the storage array.
//
// Pool is not safe for concurrent use.
type Pool[Tag any, T any] struct {
	slots    []slot[Tag, T]
	freeHead int32
	live     int
	limit    int
}

// NewPool creates an empty pool limited only by the index space.
func NewPool[Tag any, T any]() *Pool[Tag, T] {
	return NewPoolWithLimit[Tag, T](0)
}

// NewPoolWithLimit creates a pool that never holds more than limit slots.
// A limit of zero or above MaxIndex+1 means the index space.
func NewPoolWithLimit[Tag any, T any](limit int) *Pool[Tag, T] {
	if limit <= 0 || limit > MaxIndex+1 {
		limit = MaxIndex + 1
	}
	return &Pool[Tag, T]{freeHead: noFree, limit: limit}
}

// Allocate returns a handle to a zero-initialized slot.
func (p *Pool[Tag, T]) Allocate() (Handle[Tag], error) {
	var index int
	if p.freeHead != noFree {
		index = int(p.freeHead)
		p.freeHead = p.slots[index].nextFree
	} else {
		if len(p.slots) >= p.limit {
			return Handle[Tag]{}, fmt.Errorf("%w: %d slots", ErrCapacity, p.limit)
		}
		index = len(p.slots)
		p.slots = append(p.slots, slot[Tag, T]{generation: 1})
	}

	s := &p.slots[index]
	var zero T
	s.value = zero
	s.handle = makeHandle[Tag](index, s.generation)
	s.nextFree = noFree
	p.live++
	return s.handle, nil
}

// Deallocate frees the slot owned by h. The pool is left unchanged when h is
// the sentinel or no longer owns its slot.
func (p *Pool[Tag, T]) Deallocate(h Handle[Tag]) error {
	s, err := p.slot(h)
	if err != nil {
		return err
	}
	var zero T
	s.value = zero
	s.handle = Handle[Tag]{}
	s.generation = nextGeneration(s.generation)
	s.nextFree = p.freeHead
	p.freeHead = int32(h.Index())
	p.live--
	return nil
}

// Get returns a pointer to the value owned by h. The pointer is valid until
// the next Allocate or Deallocate.
func (p *Pool[Tag, T]) Get(h Handle[Tag]) (*T, error) {
	s, err := p.slot(h)
	if err != nil {
		return nil, err
	}
	return &s.value, nil
}

// Contains reports whether h currently owns a live slot.
func (p *Pool[Tag, T]) Contains(h Handle[Tag]) bool {
	_, err := p.slot(h)
	return err == nil
}

// ForEach calls fn for every live slot in storage order. Returning false
// stops the iteration.
func (p *Pool[Tag, T]) ForEach(fn func(Handle[Tag], *T) bool) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.handle.IsValid() {
			continue
		}
		if !fn(s.handle, &s.value) {
			return
		}
	}
}

// Len returns the number of live slots.
func (p *Pool[Tag, T]) Len() int {
	return p.live
}

// Cap returns the size of the backing storage, live and free slots.
func (p *Pool[Tag, T]) Cap() int {
	return len(p.slots)
}

func (p *Pool[Tag, T]) slot(h Handle[Tag]) (*slot[Tag, T], error) {
	if !h.IsValid() {
		return nil, ErrInvalidHandle
	}
	i := h.Index()
	if i >= len(p.slots) || p.slots[i].handle != h {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return &p.slots[i], nil
}
