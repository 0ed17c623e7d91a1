// Package ring provides a fixed-capacity circular queue that overwrites the
// oldest entry when full.
package ring

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCapacity is returned when the requested capacity is not a power of two.
var ErrCapacity = errors.New("capacity must be a power of two")

// Buffer is a fixed-capacity FIFO safe for one producer and one consumer
// running in different goroutines.
type Buffer[T any] struct {
	mu   sync.Mutex
	buf  []T
	mask uint64
	in   uint64 // free-running write index
	out  uint64 // free-running read index
}

// New returns an empty Buffer holding up to capacity entries.
func New[T any](capacity int) (*Buffer[T], error) {
	if capacity < 1 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("ring: %d: %w", capacity, ErrCapacity)
	}
	return &Buffer[T]{
		buf:  make([]T, capacity),
		mask: uint64(capacity - 1),
	}, nil
}

// Push stores v. If the buffer is full the oldest unread entry is discarded.
func (b *Buffer[T]) Push(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.in-b.out == uint64(len(b.buf)) {
		b.out++
	}
	b.buf[b.in&b.mask] = v
	b.in++
}

// Pop removes and returns the oldest entry. ok is false when empty.
func (b *Buffer[T]) Pop() (v T, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.in == b.out {
		return v, false
	}
	v = b.buf[b.out&b.mask]
	b.out++
	return v, true
}

// Len returns the number of unread entries.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.in - b.out)
}

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.buf)
}

// Flush discards all unread entries.
func (b *Buffer[T]) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out = b.in
}
