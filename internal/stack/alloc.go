// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package stack

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ErrAlloc is returned when an Allocator cannot supply another node.
var ErrAlloc = errors.New("node allocation failed")

// Allocator supplies and reclaims the nodes of a Stack.  Every node returned
// by Alloc is passed to Free exactly once.
type Allocator interface {
	// Alloc returns a node holding value and linked to next.
	Alloc(value int, next *Node) (*Node, error)
	// Free takes back a node that is no longer reachable from any stack.
	Free(n *Node)
}

var heap Allocator = heapAllocator{}

// heapAllocator allocates every node individually and leaves reclamation to
// the garbage collector.
type heapAllocator struct{}

func (heapAllocator) Alloc(value int, next *Node) (*Node, error) {
	return &Node{value: value, next: next}, nil
}

func (heapAllocator) Free(n *Node) {
	n.next = nil
}

const defaultChunkSize = 256

// Arena carves nodes out of fixed size chunks and keeps released nodes on a
// free list for reuse, so a stack that grows and shrinks repeatedly stops
// allocating once it has reached its high water mark.
type Arena struct {
	chunkSize int
	limit     int // zero means unlimited

	chunk []Node // unused tail of the current chunk
	free  *Node  // free list, threaded through next
	live  int
	total int // nodes ever carved from chunks
}

// ArenaOption configures an Arena.
type ArenaOption func(*Arena)

// ArenaChunkSize sets how many nodes are allocated together when the free
// list runs dry.
func ArenaChunkSize(n int) ArenaOption {
	return func(a *Arena) {
		if n > 0 {
			a.chunkSize = n
		}
	}
}

// ArenaLimit caps the number of nodes that may be live at once.  Alloc fails
// with ErrAlloc beyond it.
func ArenaLimit(n int) ArenaOption {
	return func(a *Arena) {
		if n > 0 {
			a.limit = n
		}
	}
}

// NewArena returns an empty Arena.
func NewArena(opts ...ArenaOption) *Arena {
	a := &Arena{chunkSize: defaultChunkSize}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Alloc implements Allocator.
func (a *Arena) Alloc(value int, next *Node) (*Node, error) {
	if a.limit > 0 && a.live >= a.limit {
		return nil, errors.Wrapf(ErrAlloc, "arena limit of %d nodes reached", a.limit)
	}
	var n *Node
	switch {
	case a.free != nil:
		n = a.free
		a.free = n.next
	default:
		if len(a.chunk) == 0 {
			size := a.chunkSize
			if a.limit > 0 && a.limit-a.total < size {
				size = a.limit - a.total
			}
			glog.V(2).Infof("arena: new chunk of %d nodes", size)
			a.chunk = make([]Node, size)
			a.total += size
		}
		n = &a.chunk[0]
		a.chunk = a.chunk[1:]
	}
	n.value = value
	n.next = next
	a.live++
	return n, nil
}

// Free implements Allocator.
func (a *Arena) Free(n *Node) {
	n.value = 0
	n.next = a.free
	a.free = n
	a.live--
}

// Live returns the number of nodes handed out and not yet freed.
func (a *Arena) Live() int {
	return a.live
}

// Capacity returns the number of nodes the arena has carved from chunks so
// far, live or free.
func (a *Arena) Capacity() int {
	return a.total
}
