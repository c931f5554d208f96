// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package stack implements a LIFO stack of integers on a singly linked list.
//
// The Stack owns every Node in its chain.  Nodes are obtained from an
// Allocator on Push and handed back to it exactly once, either by Pop or by
// Destroy.  A nil *Stack is treated as an absent stack: every method accepts
// it and reports the empty result instead of panicking.
package stack

import (
	"expvar"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	pushesTotal        = expvar.NewInt("stack_pushes_total")
	pushErrorsTotal    = expvar.NewInt("stack_push_errors_total")
	popsTotal          = expvar.NewInt("stack_pops_total")
	emptyPopsTotal     = expvar.NewInt("stack_empty_pops_total")
	nodesReleasedTotal = expvar.NewInt("stack_nodes_released_total")
)

// EmptySentinel is returned by Top when there is no top value.  It is
// indistinguishable from a pushed math.MinInt; use Peek to tell them apart.
const EmptySentinel = math.MinInt

// ErrNilStack is returned when Push is called on an absent stack.
var ErrNilStack = errors.New("push to nil stack")

// Node is one element of the chain.  Nodes returned by TopNode and the
// Search methods are views owned by the Stack; they are valid only until
// the next Push, Pop, Init or Destroy.
type Node struct {
	value int
	next  *Node
}

// Value returns the payload of the node, or 0 for a nil node.
func (n *Node) Value() int {
	if n == nil {
		return 0
	}
	return n.value
}

// Next returns the node below n, or nil if n is the bottom of the stack.
func (n *Node) Next() *Node {
	if n == nil {
		return nil
	}
	return n.next
}

// Stack is a LIFO stack of integers.  The zero value is an empty stack that
// allocates nodes on the heap.
type Stack struct {
	top   *Node
	depth int
	alloc Allocator
}

// Option configures a Stack.
type Option func(*Stack)

// WithAllocator makes the Stack obtain and release its nodes through a.
func WithAllocator(a Allocator) Option {
	return func(s *Stack) {
		if a != nil {
			s.alloc = a
		}
	}
}

// New returns an empty Stack.
func New(opts ...Option) *Stack {
	s := &Stack{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stack) allocator() Allocator {
	if s.alloc == nil {
		s.alloc = heap
	}
	return s.alloc
}

// Init resets the stack to empty, releasing any nodes it still holds.
func (s *Stack) Init() {
	s.Destroy()
}

// Push places value on top of the stack.  If the allocator cannot supply a
// node the stack is left unchanged and the returned error wraps ErrAlloc.
func (s *Stack) Push(value int) error {
	if s == nil {
		return ErrNilStack
	}
	n, err := s.allocator().Alloc(value, s.top)
	if err != nil {
		pushErrorsTotal.Add(1)
		glog.V(1).Infof("push %d at depth %d failed: %s", value, s.depth, err)
		return errors.Wrapf(err, "push %d", value)
	}
	s.top = n
	s.depth++
	pushesTotal.Add(1)
	return nil
}

// Pop removes the top node and returns its value.  ok is false if the stack
// is empty or nil, in which case it is not modified.
func (s *Stack) Pop() (value int, ok bool) {
	if s == nil || s.top == nil {
		emptyPopsTotal.Add(1)
		return 0, false
	}
	n := s.top
	value = n.value
	s.top = n.next
	s.depth--
	s.allocator().Free(n)
	popsTotal.Add(1)
	nodesReleasedTotal.Add(1)
	return value, true
}

// Top returns the value on top of the stack, or EmptySentinel if there is
// none.
func (s *Stack) Top() int {
	if s == nil || s.top == nil {
		return EmptySentinel
	}
	return s.top.value
}

// Peek returns the value on top of the stack without removing it.
func (s *Stack) Peek() (value int, ok bool) {
	if s == nil || s.top == nil {
		return 0, false
	}
	return s.top.value, true
}

// TopNode returns the top node, or nil.
func (s *Stack) TopNode() *Node {
	if s == nil {
		return nil
	}
	return s.top
}

// IsEmpty reports whether the stack holds no nodes.  A nil stack is empty.
func (s *Stack) IsEmpty() bool {
	return s == nil || s.top == nil
}

// Len returns the number of nodes on the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return s.depth
}

// SearchByValue returns the topmost node holding value, or nil.
func (s *Stack) SearchByValue(value int) *Node {
	if s == nil {
		return nil
	}
	for n := s.top; n != nil; n = n.next {
		if n.value == value {
			return n
		}
	}
	return nil
}

// SearchByIndex returns the node at depth index, counting the top as 0.  It
// returns nil when index is negative or not less than Len.
func (s *Stack) SearchByIndex(index int) *Node {
	if s == nil || index < 0 || index >= s.depth {
		return nil
	}
	n := s.top
	for i := 0; i < index; i++ {
		n = n.next
	}
	return n
}

// All returns the values on the stack from top to bottom.  The sequence may
// be ranged over repeatedly; it must not be used across a mutation.
func (s *Stack) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		if s == nil {
			return
		}
		for n := s.top; n != nil; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

// String formats the values from top to bottom, like "[30 10 20]".
func (s *Stack) String() string {
	if s == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteByte('[')
	for n := s.top; n != nil; n = n.next {
		if n != s.top {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(n.value))
	}
	b.WriteByte(']')
	return b.String()
}

// Destroy releases every node on the stack and leaves it empty.  It is safe
// to call on an empty, nil or already destroyed stack.
func (s *Stack) Destroy() {
	if s == nil || s.top == nil {
		return
	}
	a := s.allocator()
	released := 0
	for n := s.top; n != nil; {
		next := n.next
		a.Free(n)
		n = next
		released++
	}
	s.top = nil
	s.depth = 0
	nodesReleasedTotal.Add(int64(released))
	glog.V(2).Infof("destroyed stack, released %d nodes", released)
}
