// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package demo walks a stack through every operation and narrates the
// results.
package demo

import (
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/linkstack/linkstack/internal/stack"
	"github.com/pkg/errors"
)

func traverse(w io.Writer, s *stack.Stack) {
	if s == nil {
		fmt.Fprintln(w, "Stack is NULL")
		return
	}
	fmt.Fprint(w, "Stack elements: ")
	for v := range s.All() {
		fmt.Fprintf(w, "%d ", v)
	}
	fmt.Fprintln(w)
}

// Run pushes 20, 10 and 30 onto s, pops one, searches, peeks, and then
// drains and destroys the stack, writing each step to w.  A nil s is
// reported rather than treated as an error.
func Run(w io.Writer, s *stack.Stack) error {
	for _, v := range []int{20, 10, 30} {
		if err := s.Push(v); err != nil {
			if errors.Cause(err) == stack.ErrNilStack {
				glog.V(1).Infof("demo on nil stack: %s", err)
				break
			}
			return err
		}
	}

	fmt.Fprintln(w, "After pushing elements:")
	traverse(w, s)

	if v, ok := s.Pop(); ok {
		fmt.Fprintf(w, "Popped value: %d\n", v)
	}

	fmt.Fprintln(w, "After popping an element:")
	traverse(w, s)

	if s.SearchByValue(20) != nil {
		fmt.Fprintln(w, "Element with value 20 found.")
	} else {
		fmt.Fprintln(w, "Element with value 20 not found.")
	}

	if n := s.TopNode(); n != nil {
		fmt.Fprintf(w, "Top element: %d\n", n.Value())
	}
	fmt.Fprintf(w, "Peek top element: %d\n", s.Top())

	for !s.IsEmpty() {
		v, _ := s.Pop()
		fmt.Fprintf(w, "Cleaning: popped %d\n", v)
	}

	s.Destroy()
	return nil
}
