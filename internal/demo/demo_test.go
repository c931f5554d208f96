// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package demo

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/linkstack/linkstack/internal/stack"
	"github.com/linkstack/linkstack/internal/testutil"
)

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	s := stack.New()
	testutil.FatalIfErr(t, Run(&buf, s))
	// Each traversed value is followed by a space, including the last.
	want := "After pushing elements:\n" +
		"Stack elements: 30 10 20 \n" +
		"Popped value: 30\n" +
		"After popping an element:\n" +
		"Stack elements: 10 20 \n" +
		"Element with value 20 found.\n" +
		"Top element: 10\n" +
		"Peek top element: 10\n" +
		"Cleaning: popped 10\n" +
		"Cleaning: popped 20\n"
	testutil.ExpectNoDiff(t, want, buf.String())
	if !s.IsEmpty() {
		t.Error("demo left the stack non-empty")
	}
}

func TestRunNilStack(t *testing.T) {
	var buf bytes.Buffer
	testutil.FatalIfErr(t, Run(&buf, nil))
	want := fmt.Sprintf(`After pushing elements:
Stack is NULL
After popping an element:
Stack is NULL
Element with value 20 not found.
Peek top element: %d
`, stack.EmptySentinel)
	testutil.ExpectNoDiff(t, want, buf.String())
}

func TestRunArenaFailure(t *testing.T) {
	var buf bytes.Buffer
	a := stack.NewArena(stack.ArenaLimit(2))
	err := Run(&buf, stack.New(stack.WithAllocator(a)))
	testutil.ExpectErrCause(t, err, stack.ErrAlloc)
	if buf.Len() != 0 {
		t.Errorf("output written before failure: %q", buf.String())
	}
	if !strings.Contains(err.Error(), "push 30") {
		t.Errorf("error %q does not name the failed push", err)
	}
}
