// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Command stackdemo pushes a few values onto a stack and narrates each
// operation.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/linkstack/linkstack/internal/demo"
	"github.com/linkstack/linkstack/internal/stack"
)

var (
	useArena = flag.Bool("arena", false, "Allocate stack nodes from a free-list arena instead of the heap.")
	nilStack = flag.Bool("nil_stack", false, "Run the demo against an absent stack.")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	var s *stack.Stack
	switch {
	case *nilStack:
	case *useArena:
		s = stack.New(stack.WithAllocator(stack.NewArena()))
	default:
		s = stack.New()
	}
	if err := demo.Run(os.Stdout, s); err != nil {
		glog.Exit(err)
	}
}
