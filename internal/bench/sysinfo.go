// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package bench

import (
	"runtime"
	"unsafe"

	"github.com/linkstack/linkstack/internal/stack"
)

func (r *Runner) printSystemInfo() {
	r.printf("\nSystem information:\n")
	r.printf("Go version: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	for _, line := range platformInfo() {
		r.printf("%s\n", line)
	}
	r.printf("sizeof(Node): %d bytes\n", unsafe.Sizeof(stack.Node{}))
	r.printf("sizeof(Stack): %d bytes\n", unsafe.Sizeof(stack.Stack{}))
}
