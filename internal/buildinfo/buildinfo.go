// Copyright 2020 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package buildinfo describes the build a binary came from.
package buildinfo

import (
	"fmt"
	"runtime"
)

// BuildInfo records the compile-time information for use when reporting a
// binary's version.
type BuildInfo struct {
	Program  string
	Branch   string
	Version  string
	Revision string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf(
		"%s version %s git revision %s branch %s go version %s go arch %s go os %s",
		b.Program,
		b.Version,
		b.Revision,
		b.Branch,
		runtime.Version(),
		runtime.GOARCH,
		runtime.GOOS,
	)
}
