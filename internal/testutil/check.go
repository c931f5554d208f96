// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"testing"

	"github.com/pkg/errors"
)

// FatalIfErr fails the test with a fatal error if err is not nil.
func FatalIfErr(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatal(err)
	}
}

// ExpectErrCause flags an error unless the root cause of err is want.
func ExpectErrCause(tb testing.TB, err, want error) {
	tb.Helper()
	if got := errors.Cause(err); got != want {
		tb.Errorf("error cause: got %v, want %v (full error %v)", got, want, err)
	}
}

// SkipIfShort skips the large-scale cases in -short mode.
func SkipIfShort(tb testing.TB) {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping test in -short mode")
	}
}
