// Copyright 2021 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"expvar"
	"testing"

	"github.com/golang/glog"
)

// TestGetExpvar fetches the expvar metric `name`, and returns the expvar.
// Callers are responsible for type assertions on the returned value.
func TestGetExpvar(tb testing.TB, name string) expvar.Var {
	tb.Helper()
	v := expvar.Get(name)
	if v == nil {
		tb.Fatalf("no expvar named %q", name)
	}
	glog.V(2).Infof("Var %q is %v", name, v)
	return v
}

// ExpectExpvarDelta returns a deferrable function which tests if the expvar
// integer with name has changed by want since ExpectExpvarDelta was called.
func ExpectExpvarDelta(tb testing.TB, name string, want int64) func() {
	tb.Helper()
	start := TestGetExpvar(tb, name).(*expvar.Int).Value()
	return func() {
		tb.Helper()
		now := TestGetExpvar(tb, name).(*expvar.Int).Value()
		if now-start != want {
			tb.Errorf("%s delta: got %v - %v = %d, want %d", name, now, start, now-start, want)
		}
	}
}
