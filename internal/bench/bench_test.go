// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package bench

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/linkstack/linkstack/internal/metrics"
	"github.com/linkstack/linkstack/internal/metrics/datum"
	"github.com/linkstack/linkstack/internal/stack"
	"github.com/linkstack/linkstack/internal/testutil"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"go.opencensus.io/trace"
)

func newTestRunner(tb testing.TB, out *bytes.Buffer, input string, opts ...Option) *Runner {
	tb.Helper()
	opts = append([]Option{
		Output(out),
		Input(strings.NewReader(input)),
		Sizes(50, 10, 20),
		EmptyIterations(100),
		RunID("test"),
		NoColor(),
	}, opts...)
	r, err := NewRunner(opts...)
	testutil.FatalIfErr(tb, err)
	return r
}

func expectContains(tb testing.TB, out string, wants ...string) {
	tb.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			tb.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func datumValue(tb testing.TB, store *metrics.Store, name string, labels ...string) float64 {
	tb.Helper()
	m := store.FindMetricOrNil(name, "test")
	if m == nil {
		tb.Fatalf("no metric %s", name)
	}
	d, err := m.GetDatum(labels...)
	testutil.FatalIfErr(tb, err)
	return datum.Value(d)
}

func TestRunSkipsHugeOnNo(t *testing.T) {
	var out bytes.Buffer
	store := metrics.NewStore()
	r := newTestRunner(t, &out, "n\n", Store(store))
	testutil.FatalIfErr(t, r.Run(context.Background()))

	expectContains(t, out.String(),
		"STACK BENCHMARK SUITE",
		"Run ID: test\n",
		"sizeof(Node): ",
		"=== Benchmark: Single Push ===",
		"Result: OK\n",
		"Popped value: 42 (expected: 42)\n",
		"Stack empty after pop: YES\n",
		"=== Benchmark: Push 10 elements ===",
		"Actual elements in stack: 20\n",
		"Verification: PASS\n",
		"=== Benchmark: Pop 20 elements ===",
		"Successful pops: 20\n",
		"Stack empty after all pops: YES\n",
		"  Push operations: 1000\n",
		"  Pop operations: 1000\n",
		"Remaining elements cleared: 0\n",
		"Total operations: 20000\n",
		"Stack empty at end: YES\n",
		"Failed pops (expected): 100\n",
		"Size:   1 elements | Total: ",
		"Size: 100 elements | Total: ",
		"(y/n): ",
		"BENCHMARK COMPLETE",
	)
	if strings.Contains(out.String(), "Push 50 elements") {
		t.Error("huge pass ran after answering no")
	}
	if strings.Contains(out.String(), "FAIL") {
		t.Errorf("unexpected failure:\n%s", out.String())
	}

	if got := datumValue(t, store, "stack_bench_ops_total", "push", "10"); got != 10 {
		t.Errorf("push 10 ops = %v", got)
	}
	if got := datumValue(t, store, "stack_bench_ops_total", "sequence", "100"); got != 20000 {
		t.Errorf("sequence ops = %v", got)
	}
	if got := datumValue(t, store, "stack_bench_ops_total", "small_stacks", ""); got != 2*(1+2+5+10+20+50+100) {
		t.Errorf("small stacks ops = %v", got)
	}
	if got := datumValue(t, store, "stack_bench_passed", "pop", "20"); got != 1 {
		t.Errorf("pop 20 passed = %v", got)
	}
	if got := datumValue(t, store, "stack_bench_duration_us", "empty_pop", "100"); got < 0 {
		t.Errorf("empty pop duration = %v", got)
	}
}

func TestRunHugeOnYes(t *testing.T) {
	for _, answer := range []string{"y\n", "Y", "yes please\n"} {
		var out bytes.Buffer
		r := newTestRunner(t, &out, answer)
		testutil.FatalIfErr(t, r.Run(context.Background()))
		expectContains(t, out.String(), "=== Benchmark: Push 50 elements ===", "=== Benchmark: Pop 50 elements ===")
	}
}

func TestRunHugeModes(t *testing.T) {
	tests := []struct {
		name    string
		mode    HugeMode
		input   string
		wantRan bool
	}{
		{"always ignores input", HugeAlways, "n\n", true},
		{"never ignores input", HugeNever, "y\n", false},
		{"ask at end of input", HugeAsk, "", false},
		{"ask with blank line", HugeAsk, "\n", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			r := newTestRunner(t, &out, tc.input, Huge(tc.mode))
			testutil.FatalIfErr(t, r.Run(context.Background()))
			ran := strings.Contains(out.String(), "Push 50 elements")
			if ran != tc.wantRan {
				t.Errorf("huge pass ran = %v, want %v", ran, tc.wantRan)
			}
			prompted := strings.Contains(out.String(), "(y/n)")
			if prompted != (tc.mode == HugeAsk) {
				t.Errorf("prompted = %v for mode %v", prompted, tc.mode)
			}
		})
	}
}

func TestRunWithArena(t *testing.T) {
	var arenas []*stack.Arena
	var out bytes.Buffer
	r := newTestRunner(t, &out, "n\n", Allocator(func() stack.Allocator {
		a := stack.NewArena(stack.ArenaChunkSize(8))
		arenas = append(arenas, a)
		return a
	}))
	testutil.FatalIfErr(t, r.Run(context.Background()))
	if len(arenas) == 0 {
		t.Fatal("allocator constructor never called")
	}
	for i, a := range arenas {
		if a.Live() != 0 {
			t.Errorf("arena %d leaked %d nodes", i, a.Live())
		}
	}
}

func TestRunReportsAllocationFailure(t *testing.T) {
	var out bytes.Buffer
	store := metrics.NewStore()
	r := newTestRunner(t, &out, "n\n", Store(store), Allocator(func() stack.Allocator {
		return stack.NewArena(stack.ArenaLimit(15))
	}))
	if err := r.Run(context.Background()); err == nil {
		t.Fatal("Run succeeded despite allocation failures")
	}
	// push 20, pop 20, sequence and small_stacks all exceed the limit.
	if r.Failures() != 4 {
		t.Errorf("Failures() = %d, want 4", r.Failures())
	}
	expectContains(t, out.String(),
		"Push failed at iteration 15: push 15: arena limit of 15 nodes reached: node allocation failed\n",
		"Total operations: 3000\n",
		"Failed operations: 17000\n",
		"  Failed operations: 10\n",
	)
	for _, tc := range []struct {
		name, size string
		passed     float64
	}{
		{"push", "10", 1},
		{"push", "20", 0},
		{"pop", "20", 0},
		{"alternating", "2000", 1},
		{"sequence", "100", 0},
		{"small_stacks", "", 0},
	} {
		if got := datumValue(t, store, "stack_bench_passed", tc.name, tc.size); got != tc.passed {
			t.Errorf("%s %s passed = %v, want %v", tc.name, tc.size, got, tc.passed)
		}
	}
	if got := datumValue(t, store, "stack_bench_ops_total", "push", "20"); got != 15 {
		t.Errorf("push 20 ops = %v, want 15", got)
	}
	if got := datumValue(t, store, "stack_bench_ops_total", "sequence", "100"); got != 3000 {
		t.Errorf("sequence ops = %v, want 3000", got)
	}
	// 1+2+5+10 fit, 20, 50 and 100 each manage 15 pushes and 15 pops.
	if got := datumValue(t, store, "stack_bench_ops_total", "small_stacks", ""); got != 2*(1+2+5+10)+3*30 {
		t.Errorf("small stacks ops = %v", got)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	var out bytes.Buffer
	store := metrics.NewStore()
	r := newTestRunner(t, &out, "y\n", Store(store), Huge(HugeAsk))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Run(ctx)
	if errors.Cause(err) != context.Canceled {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
	if strings.Contains(out.String(), "=== Benchmark:") || strings.Contains(out.String(), "(y/n)") {
		t.Errorf("suites ran after cancellation:\n%s", out.String())
	}
	if strings.Contains(out.String(), "BENCHMARK COMPLETE") {
		t.Error("cancelled run reported completion")
	}
	if r.Failures() != 0 {
		t.Errorf("Failures() = %d, want 0", r.Failures())
	}
	if m := store.FindMetricOrNil("stack_bench_ops_total", "test"); m == nil {
		t.Fatal("no ops metric")
	} else if len(m.LabelValues) != 0 {
		t.Errorf("cancelled run recorded %d results", len(m.LabelValues))
	}
}

func TestOptionValidation(t *testing.T) {
	for name, opt := range map[string]Option{
		"zero size":       Sizes(0),
		"negative size":   Sizes(10, -1),
		"zero iterations": EmptyIterations(0),
		"nil store":       Store(nil),
	} {
		if _, err := NewRunner(opt); err == nil {
			t.Errorf("%s: NewRunner succeeded", name)
		}
	}
}

func TestDefaultRunIDIsKsuid(t *testing.T) {
	r, err := NewRunner(Output(&bytes.Buffer{}))
	testutil.FatalIfErr(t, err)
	if _, err := ksuid.Parse(r.RunID()); err != nil {
		t.Errorf("RunID() %q is not a ksuid: %s", r.RunID(), err)
	}
}

func TestParseHugeMode(t *testing.T) {
	for in, want := range map[string]HugeMode{
		"":    HugeAsk,
		"ask": HugeAsk,
		"YES": HugeAlways,
		"y":   HugeAlways,
		"no":  HugeNever,
	} {
		got, err := ParseHugeMode(in)
		testutil.FatalIfErr(t, err)
		if got != want {
			t.Errorf("ParseHugeMode(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseHugeMode("maybe"); err == nil {
		t.Error("ParseHugeMode(maybe) succeeded")
	}
}

type spanRecorder struct {
	mu    sync.Mutex
	names []string
}

func (s *spanRecorder) ExportSpan(sd *trace.SpanData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, sd.Name)
}

func TestRunTracesSuites(t *testing.T) {
	rec := &spanRecorder{}
	trace.RegisterExporter(rec)
	defer trace.UnregisterExporter(rec)

	var out bytes.Buffer
	r := newTestRunner(t, &out, "n\n")
	ctx, span := trace.StartSpan(context.Background(), "test", trace.WithSampler(trace.AlwaysSample()))
	testutil.FatalIfErr(t, r.Run(ctx))
	span.End()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	seen := make(map[string]bool)
	for _, n := range rec.names {
		seen[n] = true
	}
	for _, want := range []string{"bench.Run", "bench.push_single", "bench.push", "bench.pop", "bench.small_stacks"} {
		if !seen[want] {
			t.Errorf("no span named %q in %v", want, rec.names)
		}
	}
}

func BenchmarkRunnerPushMultiple(b *testing.B) {
	var out bytes.Buffer
	r := newTestRunner(b, &out, "")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out.Reset()
		r.pushMultiple(SmallSize)
	}
}
