// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package bench times bulk push, pop and mixed sequences on a stack.Stack,
// prints the results, and records them in a metrics.Store.
package bench

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/linkstack/linkstack/internal/metrics"
	"github.com/linkstack/linkstack/internal/metrics/datum"
	"github.com/linkstack/linkstack/internal/stack"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"go.opencensus.io/trace"
)

// Default workload sizes.
const (
	SmallSize  = 1000
	MediumSize = 10000
	LargeSize  = 100000
	HugeSize   = 1000000
)

// HugeMode decides whether the optional huge pass runs.
type HugeMode int

const (
	// HugeAsk prompts for a y/n answer on the Runner's input.
	HugeAsk HugeMode = iota
	// HugeAlways runs the huge pass without asking.
	HugeAlways
	// HugeNever skips the huge pass without asking.
	HugeNever
)

// ParseHugeMode converts "ask", "yes" or "no" into a HugeMode.
func ParseHugeMode(s string) (HugeMode, error) {
	switch strings.ToLower(s) {
	case "ask", "":
		return HugeAsk, nil
	case "yes", "y", "always":
		return HugeAlways, nil
	case "no", "n", "never":
		return HugeNever, nil
	}
	return HugeAsk, errors.Errorf("unknown huge mode %q, want ask, yes or no", s)
}

// Runner runs the benchmark suites.
type Runner struct {
	out      io.Writer
	in       *bufio.Reader
	store    *metrics.Store
	newAlloc func() stack.Allocator

	huge       HugeMode
	sizes      []int
	hugeSize   int
	emptyIters int
	smallSizes []int
	runID      string

	pass, fail *color.Color
	banner     *color.Color

	opsMetric      *metrics.Metric
	durationMetric *metrics.Metric
	passedMetric   *metrics.Metric

	failures int
}

// Option configures a Runner.
type Option func(*Runner) error

// Output sets where results are printed.  The default is standard output.
func Output(w io.Writer) Option {
	return func(r *Runner) error {
		r.out = w
		return nil
	}
}

// Input sets where the answer to the huge pass prompt is read from.  The
// default is standard input.
func Input(rd io.Reader) Option {
	return func(r *Runner) error {
		r.in = bufio.NewReader(rd)
		return nil
	}
}

// Store sets the metric store results are recorded into.
func Store(s *metrics.Store) Option {
	return func(r *Runner) error {
		if s == nil {
			return errors.New("nil metric store")
		}
		r.store = s
		return nil
	}
}

// Allocator sets a constructor for the allocator of each benchmarked stack.
// By default stacks allocate nodes on the heap.
func Allocator(f func() stack.Allocator) Option {
	return func(r *Runner) error {
		r.newAlloc = f
		return nil
	}
}

// Huge sets whether the optional huge pass runs.
func Huge(m HugeMode) Option {
	return func(r *Runner) error {
		r.huge = m
		return nil
	}
}

// Sizes sets the element counts for the push and pop suites, and the size of
// the huge pass.
func Sizes(huge int, sizes ...int) Option {
	return func(r *Runner) error {
		for _, n := range append([]int{huge}, sizes...) {
			if n <= 0 {
				return errors.Errorf("benchmark size must be positive, got %d", n)
			}
		}
		r.hugeSize = huge
		r.sizes = sizes
		return nil
	}
}

// EmptyIterations sets how many pops the empty stack suite attempts.
func EmptyIterations(n int) Option {
	return func(r *Runner) error {
		if n <= 0 {
			return errors.Errorf("empty stack iterations must be positive, got %d", n)
		}
		r.emptyIters = n
		return nil
	}
}

// RunID labels the recorded metrics.  By default a new ksuid is generated.
func RunID(id string) Option {
	return func(r *Runner) error {
		r.runID = id
		return nil
	}
}

// NoColor disables coloured verdicts.
func NoColor() Option {
	return func(r *Runner) error {
		for _, c := range []*color.Color{r.pass, r.fail, r.banner} {
			c.DisableColor()
		}
		return nil
	}
}

// NewRunner creates a Runner.
func NewRunner(options ...Option) (*Runner, error) {
	r := &Runner{
		out:        os.Stdout,
		in:         bufio.NewReader(os.Stdin),
		store:      metrics.NewStore(),
		sizes:      []int{SmallSize, MediumSize, LargeSize},
		hugeSize:   HugeSize,
		emptyIters: HugeSize,
		smallSizes: []int{1, 2, 5, 10, 20, 50, 100},
		pass:       color.New(color.FgGreen),
		fail:       color.New(color.FgRed, color.Bold),
		banner:     color.New(color.FgCyan),
	}
	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}
	if r.runID == "" {
		id, err := ksuid.NewRandom()
		if err != nil {
			return nil, errors.Wrap(err, "generating run id")
		}
		r.runID = id.String()
	}
	r.opsMetric = metrics.NewMetric("stack_bench_ops_total", r.runID, metrics.Counter, metrics.Int, "benchmark", "size").
		WithHelp("stack operations performed by a benchmark")
	r.durationMetric = metrics.NewMetric("stack_bench_duration_us", r.runID, metrics.Timer, metrics.Float, "benchmark", "size").
		WithHelp("wall time of a benchmark in microseconds")
	r.passedMetric = metrics.NewMetric("stack_bench_passed", r.runID, metrics.Gauge, metrics.Int, "benchmark", "size").
		WithHelp("1 if the benchmark's verification passed, else 0")
	for _, m := range []*metrics.Metric{r.opsMetric, r.durationMetric, r.passedMetric} {
		if err := r.store.Add(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RunID returns the id labelling this Runner's metrics.
func (r *Runner) RunID() string {
	return r.runID
}

// Failures returns the number of suites whose verification failed so far.
func (r *Runner) Failures() int {
	return r.failures
}

func (r *Runner) newStack() *stack.Stack {
	if r.newAlloc == nil {
		return stack.New()
	}
	return stack.New(stack.WithAllocator(r.newAlloc()))
}

func (r *Runner) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Runner) verdict(ok bool, pass, fail string) string {
	if ok {
		return r.pass.Sprint(pass)
	}
	return r.fail.Sprint(fail)
}

// result is what one suite reports for recording.
type result struct {
	ops     int
	elapsed time.Duration
	ok      bool
}

// suite runs f inside a trace span and records its result under name and
// size.  A size of 0 is recorded as an empty label.  Nothing runs once ctx
// is done.
func (r *Runner) suite(ctx context.Context, name string, size int, f func() result) {
	if ctx.Err() != nil {
		glog.V(1).Infof("skipping %s: %s", name, ctx.Err())
		return
	}
	_, span := trace.StartSpan(ctx, "bench."+name)
	defer span.End()
	span.AddAttributes(trace.Int64Attribute("size", int64(size)))

	res := f()

	span.AddAttributes(trace.Int64Attribute("ops", int64(res.ops)), trace.BoolAttribute("ok", res.ok))
	if !res.ok {
		r.failures++
		span.SetStatus(trace.Status{Code: trace.StatusCodeInternal, Message: "verification failed"})
		glog.Warningf("benchmark %s (size %d) failed verification", name, size)
	}
	sizeLabel := ""
	if size > 0 {
		sizeLabel = strconv.Itoa(size)
	}
	if err := r.record(name, sizeLabel, res); err != nil {
		glog.Errorf("recording %s: %s", name, err)
	}
}

func (r *Runner) record(name, size string, res result) error {
	d, err := r.opsMetric.GetDatum(name, size)
	if err != nil {
		return err
	}
	d.(*datum.Int).IncBy(int64(res.ops), time.Time{})
	d, err = r.durationMetric.GetDatum(name, size)
	if err != nil {
		return err
	}
	d.(*datum.Float).Set(micros(res.elapsed), time.Time{})
	d, err = r.passedMetric.GetDatum(name, size)
	if err != nil {
		return err
	}
	passed := int64(0)
	if res.ok {
		passed = 1
	}
	d.(*datum.Int).Set(passed, time.Time{})
	return nil
}

// confirmHuge decides whether to run the huge pass, prompting if needed.
func (r *Runner) confirmHuge() bool {
	switch r.huge {
	case HugeAlways:
		return true
	case HugeNever:
		return false
	}
	r.printf("Run large benchmark? This may take a while... (y/n): ")
	line, err := r.in.ReadString('\n')
	if err != nil && err != io.EOF {
		glog.Warningf("reading answer: %s", err)
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		r.printf("\n")
		return false
	}
	return answer[0] == 'y' || answer[0] == 'Y'
}

// Run executes every suite in order.  It returns an error if any suite
// failed its verification, or if ctx is done before every suite has run.
func (r *Runner) Run(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "bench.Run")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("run_id", r.runID))

	r.printf("%s\n", r.banner.Sprint("========================================"))
	r.printf("%s\n", r.banner.Sprint("        STACK BENCHMARK SUITE"))
	r.printf("%s\n", r.banner.Sprint("========================================"))
	r.printf("\nRun ID: %s\n", r.runID)
	r.printSystemInfo()

	r.printf("\nWarming up...\n")
	r.warmUp()

	r.printf("\nStarting benchmarks...\n")
	r.suite(ctx, "push_single", 0, r.pushSingle)
	r.suite(ctx, "pop_single", 0, r.popSingle)
	for _, n := range r.sizes {
		n := n
		r.suite(ctx, "push", n, func() result { return r.pushMultiple(n) })
		r.suite(ctx, "pop", n, func() result { return r.popMultiple(n) })
	}
	alternating := 2 * SmallSize
	r.suite(ctx, "alternating", alternating, func() result { return r.pushPopAlternating(alternating) })
	r.suite(ctx, "sequence", 100, func() result { return r.pushPopSequence(100, 100) })
	r.suite(ctx, "empty_pop", r.emptyIters, r.emptyStackPops)
	r.suite(ctx, "small_stacks", 0, r.smallStacks)
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "benchmark run interrupted")
	}

	r.printf("\n=== Optional: Large Scale Benchmark ===\n")
	if r.confirmHuge() {
		r.suite(ctx, "push", r.hugeSize, func() result { return r.pushMultiple(r.hugeSize) })
		r.suite(ctx, "pop", r.hugeSize, func() result { return r.popMultiple(r.hugeSize) })
	} else {
		glog.V(1).Info("skipping huge pass")
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "benchmark run interrupted")
	}

	r.printf("\n%s\n", r.banner.Sprint("========================================"))
	r.printf("%s\n", r.banner.Sprint("        BENCHMARK COMPLETE"))
	r.printf("%s\n", r.banner.Sprint("========================================"))
	if r.failures > 0 {
		return errors.Errorf("%d benchmark verifications failed", r.failures)
	}
	return nil
}
