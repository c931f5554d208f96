// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package bench

import (
	"time"

	"github.com/golang/glog"
	"github.com/linkstack/linkstack/internal/stack"
)

// timer measures wall time between Start and Stop.
type timer struct {
	start, end time.Time
}

func (t *timer) Start() { t.start = time.Now() }
func (t *timer) Stop()  { t.end = time.Now() }

func (t *timer) Elapsed() time.Duration { return t.end.Sub(t.start) }

func micros(d time.Duration) float64 { return float64(d) / float64(time.Microsecond) }
func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// perOp returns the average microseconds per operation, or 0 for no ops.
func perOp(d time.Duration, ops int) float64 {
	if ops == 0 {
		return 0
	}
	return micros(d) / float64(ops)
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

// depth counts the nodes by walking the chain rather than trusting Len.
func depth(s *stack.Stack) int {
	n := 0
	for node := s.TopNode(); node != nil; node = node.Next() {
		n++
	}
	return n
}

func (r *Runner) warmUp() {
	s := r.newStack()
	for i := 0; i < SmallSize; i++ {
		_ = s.Push(i)
		s.Pop()
	}
	s.Destroy()
}

func (r *Runner) pushSingle() result {
	r.printf("\n=== Benchmark: Single Push ===\n")
	s := r.newStack()
	defer s.Destroy()

	var t timer
	t.Start()
	err := s.Push(42)
	t.Stop()
	if err != nil {
		r.printf("Push failed: %s\n", err)
		return result{elapsed: t.Elapsed()}
	}

	ok := s.Top() == 42
	r.printf("Operation: push single element\n")
	r.printf("Time: %.3f microseconds\n", micros(t.Elapsed()))
	r.printf("Result: %s\n", r.verdict(ok, "OK", "FAIL"))
	return result{ops: 1, elapsed: t.Elapsed(), ok: ok}
}

func (r *Runner) pushMultiple(n int) result {
	r.printf("\n=== Benchmark: Push %d elements ===\n", n)
	s := r.newStack()
	defer s.Destroy()

	var t timer
	t.Start()
	for i := 0; i < n; i++ {
		if err := s.Push(i); err != nil {
			t.Stop()
			r.printf("Push failed at iteration %d: %s\n", i, err)
			return result{ops: i, elapsed: t.Elapsed()}
		}
	}
	t.Stop()

	r.printf("Total elements: %d\n", n)
	r.printf("Total time: %.3f ms\n", millis(t.Elapsed()))
	r.printf("Average time per push: %.3f µs\n", perOp(t.Elapsed(), n))
	count := depth(s)
	ok := count == n
	r.printf("Actual elements in stack: %d\n", count)
	r.printf("Verification: %s\n", r.verdict(ok, "PASS", "FAIL"))
	return result{ops: n, elapsed: t.Elapsed(), ok: ok}
}

func (r *Runner) popSingle() result {
	r.printf("\n=== Benchmark: Single Pop ===\n")
	s := r.newStack()
	defer s.Destroy()
	if err := s.Push(42); err != nil {
		r.printf("Push failed: %s\n", err)
		return result{}
	}

	var t timer
	t.Start()
	v, ok := s.Pop()
	t.Stop()
	if !ok {
		r.printf("Pop failed!\n")
		return result{elapsed: t.Elapsed()}
	}

	r.printf("Operation: pop single element\n")
	r.printf("Time: %.3f microseconds\n", micros(t.Elapsed()))
	r.printf("Popped value: %d (expected: 42)\n", v)
	r.printf("Stack empty after pop: %s\n", yesNo(s.IsEmpty()))
	return result{ops: 1, elapsed: t.Elapsed(), ok: v == 42 && s.IsEmpty()}
}

func (r *Runner) popMultiple(n int) result {
	r.printf("\n=== Benchmark: Pop %d elements ===\n", n)
	s := r.newStack()
	defer s.Destroy()
	for i := 0; i < n; i++ {
		if err := s.Push(i); err != nil {
			r.printf("Push failed at iteration %d: %s\n", i, err)
			return result{}
		}
	}

	var t timer
	inOrder := true
	popped := 0
	t.Start()
	for i := 0; i < n; i++ {
		v, ok := s.Pop()
		if !ok {
			r.printf("Pop failed at iteration %d\n", i)
			break
		}
		popped++
		if want := n - i - 1; v != want {
			inOrder = false
			glog.Warningf("unexpected value %d at pop %d (expected %d)", v, i, want)
		}
	}
	t.Stop()

	r.printf("Attempted pops: %d\n", n)
	r.printf("Successful pops: %d\n", popped)
	r.printf("Total time: %.3f ms\n", millis(t.Elapsed()))
	r.printf("Average time per pop: %.3f µs\n", perOp(t.Elapsed(), popped))
	r.printf("Stack empty after all pops: %s\n", yesNo(s.IsEmpty()))
	ok := inOrder && popped == n && s.IsEmpty()
	r.printf("Verification: %s\n", r.verdict(ok, "PASS", "FAIL"))
	return result{ops: popped, elapsed: t.Elapsed(), ok: ok}
}

func (r *Runner) pushPopAlternating(n int) result {
	r.printf("\n=== Benchmark: Alternating Push/Pop (%d ops) ===\n", n)
	s := r.newStack()
	defer s.Destroy()

	var t timer
	pushes, pops := 0, 0
	t.Start()
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			if s.Push(i) == nil {
				pushes++
			}
		} else if _, ok := s.Pop(); ok {
			pops++
		}
	}
	t.Stop()

	r.printf("Total operations: %d\n", n)
	r.printf("  Push operations: %d\n", pushes)
	r.printf("  Pop operations: %d\n", pops)
	r.printf("Total time: %.3f ms\n", millis(t.Elapsed()))
	r.printf("Average time per operation: %.3f µs\n", perOp(t.Elapsed(), n))

	remaining := 0
	for !s.IsEmpty() {
		s.Pop()
		remaining++
	}
	r.printf("Remaining elements cleared: %d\n", remaining)
	return result{ops: pushes + pops, elapsed: t.Elapsed(), ok: pushes+pops == n && remaining == pushes-pops}
}

func (r *Runner) pushPopSequence(size, reps int) result {
	r.printf("\n=== Benchmark: Push/Pop Sequence (size=%d, reps=%d) ===\n", size, reps)
	s := r.newStack()
	defer s.Destroy()

	var t timer
	ops, failed := 0, 0
	t.Start()
	for rep := 0; rep < reps; rep++ {
		for i := 0; i < size; i++ {
			if s.Push(i+rep*size) != nil {
				failed++
				continue
			}
			ops++
		}
		for i := 0; i < size; i++ {
			if _, ok := s.Pop(); !ok {
				failed++
				continue
			}
			ops++
		}
	}
	t.Stop()

	r.printf("Sequence size: %d\n", size)
	r.printf("Repetitions: %d\n", reps)
	r.printf("Total operations: %d\n", ops)
	if failed > 0 {
		r.printf("Failed operations: %d\n", failed)
	}
	r.printf("Total time: %.3f ms\n", millis(t.Elapsed()))
	r.printf("Average time per operation: %.3f µs\n", perOp(t.Elapsed(), ops))
	r.printf("Stack empty at end: %s\n", yesNo(s.IsEmpty()))
	return result{ops: ops, elapsed: t.Elapsed(), ok: failed == 0 && s.IsEmpty()}
}

func (r *Runner) emptyStackPops() result {
	r.printf("\n=== Benchmark: Empty Stack Operations ===\n")
	s := r.newStack()
	defer s.Destroy()

	var t timer
	failed := 0
	t.Start()
	for i := 0; i < r.emptyIters; i++ {
		if _, ok := s.Pop(); !ok {
			failed++
		}
	}
	t.Stop()

	r.printf("Operations: pop from empty stack\n")
	r.printf("Iterations: %d\n", r.emptyIters)
	r.printf("Failed pops (expected): %d\n", failed)
	r.printf("Total time: %.3f ms\n", millis(t.Elapsed()))
	r.printf("Average time per operation: %.3f µs\n", perOp(t.Elapsed(), r.emptyIters))
	return result{ops: r.emptyIters, elapsed: t.Elapsed(), ok: failed == r.emptyIters}
}

func (r *Runner) smallStacks() result {
	r.printf("\n=== Benchmark: Small Stacks ===\n")
	var total time.Duration
	ops := 0
	ok := true
	for _, size := range r.smallSizes {
		s := r.newStack()
		var t timer
		n, failed := 0, 0
		t.Start()
		for j := 0; j < size; j++ {
			if s.Push(j) != nil {
				failed++
				continue
			}
			n++
		}
		for j := 0; j < size; j++ {
			if _, popped := s.Pop(); !popped {
				failed++
				continue
			}
			n++
		}
		t.Stop()
		ok = ok && failed == 0 && s.IsEmpty()
		s.Destroy()

		total += t.Elapsed()
		ops += n
		r.printf("Size: %3d elements | Total: %7.2f µs | Avg: %6.3f µs/op\n",
			size, micros(t.Elapsed()), perOp(t.Elapsed(), n))
		if failed > 0 {
			r.printf("  Failed operations: %d\n", failed)
		}
	}
	return result{ops: ops, elapsed: total, ok: ok}
}
