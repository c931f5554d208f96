// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package datum holds the individual timestamped values of a metric.
package datum

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
	"time"
)

// Datum is a single value recorded at a point in time.
type Datum interface {
	// ValueString returns the value of a Datum as a string.
	ValueString() string

	// TimeUTC returns the timestamp of the Datum.
	TimeUTC() time.Time
}

type baseDatum struct {
	nsec int64 // since unix epoch
}

func (d *baseDatum) stamp(ts time.Time) {
	if ts.IsZero() {
		ts = time.Now()
	}
	atomic.StoreInt64(&d.nsec, ts.UTC().UnixNano())
}

func (d *baseDatum) TimeUTC() time.Time {
	return time.Unix(0, atomic.LoadInt64(&d.nsec)).UTC()
}

// Int is an integer Datum.
type Int struct {
	baseDatum
	value int64
}

// MakeInt returns an Int holding v at ts.  A zero ts means now.
func MakeInt(v int64, ts time.Time) *Int {
	d := &Int{}
	d.Set(v, ts)
	return d
}

// Set stores v at ts.
func (d *Int) Set(v int64, ts time.Time) {
	atomic.StoreInt64(&d.value, v)
	d.stamp(ts)
}

// IncBy adds delta at ts.
func (d *Int) IncBy(delta int64, ts time.Time) {
	atomic.AddInt64(&d.value, delta)
	d.stamp(ts)
}

// Get returns the current value.
func (d *Int) Get() int64 {
	return atomic.LoadInt64(&d.value)
}

func (d *Int) ValueString() string {
	return strconv.FormatInt(d.Get(), 10)
}

// MarshalJSON encodes the value and its timestamp in nanoseconds.
func (d *Int) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value int64
		Time  int64
	}{d.Get(), atomic.LoadInt64(&d.nsec)})
}

// Float is a floating point Datum.
type Float struct {
	baseDatum
	bits uint64
}

// MakeFloat returns a Float holding v at ts.  A zero ts means now.
func MakeFloat(v float64, ts time.Time) *Float {
	d := &Float{}
	d.Set(v, ts)
	return d
}

// Set stores v at ts.
func (d *Float) Set(v float64, ts time.Time) {
	atomic.StoreUint64(&d.bits, math.Float64bits(v))
	d.stamp(ts)
}

// Get returns the current value.
func (d *Float) Get() float64 {
	return math.Float64frombits(atomic.LoadUint64(&d.bits))
}

func (d *Float) ValueString() string {
	return strconv.FormatFloat(d.Get(), 'g', -1, 64)
}

// MarshalJSON encodes the value and its timestamp in nanoseconds.
func (d *Float) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value float64
		Time  int64
	}{d.Get(), atomic.LoadInt64(&d.nsec)})
}

// Value returns d as a float64, whatever its type.
func Value(d Datum) float64 {
	switch d := d.(type) {
	case *Int:
		return float64(d.Get())
	case *Float:
		return d.Get()
	}
	panic(fmt.Sprintf("datum %v has no numeric value", d))
}
