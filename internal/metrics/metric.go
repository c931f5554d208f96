// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package metrics records the results of stack benchmark runs as named,
// labelled metrics for later export.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/linkstack/linkstack/internal/metrics/datum"
	"github.com/pkg/errors"
)

// Kind enumerates the types of metrics supported.
type Kind int

const (
	_ Kind = iota

	// Counter is a monotonically nondecreasing metric.
	Counter

	// Gauge is a Kind that can take on any value.
	Gauge

	// Timer is a specialisation of Gauge that stores durations.
	Timer
)

func (k Kind) String() string {
	switch k {
	case Counter:
		return "Counter"
	case Gauge:
		return "Gauge"
	case Timer:
		return "Timer"
	}
	return "Unknown"
}

// Type describes the type of value stored in a Datum.
type Type int

const (
	// Int indicates this metric is an integer metric type.
	Int Type = iota
	// Float indicates this metric is a floating-point metric type.
	Float
)

func (t Type) String() string {
	switch t {
	case Int:
		return "Int"
	case Float:
		return "Float"
	}
	return "?"
}

// LabelValue names a Datum with a list of label strings, one per key of the
// owning Metric.
type LabelValue struct {
	Labels []string `json:",omitempty"`
	Value  datum.Datum
}

// Metric describes a metric with its name, the benchmark run that created
// it, its Kind and Type, the Keys that add dimension to it, and a LabelValue
// per combination of labels seen so far.
type Metric struct {
	sync.RWMutex
	Name           string
	Run            string `json:",omitempty"`
	Help           string `json:",omitempty"`
	Kind           Kind
	Type           Type
	Keys           []string      `json:",omitempty"`
	LabelValues    []*LabelValue `json:",omitempty"`
	labelValuesMap map[string]*LabelValue
}

// NewMetric returns a new empty metric of dimension len(keys).
func NewMetric(name, run string, kind Kind, typ Type, keys ...string) *Metric {
	return &Metric{
		Name:           name,
		Run:            run,
		Kind:           kind,
		Type:           typ,
		Keys:           append([]string(nil), keys...),
		LabelValues:    make([]*LabelValue, 0),
		labelValuesMap: make(map[string]*LabelValue),
	}
}

// WithHelp sets the help text exported alongside the metric.
func (m *Metric) WithHelp(help string) *Metric {
	m.Help = help
	return m
}

func labelValueKey(labels []string) string {
	var buf strings.Builder
	for _, l := range labels {
		buf.WriteString(strings.ReplaceAll(l, "-", "\\-"))
		buf.WriteString("-")
	}
	return buf.String()
}

// GetDatum returns the datum named by a sequence of label values, creating
// it if it does not yet exist.
func (m *Metric) GetDatum(labelvalues ...string) (datum.Datum, error) {
	if len(labelvalues) != len(m.Keys) {
		return nil, errors.Errorf("label values %q not same length as keys for metric %s", labelvalues, m.Name)
	}
	m.Lock()
	defer m.Unlock()
	if m.labelValuesMap == nil {
		m.labelValuesMap = make(map[string]*LabelValue)
		for _, lv := range m.LabelValues {
			m.labelValuesMap[labelValueKey(lv.Labels)] = lv
		}
	}
	k := labelValueKey(labelvalues)
	if lv, ok := m.labelValuesMap[k]; ok {
		return lv.Value, nil
	}
	var d datum.Datum
	switch m.Type {
	case Int:
		d = datum.MakeInt(0, time.Time{})
	case Float:
		d = datum.MakeFloat(0, time.Time{})
	default:
		return nil, errors.Errorf("metric %s has unsupported type %v", m.Name, m.Type)
	}
	lv := &LabelValue{Labels: append([]string(nil), labelvalues...), Value: d}
	m.LabelValues = append(m.LabelValues, lv)
	m.labelValuesMap[k] = lv
	return d, nil
}

// LabelSet maps the keys of a Metric to the labels naming one Datum.
type LabelSet struct {
	Labels map[string]string
	Datum  datum.Datum
}

// LabelSets returns a LabelSet for every LabelValue of the Metric, in the
// order they were created.  The caller must hold the read lock.
func (m *Metric) LabelSets() []*LabelSet {
	r := make([]*LabelSet, 0, len(m.LabelValues))
	for _, lv := range m.LabelValues {
		labels := make(map[string]string, len(m.Keys))
		for i, v := range lv.Labels {
			labels[m.Keys[i]] = v
		}
		r = append(r, &LabelSet{labels, lv.Value})
	}
	return r
}

func (m *Metric) String() string {
	m.RLock()
	defer m.RUnlock()
	return fmt.Sprintf("Metric: name=%s run=%s kind=%v type=%v keys=%v labelvalues=%d", m.Name, m.Run, m.Kind, m.Type, m.Keys, len(m.LabelValues))
}
