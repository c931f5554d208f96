// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package metrics

import (
	"encoding/json"
	"io"
	"sort"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Store contains Metrics.
type Store struct {
	sync.RWMutex
	Metrics map[string][]*Metric
}

// NewStore returns a new metric Store.
func NewStore() *Store {
	s := &Store{}
	s.ClearMetrics()
	return s
}

// Add is used to add one metric to the Store.  A metric with the same name
// must have the same Kind; one with the same name and run replaces the old.
func (s *Store) Add(m *Metric) error {
	s.Lock()
	defer s.Unlock()
	glog.V(1).Infof("Adding a new metric %v", m)
	ml := s.Metrics[m.Name]
	if len(ml) > 0 && ml[0].Kind != m.Kind {
		return errors.Errorf("metric %s has different kind %v to existing %v", m.Name, m.Kind, ml[0].Kind)
	}
	for i, v := range ml {
		if v.Run == m.Run && v.Type == m.Type {
			glog.V(2).Infof("replacing metric %s for run %q", m.Name, m.Run)
			ml[i] = m
			return nil
		}
	}
	s.Metrics[m.Name] = append(ml, m)
	return nil
}

// FindMetricOrNil returns a metric in a store, or returns nil if not found.
func (s *Store) FindMetricOrNil(name, run string) *Metric {
	s.RLock()
	defer s.RUnlock()
	for _, m := range s.Metrics[name] {
		if m.Run == run {
			return m
		}
	}
	return nil
}

// ClearMetrics empties the store of all metrics.
func (s *Store) ClearMetrics() {
	s.Lock()
	defer s.Unlock()
	s.Metrics = make(map[string][]*Metric)
}

// Range calls f sequentially for each Metric present in the store, ordered
// by name.  If f returns non nil error, Range stops the iteration.
func (s *Store) Range(f func(*Metric) error) error {
	s.RLock()
	defer s.RUnlock()
	names := make([]string, 0, len(s.Metrics))
	for n := range s.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		for _, m := range s.Metrics[n] {
			if err := f(m); err != nil {
				return err
			}
		}
	}
	return nil
}

// MarshalJSON returns a JSON byte string representing the Store.
func (s *Store) MarshalJSON() ([]byte, error) {
	ms := make([]*Metric, 0)
	_ = s.Range(func(m *Metric) error {
		ms = append(ms, m)
		return nil
	})
	return json.Marshal(ms)
}

// WriteMetrics dumps the current state of the metrics store in JSON format to
// the io.Writer.
func (s *Store) WriteMetrics(w io.Writer) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal metrics into json")
	}
	if _, err = w.Write(b); err != nil {
		return errors.Wrap(err, "failed to write metrics")
	}
	return nil
}
