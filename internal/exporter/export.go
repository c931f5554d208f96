// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package exporter writes the benchmark metric store and the stack's
// operation counters out in Prometheus text format or JSON.
package exporter

import (
	"io"

	"github.com/golang/glog"
	"github.com/linkstack/linkstack/internal/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/afero"
)

// Exporter renders the contents of a metrics.Store.
type Exporter struct {
	store        *metrics.Store
	omitRunLabel bool
	expvarDescs  map[string]*prometheus.Desc
}

// Option configures a new Exporter.
type Option func(*Exporter) error

// OmitRunLabel sets the Exporter to not put benchmark run ids in metric labels.
func OmitRunLabel() Option {
	return func(e *Exporter) error {
		e.omitRunLabel = true
		return nil
	}
}

// ExpvarCounters adds the named expvar integers to the Prometheus output.
func ExpvarCounters(descs map[string]*prometheus.Desc) Option {
	return func(e *Exporter) error {
		for name, d := range descs {
			if d == nil {
				return errors.Errorf("nil descriptor for expvar %q", name)
			}
			e.expvarDescs[name] = d
		}
		return nil
	}
}

// StackCounters adds the stack package's operation counters to the
// Prometheus output.
func StackCounters() Option {
	return ExpvarCounters(map[string]*prometheus.Desc{
		"stack_pushes_total":         prometheus.NewDesc("stack_pushes_total", "number of successful pushes", nil, nil),
		"stack_push_errors_total":    prometheus.NewDesc("stack_push_errors_total", "number of pushes that failed to allocate a node", nil, nil),
		"stack_pops_total":           prometheus.NewDesc("stack_pops_total", "number of successful pops", nil, nil),
		"stack_empty_pops_total":     prometheus.NewDesc("stack_empty_pops_total", "number of pops from an empty or nil stack", nil, nil),
		"stack_nodes_released_total": prometheus.NewDesc("stack_nodes_released_total", "number of nodes released by pop or destroy", nil, nil),
	})
}

// New creates a new Exporter.
func New(store *metrics.Store, options ...Option) (*Exporter, error) {
	if store == nil {
		return nil, errors.New("exporter needs a Store")
	}
	e := &Exporter{
		store:       store,
		expvarDescs: make(map[string]*prometheus.Desc),
	}
	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Gatherer returns a registry holding the store and any expvar counters.  A
// fresh registry is built on each call so metrics added to the store since
// the last call are described.
func (e *Exporter) Gatherer() (prometheus.Gatherer, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(e); err != nil {
		return nil, errors.Wrap(err, "registering store collector")
	}
	if len(e.expvarDescs) > 0 {
		if err := reg.Register(collectors.NewExpvarCollector(e.expvarDescs)); err != nil {
			return nil, errors.Wrap(err, "registering expvar collector")
		}
	}
	return reg, nil
}

// WritePrometheus writes every metric in the Prometheus text exposition
// format.
func (e *Exporter) WritePrometheus(w io.Writer) error {
	g, err := e.Gatherer()
	if err != nil {
		return err
	}
	mfs, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrapf(err, "writing %s", mf.GetName())
		}
	}
	metricExportTotal.Add(int64(len(mfs)))
	glog.V(1).Infof("wrote %d metric families", len(mfs))
	return nil
}

// WriteJSON writes the store as JSON.
func (e *Exporter) WriteJSON(w io.Writer) error {
	return e.store.WriteMetrics(w)
}

// Write writes the metrics in the named format: "prometheus" or "json".
func (e *Exporter) Write(w io.Writer, format string) error {
	switch format {
	case "prometheus":
		return e.WritePrometheus(w)
	case "json":
		return e.WriteJSON(w)
	}
	return errors.Errorf("unsupported format: %q", format)
}

// WriteFile writes the metrics in the named format to path on fs, replacing
// any existing file.
func (e *Exporter) WriteFile(fs afero.Fs, path, format string) error {
	f, err := fs.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating report")
	}
	if err := e.Write(f, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	glog.Infof("wrote %s report to %s", format, path)
	return nil
}
