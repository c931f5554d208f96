// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package exporter

import (
	"expvar"
	"strings"

	"github.com/golang/glog"
	"github.com/linkstack/linkstack/internal/metrics"
	"github.com/linkstack/linkstack/internal/metrics/datum"
	"github.com/prometheus/client_golang/prometheus"
)

var metricExportTotal = expvar.NewInt("metric_export_total")

const defaultHelp = "stack benchmark metric"

func noHyphens(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

// Describe implements the prometheus.Collector interface.
func (e *Exporter) Describe(c chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(e, c)
}

// Collect implements the prometheus.Collector interface.
func (e *Exporter) Collect(c chan<- prometheus.Metric) {
	_ = e.store.Range(func(m *metrics.Metric) error {
		m.RLock()
		defer m.RUnlock()
		help := m.Help
		if help == "" {
			help = defaultHelp
		}
		for _, ls := range m.LabelSets() {
			var keys, vals []string
			if !e.omitRunLabel && m.Run != "" {
				keys = append(keys, "run")
				vals = append(vals, m.Run)
			}
			for _, k := range m.Keys {
				keys = append(keys, k)
				vals = append(vals, ls.Labels[k])
			}
			pM, err := prometheus.NewConstMetric(
				prometheus.NewDesc(noHyphens(m.Name), help, keys, nil),
				promTypeForKind(m.Kind),
				datum.Value(ls.Datum),
				vals...)
			if err != nil {
				glog.Warning(err)
				continue
			}
			c <- pM
		}
		return nil
	})
}

func promTypeForKind(k metrics.Kind) prometheus.ValueType {
	switch k {
	case metrics.Counter:
		return prometheus.CounterValue
	case metrics.Gauge, metrics.Timer:
		return prometheus.GaugeValue
	}
	return prometheus.UntypedValue
}
