// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes the Prometheus counters of the menu service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// IncrementalCounter is a labelled counter.
type IncrementalCounter interface {
	Increment(val ...string)
}

// Counter wraps a CounterVec.
type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

// Increment adds one to the series identified by the label values.
func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

// NewCounterWithRegistry creates and registers a counter on reg.
func NewCounterWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) *Counter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "megamenu",
		Name:      name,
		Help:      help,
	}, labels)
	reg.MustRegister(vec)

	return &Counter{Name: name, Help: help, vec: vec}
}

// Metrics holds every counter of the service.
type Metrics struct {
	registry *prometheus.Registry

	Events    *Counter // type, scope
	Renders   *Counter // orientation
	Exports   *Counter // format, result
	Upstream  *Counter // endpoint, result
	Refreshes *Counter // result
	Logs      *Counter // level, category
}

// New creates the counters on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:  reg,
		Events:    NewCounterWithRegistry(reg, "events_total", "Interaction events applied to menu sessions.", "type", "scope"),
		Renders:   NewCounterWithRegistry(reg, "renders_total", "Server-rendered menus.", "orientation"),
		Exports:   NewCounterWithRegistry(reg, "exports_total", "Category exports.", "format", "result"),
		Upstream:  NewCounterWithRegistry(reg, "upstream_requests_total", "Requests to the commerce backend.", "endpoint", "result"),
		Refreshes: NewCounterWithRegistry(reg, "source_refreshes_total", "Menu source refreshes.", "result"),
		Logs:      NewCounterWithRegistry(reg, "log_records_total", "Warning and error log records.", "level", "category"),
	}
}

// RegisterGauge exposes fn as a gauge, e.g. the number of live sessions.
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "megamenu",
		Name:      name,
		Help:      help,
	}, fn))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Result returns the result label for err.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
