// Package metrics renders client factory activity as OpenMetrics text.
package metrics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"

	"aws-client-factory/pkg/clock"
)

const contentType = "application/openmetrics-text; version=1.0.0; charset=utf-8"

var errNilWriter = errors.New("metrics: writer is nil")

// Exporter counts factory constructor calls per service and exposes them via HTTP. It
// implements factory.Observer.
type Exporter struct {
	mu sync.RWMutex

	constructed map[string]float64
	reused      map[string]float64
	failed      map[string]float64
	clock       *clock.Offset
}

// NewExporter constructs an Exporter with zeroed counters.
func NewExporter() *Exporter {
	return &Exporter{
		constructed: make(map[string]float64),
		reused:      make(map[string]float64),
		failed:      make(map[string]float64),
	}
}

// ObserveConstruct counts a newly built client.
func (e *Exporter) ObserveConstruct(service string) {
	e.increment(e.constructed, service)
}

// ObserveReuse counts a memoized client handed out again.
func (e *Exporter) ObserveReuse(service string) {
	e.increment(e.reused, service)
}

// ObserveFailure counts a failed construction.
func (e *Exporter) ObserveFailure(service string) {
	e.increment(e.failed, service)
}

// SetClock reports offset as the shared clock offset gauge. Nil hides the gauge.
func (e *Exporter) SetClock(offset *clock.Offset) {
	e.mu.Lock()
	e.clock = offset
	e.mu.Unlock()
}

func (e *Exporter) increment(counters map[string]float64, service string) {
	trimmed := strings.TrimSpace(service)
	if trimmed == "" {
		trimmed = "unknown"
	}

	e.mu.Lock()
	counters[trimmed]++
	e.mu.Unlock()
}

// ServeHTTP implements http.Handler for the metrics exporter.
func (e *Exporter) ServeHTTP(writer http.ResponseWriter, _ *http.Request) {
	data, err := e.Render()
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)

		return
	}

	writer.Header().Set("Content-Type", contentType)
	_, _ = writer.Write(data)
}

// Render returns the current metrics snapshot encoded as OpenMetrics text.
func (e *Exporter) Render() ([]byte, error) {
	var buffer bytes.Buffer

	_, err := e.WriteTo(&buffer)
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// WriteTo writes the current metrics snapshot to the provided writer.
func (e *Exporter) WriteTo(dst io.Writer) (int64, error) {
	if dst == nil {
		return 0, errNilWriter
	}

	snapshot := e.snapshot()

	lines := make([]string, 0, 16)
	lines = appendCounter(
		lines,
		"client_factory_constructed",
		"Clients built by the factory.",
		snapshot.constructed,
	)
	lines = appendCounter(
		lines,
		"client_factory_reused",
		"Memoized clients returned without construction.",
		snapshot.reused,
	)
	lines = appendCounter(
		lines,
		"client_factory_failed",
		"Client constructions that returned an error.",
		snapshot.failed,
	)

	if snapshot.clockSynced {
		lines = append(lines,
			"# HELP client_factory_clock_offset_seconds Shared clock offset applied to synced clients.\n",
			"# TYPE client_factory_clock_offset_seconds gauge\n",
			fmt.Sprintf("client_factory_clock_offset_seconds %.3f\n", snapshot.clockOffset),
		)
	}

	lines = append(lines, "# EOF\n")

	var total int64

	for _, line := range lines {
		n, err := io.WriteString(dst, line)

		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("write metrics: %w", err)
		}
	}

	return total, nil
}

func appendCounter(lines []string, name, help string, values map[string]float64) []string {
	lines = append(lines,
		fmt.Sprintf("# HELP %s %s\n", name, help),
		fmt.Sprintf("# TYPE %s counter\n", name),
	)

	services := make([]string, 0, len(values))
	for service := range values {
		services = append(services, service)
	}

	slices.Sort(services)

	for _, service := range services {
		lines = append(lines, fmt.Sprintf("%s_total{service=%q} %.0f\n", name, service, values[service]))
	}

	return lines
}

type exporterSnapshot struct {
	constructed map[string]float64
	reused      map[string]float64
	failed      map[string]float64
	clockSynced bool
	clockOffset float64
}

func (e *Exporter) snapshot() exporterSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := exporterSnapshot{
		constructed: copyCounters(e.constructed),
		reused:      copyCounters(e.reused),
		failed:      copyCounters(e.failed),
	}

	if e.clock != nil {
		snapshot.clockSynced = true
		snapshot.clockOffset = e.clock.Load().Seconds()
	}

	return snapshot
}

func copyCounters(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for key, value := range src {
		dst[key] = value
	}

	return dst
}
