// metrics.go - Timing collection for the lottery benchmark
package main

import (
	"sort"
	"sync"
	"time"
)

// MetricsCollector gathers per-operation timings and sizes across a run.
type MetricsCollector struct {
	mu        sync.Mutex
	durations map[string][]time.Duration
	sizes     map[string]int
	order     []string
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		durations: make(map[string][]time.Duration),
		sizes:     make(map[string]int),
	}
}

// Time runs fn and records its duration under name.
func (mc *MetricsCollector) Time(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	mc.Record(name, time.Since(start))
	return err
}

// Record adds one duration sample.
func (mc *MetricsCollector) Record(name string, d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if _, ok := mc.durations[name]; !ok {
		mc.order = append(mc.order, name)
	}
	mc.durations[name] = append(mc.durations[name], d)
}

// RecordSize notes the serialized size of an artifact in bytes.
func (mc *MetricsCollector) RecordSize(name string, bytes int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.sizes[name] = bytes
}

// Summary is the aggregate view of one operation.
type Summary struct {
	Op     string
	Count  int
	Total  time.Duration
	Mean   time.Duration
	Median time.Duration
}

// Summaries returns per-operation summaries in first-recorded order.
func (mc *MetricsCollector) Summaries() []Summary {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	out := make([]Summary, 0, len(mc.order))
	for _, name := range mc.order {
		ds := mc.durations[name]
		if len(ds) == 0 {
			continue
		}
		sorted := make([]time.Duration, len(ds))
		copy(sorted, ds)
		sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })
		var total time.Duration
		for _, d := range ds {
			total += d
		}
		out = append(out, Summary{
			Op:     name,
			Count:  len(ds),
			Total:  total,
			Mean:   total / time.Duration(len(ds)),
			Median: sorted[len(sorted)/2],
		})
	}
	return out
}

// Sizes returns the recorded artifact sizes.
func (mc *MetricsCollector) Sizes() map[string]int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	out := make(map[string]int, len(mc.sizes))
	for k, v := range mc.sizes {
		out[k] = v
	}
	return out
}
