package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

type collector interface {
	WritePrometheus(w io.Writer) error
}

// series holds one float per label combination; counters and gauges share it.
type series struct {
	name, help, kind string
	labelNames       []string

	mu     sync.RWMutex
	values map[string]float64
}

func newSeries(name, help, kind string, labels []string) series {
	return series{name: name, help: help, kind: kind, labelNames: labels, values: map[string]float64{}}
}

func (s *series) add(v float64, values []string) {
	lbl := labelString(s.labelNames, values)
	s.mu.Lock()
	s.values[lbl] += v
	s.mu.Unlock()
}

func (s *series) set(v float64, values []string) {
	lbl := labelString(s.labelNames, values)
	s.mu.Lock()
	s.values[lbl] = v
	s.mu.Unlock()
}

func (s *series) get(values []string) float64 {
	lbl := labelString(s.labelNames, values)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[lbl]
}

func (s *series) WritePrometheus(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", s.name, s.help, s.name, s.kind); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range sortedKeys(s.values) {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", s.name, k, s.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type CounterVec struct{ series }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{newSeries(name, help, "counter", labels)}
}

func (c *CounterVec) Inc(values ...string) {
	if c == nil {
		return
	}
	c.add(1, values)
}

// Value returns the current count for one label combination.
func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	return c.get(values)
}

type Gauge struct{ series }

func NewGauge(name, help string) *Gauge {
	return &Gauge{newSeries(name, help, "gauge", nil)}
}

func (g *Gauge) Set(v float64) {
	if g == nil {
		return
	}
	g.set(v, nil)
}

func (g *Gauge) Add(v float64) {
	if g == nil {
		return
	}
	g.add(v, nil)
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return g.get(nil)
}

type GaugeVec struct{ series }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &GaugeVec{newSeries(name, help, "gauge", labels)}
}

func (g *GaugeVec) Set(v float64, values ...string) {
	if g == nil {
		return
	}
	g.set(v, values)
}

type HistogramVec struct {
	name, help string
	labelNames []string
	buckets    []float64

	mu     sync.RWMutex
	values map[string]*histogram
}

type histogram struct {
	counts []uint64 // cumulative per bucket, last entry is +Inf
	sum    float64
	total  uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	}
	return &HistogramVec{name: name, help: help, labelNames: labels, buckets: buckets, values: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	lbl := labelString(h.labelNames, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist, ok := h.values[lbl]
	if !ok {
		hist = &histogram{counts: make([]uint64, len(h.buckets)+1)}
		h.values[lbl] = hist
	}
	hist.sum += v
	hist.total++
	for i, b := range h.buckets {
		if v <= b {
			hist.counts[i]++
		}
	}
	hist.counts[len(h.buckets)]++
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, k := range sortedKeys(h.values) {
		v := h.values[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, fmt.Sprintf("%g", b)), v.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n%s_sum%s %g\n%s_count%s %d\n",
			h.name, withLe(k, "+Inf"), v.counts[len(h.buckets)],
			h.name, k, v.sum,
			h.name, k, v.total,
		); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		parts[i] = name + "=\"" + escapeLabel(val) + "\""
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func escapeLabel(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(v)
}

func withLe(labels, le string) string {
	le = `le="` + escapeLabel(le) + `"`
	if labels == "" {
		return "{" + le + "}"
	}
	return strings.TrimSuffix(labels, "}") + "," + le + "}"
}
