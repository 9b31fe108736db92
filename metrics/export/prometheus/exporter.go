package prometheus

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quillpost/quillpost"
	"github.com/quillpost/quillpost/metrics/export/internaldefs"
)

var ErrNilSource = errors.New("nil metrics source")

type metricsSource interface {
	MetricsSnapshot() quillpost.MetricsSnapshot
}

type counterDesc struct {
	id   quillpost.MetricID
	desc *prometheus.Desc
}

type histogramDesc struct {
	id   quillpost.MetricID
	desc *prometheus.Desc
}

// Collector turns engine snapshots into Prometheus metrics.
type Collector struct {
	source     metricsSource
	bounds     []float64
	counters   []counterDesc
	histograms []histogramDesc
}

// NewCollector reads from engine on every scrape.
func NewCollector(engine *quillpost.Engine) (*Collector, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	return NewCollectorFromSource(engine)
}

func NewCollectorFromSource(source metricsSource) (*Collector, error) {
	if source == nil {
		return nil, ErrNilSource
	}

	c := &Collector{
		source:     source,
		bounds:     internaldefs.UpperBounds(),
		counters:   make([]counterDesc, 0, len(internaldefs.CounterDefs)),
		histograms: make([]histogramDesc, 0, len(internaldefs.HistogramDefs)),
	}
	for _, def := range internaldefs.CounterDefs {
		c.counters = append(c.counters, counterDesc{
			id:   def.ID,
			desc: prometheus.NewDesc(def.Name, def.Help, nil, nil),
		})
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histograms = append(c.histograms, histogramDesc{
			id:   def.ID,
			desc: prometheus.NewDesc(def.Name, def.Help, nil, nil),
		})
	}
	return c, nil
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.counters {
		ch <- d.desc
	}
	for _, d := range c.histograms {
		ch <- d.desc
	}
}

// Collect emits one consistent snapshot. A disabled engine yields nothing.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.source.MetricsSnapshot()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 {
		return
	}

	for _, d := range c.counters {
		ch <- prometheus.MustNewConstMetric(d.desc, prometheus.CounterValue, float64(snapshot.Counters[d.id]))
	}

	for _, d := range c.histograms {
		raw, ok := snapshot.Histograms[d.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(c.bounds))
		for i, bound := range c.bounds {
			buckets[bound] = cumulative[i]
		}
		// the snapshot carries no sum
		ch <- prometheus.MustNewConstHistogram(d.desc, cumulative[len(cumulative)-1], 0, buckets)
	}
}
