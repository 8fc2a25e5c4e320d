// Package metrics exposes wrapper protocol counters and timings in
// Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dynkit/retype/internal/object"
)

// Collector tracks protocol activity. It implements object.Hook, so a
// runtime built with WithHook(collector) feeds it directly.
type Collector struct {
	reg prometheus.Registerer

	captures    *prometheus.CounterVec
	invocations *prometheus.CounterVec
	upgrades    *prometheus.CounterVec
	migrations  *prometheus.CounterVec
	invokeTime  *prometheus.HistogramVec
	upgradeTime prometheus.Histogram
}

// NewCollector creates a collector and registers its metrics. A nil
// registerer falls back to the default Prometheus registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		reg: reg,
		captures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retype_captures_total",
				Help: "Construction records attached, by class",
			},
			[]string{"class"},
		),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retype_invocations_total",
				Help: "Wrapped callable invocations, by wrapper kind and result",
			},
			[]string{"kind", "result"},
		),
		upgrades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retype_upgrades_total",
				Help: "Factory result upgrades, by outcome",
			},
			[]string{"outcome"},
		),
		migrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retype_migrations_total",
				Help: "Attribute migrations onto upgraded instances, by outcome",
			},
			[]string{"outcome"},
		),
		invokeTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "retype_invoke_duration_seconds",
				Help:    "Wrapped callable latency, by wrapper kind",
				Buckets: prometheus.ExponentialBuckets(0.000001, 10, 8),
			},
			[]string{"kind"},
		),
		upgradeTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retype_upgrade_duration_seconds",
				Help:    "Time spent rebuilding and migrating one factory result",
				Buckets: prometheus.ExponentialBuckets(0.000001, 10, 8),
			},
		),
	}

	reg.MustRegister(c.captures)
	reg.MustRegister(c.invocations)
	reg.MustRegister(c.upgrades)
	reg.MustRegister(c.migrations)
	reg.MustRegister(c.invokeTime)
	reg.MustRegister(c.upgradeTime)

	return c
}

func (c *Collector) OnCapture(ev object.CaptureEvent) {
	c.captures.WithLabelValues(ev.Class).Inc()
}

func (c *Collector) OnInvoke(ev object.InvokeEvent) {
	result := "ok"
	if ev.Err != nil {
		result = "error"
	}
	c.invocations.WithLabelValues(string(ev.Wrapper), result).Inc()
	c.invokeTime.WithLabelValues(string(ev.Wrapper)).Observe(ev.Duration.Seconds())
}

func (c *Collector) OnUpgrade(ev object.UpgradeEvent) {
	c.upgrades.WithLabelValues(ev.Outcome).Inc()
	c.upgradeTime.Observe(ev.Duration.Seconds())
}

func (c *Collector) OnMigrate(ev object.MigrateEvent) {
	c.migrations.WithLabelValues(ev.Outcome).Inc()
}

// Handler returns an HTTP handler serving the collector's registry.
func (c *Collector) Handler() http.Handler {
	if g, ok := c.reg.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}
