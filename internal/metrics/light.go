// Package metrics exposes the strip state and controller activity as
// Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stripd"

var (
	level = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "level",
		Help:      "Current brightness level (0-255)",
	})

	color = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "color",
		Help:      "Current colour intensity per channel (0-255)",
	}, []string{"channel"})

	duty = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "duty",
		Help:      "Programmed PWM duty per channel (0-255)",
	}, []string{"channel"})

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Applied state changes by kind (startup, color, level)",
	}, []string{"kind"})

	persistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persist_failures_total",
		Help:      "Colour snapshots that could not be saved",
	})
)

// ChannelValues holds one value per strip channel.
type ChannelValues struct {
	R, G, B, W uint8
}

func (v ChannelValues) set(vec *prometheus.GaugeVec) {
	vec.WithLabelValues("r").Set(float64(v.R))
	vec.WithLabelValues("g").Set(float64(v.G))
	vec.WithLabelValues("b").Set(float64(v.B))
	vec.WithLabelValues("w").Set(float64(v.W))
}

// SetLight records the state after a mutation of the given kind.
func SetLight(kind string, c ChannelValues, lvl uint8, d ChannelValues) {
	level.Set(float64(lvl))
	c.set(color)
	d.set(duty)
	mutations.WithLabelValues(kind).Inc()
}

// IncPersistFailures counts a failed snapshot save.
func IncPersistFailures() {
	persistFailures.Inc()
}
