// Package metrics counts what the orbit resolver does with Prometheus.
package metrics

import (
	"fmt"
	"io"

	"github.com/kspcalc/orbitcalc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Warning kinds used as the "kind" label of orbitcalc_warnings_total.
const (
	KindAltitude  = "altitude"
	KindPeriapsis = "periapsis"
)

// Collector bundles the resolver metrics. It implements orbitcalc.Observer.
type Collector struct {
	gatherer prometheus.Gatherer

	Updates  *prometheus.CounterVec
	Swaps    prometheus.Counter
	NaNs     prometheus.Counter
	Warnings *prometheus.CounterVec
}

var _ orbitcalc.Observer = (*Collector)(nil)

// NewCollector registers the resolver metrics against reg, defaulting to the global
// Prometheus registry when nil. Registering twice on the same registry reuses the
// existing metrics.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	updates, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orbitcalc_updates_total",
		Help: "Number of resolved field changes, labeled by field and by the lock active before the change. Body selection is not counted.",
	}, []string{"field", "lock"}), "orbitcalc_updates_total")
	if err != nil {
		return nil, err
	}
	swaps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orbitcalc_apsis_swaps_total",
		Help: "Number of changes which swapped the apoapsis and the periapsis.",
	}), "orbitcalc_apsis_swaps_total")
	if err != nil {
		return nil, err
	}
	nans, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orbitcalc_nan_results_total",
		Help: "Number of changes which left a NaN or infinite value in the orbit.",
	}), "orbitcalc_nan_results_total")
	if err != nil {
		return nil, err
	}
	warnings, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orbitcalc_warnings_total",
		Help: "Number of changes which raised a warning, labeled by kind.",
	}, []string{"kind"}), "orbitcalc_warnings_total")
	if err != nil {
		return nil, err
	}

	return &Collector{gatherer: gatherer, Updates: updates, Swaps: swaps, NaNs: nans, Warnings: warnings}, nil
}

// ObserveResolve records one resolved change.
func (c *Collector) ObserveResolve(field orbitcalc.Field, lock orbitcalc.Lock, res orbitcalc.Result) {
	if c == nil {
		return
	}
	c.Updates.WithLabelValues(field.String(), lock.String()).Inc()
	if res.Swapped {
		c.Swaps.Inc()
	}
	if res.State.HasNaN() {
		c.NaNs.Inc()
	}
	if res.Warnings.AltitudeLow {
		c.Warnings.WithLabelValues(KindAltitude).Inc()
	}
	if res.Warnings.PeriapsisLow {
		c.Warnings.WithLabelValues(KindPeriapsis).Inc()
	}
}

// WriteText writes every gathered metric family to w in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("could not gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
