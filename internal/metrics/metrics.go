// Package metrics exposes keyled's Prometheus collectors: event counts,
// LED write counts and gauges mirroring the indicator state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/klinkhq/keyled/internal/events"
	"github.com/klinkhq/keyled/internal/indicator"
)

// Set bundles the registry and collectors for one daemon instance.
type Set struct {
	registry *prometheus.Registry

	eventsTotal    *prometheus.CounterVec
	ledWritesTotal prometheus.Counter
}

// New creates a metric set with process and Go runtime collectors
// pre-registered.
func New() *Set {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	s := &Set{
		registry: registry,
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keyled_events_total",
			Help: "Keyboard events processed, by event type.",
		}, []string{"type"}),
		ledWritesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keyled_led_writes_total",
			Help: "Color masks pushed to the LED driver.",
		}),
	}
	registry.MustRegister(s.eventsTotal, s.ledWritesTotal)
	return s
}

// Handler returns the /metrics HTTP handler.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveBus counts published keyboard events. Returns an unsubscribe
// function.
func (s *Set) ObserveBus(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(events.ProfileChangedEvent) {
			s.eventsTotal.WithLabelValues("profile_changed").Inc()
		}),
		bus.Subscribe(func(events.IndicatorsChangedEvent) {
			s.eventsTotal.WithLabelValues("indicators_changed").Inc()
		}),
		bus.Subscribe(func(events.BatteryStateChangedEvent) {
			s.eventsTotal.WithLabelValues("battery_changed").Inc()
		}),
		bus.Subscribe(func(events.KeycodeStateChangedEvent) {
			s.eventsTotal.WithLabelValues("keycode_changed").Inc()
		}),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// RegisterStateGauges exposes the indicator state through gauges sampled
// at scrape time.
func (s *Set) RegisterStateGauges(snapshot func() indicator.Snapshot) {
	s.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "keyled_battery_percent",
			Help: "Last reported battery percentage.",
		}, func() float64 { return float64(snapshot().Battery) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "keyled_connection_state",
			Help: "Connection state: 0 idle, 1 pending, 2 connected.",
		}, func() float64 { return float64(snapshot().Connection) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "keyled_active_profile",
			Help: "Active Bluetooth profile slot.",
		}, func() float64 { return float64(snapshot().ActiveDevice) }),
	)
}

// instrumentedSink counts color writes on their way to the driver.
type instrumentedSink struct {
	sink    indicator.ColorSink
	counter prometheus.Counter
}

func (i *instrumentedSink) SetColor(bits uint8) error {
	i.counter.Inc()
	return i.sink.SetColor(bits)
}

// InstrumentSink wraps a color sink so every write is counted.
func (s *Set) InstrumentSink(sink indicator.ColorSink) indicator.ColorSink {
	return &instrumentedSink{sink: sink, counter: s.ledWritesTotal}
}
