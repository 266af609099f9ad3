// Package metrics provides Prometheus metrics for the lighting HAL.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sysfsWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightnode",
		Subsystem: "sysfs",
		Name:      "writes_total",
		Help:      "Total control file writes",
	}, []string{"path"})

	sysfsWriteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightnode",
		Subsystem: "sysfs",
		Name:      "write_errors_total",
		Help:      "Total failed control file writes",
	}, []string{"path"})

	lightRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightnode",
		Name:      "light_requests_total",
		Help:      "Total light state requests by logical light",
	}, []string{"light"})

	backlightBrightness = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightnode",
		Name:      "backlight_brightness",
		Help:      "Last brightness value written to the backlight",
	})

	indicatorLit = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "lightnode",
		Name:      "indicator_lit",
		Help:      "Which source currently drives the indicator LED (1 for active)",
	}, []string{"source"})
)

// CountWrite records a control file write attempt.
func CountWrite(path string, err error) {
	sysfsWrites.WithLabelValues(path).Inc()
	if err != nil {
		sysfsWriteErrors.WithLabelValues(path).Inc()
	}
}

// CountLightRequest records a state request for a logical light.
func CountLightRequest(light string) {
	lightRequests.WithLabelValues(light).Inc()
}

// SetBacklightBrightness records the last brightness written.
func SetBacklightBrightness(v int) {
	backlightBrightness.Set(float64(v))
}

// SetIndicatorSource records which source drives the indicator LED.
// Exactly one of notification, battery, off is set to 1.
func SetIndicatorSource(source string) {
	for _, s := range []string{"notification", "battery", "off"} {
		v := 0.0
		if s == source {
			v = 1.0
		}
		indicatorLit.WithLabelValues(s).Set(v)
	}
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
