// Package exporters serves the metrics registry over HTTP.
package exporters

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler returns the Prometheus metrics HTTP handler for all
// promauto-registered metrics.
func HTTPHandler() http.Handler {
	return promhttp.Handler()
}
