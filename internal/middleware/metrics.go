package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/metrics"
)

// Metrics counts and times requests by method and route pattern.
func Metrics(m *metrics.HTTP) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := newStatusRecorder(w)
			m.InFlight.Inc()
			start := time.Now()
			next.ServeHTTP(ww, r)
			m.InFlight.Dec()

			route := routePattern(r)
			m.ReqTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.status)).Inc()
			m.ReqDur.WithLabelValues(r.Method, route).Observe(metrics.DurationMillis(time.Since(start)))
		})
	}
}
