// Package metrics owns the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTP groups the request collectors.
type HTTP struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTP registers and returns HTTP collectors. Nil reg means the default
// registerer.
func NewHTTP(namespace string, buckets []float64, reg prometheus.Registerer) *HTTP {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500}
	} else {
		sort.Float64s(buckets)
	}

	m := &HTTP{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   buckets,
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}
	m.ReqTotal = register(reg, m.ReqTotal)
	m.ReqDur = register(reg, m.ReqDur)
	m.InFlight = register(reg, m.InFlight)
	return m
}

// Domain counts what customers do with the menu and the cart. All methods
// are safe on a nil *Domain.
type Domain struct {
	recomputes    *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	lineItems     *prometheus.CounterVec
	orders        *prometheus.CounterVec
	orderTotal    prometheus.Histogram
	cartItemCount prometheus.Gauge
}

// NewDomain registers and returns the domain collectors.
func NewDomain(namespace string, reg prometheus.Registerer) *Domain {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	d := &Domain{
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "configurator_recomputes_total",
			Help:      "Price recomputations per product.",
		}, []string{"product"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantity_rejections_total",
			Help:      "Quantity inputs rejected and rolled back.",
		}, []string{"owner"}),
		lineItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_line_items_total",
			Help:      "Line items added to or removed from the cart.",
		}, []string{"product", "action"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"result"}),
		orderTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_price",
			Help:      "Total price of accepted orders.",
			Buckets:   []float64{10, 25, 50, 100, 200, 400, 800},
		}),
		cartItemCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_item_count",
			Help:      "Units currently in the cart.",
		}),
	}
	d.recomputes = register(reg, d.recomputes)
	d.rejections = register(reg, d.rejections)
	d.lineItems = register(reg, d.lineItems)
	d.orders = register(reg, d.orders)
	d.orderTotal = register(reg, d.orderTotal)
	d.cartItemCount = register(reg, d.cartItemCount)
	return d
}

// Recomputed counts one configurator recomputation.
func (d *Domain) Recomputed(productID string) {
	if d == nil {
		return
	}
	d.recomputes.WithLabelValues(productID).Inc()
}

// QuantityRejected counts one rolled-back quantity input. owner is
// "configurator" or "line_item".
func (d *Domain) QuantityRejected(owner string) {
	if d == nil {
		return
	}
	d.rejections.WithLabelValues(owner).Inc()
}

// LineAdded counts a line item entering the cart.
func (d *Domain) LineAdded(productID string) {
	if d == nil {
		return
	}
	d.lineItems.WithLabelValues(productID, "added").Inc()
}

// LineRemoved counts a line item leaving the cart.
func (d *Domain) LineRemoved(productID string) {
	if d == nil {
		return
	}
	d.lineItems.WithLabelValues(productID, "removed").Inc()
}

// CartItems records the current unit count of the cart.
func (d *Domain) CartItems(n int) {
	if d == nil {
		return
	}
	d.cartItemCount.Set(float64(n))
}

// OrderPlaced counts an accepted order and observes its total.
func (d *Domain) OrderPlaced(total float64) {
	if d == nil {
		return
	}
	d.orders.WithLabelValues("accepted").Inc()
	d.orderTotal.Observe(total)
}

// OrderRejected counts a failed checkout. reason is a short label such as
// "empty_cart".
func (d *Domain) OrderRejected(reason string) {
	if d == nil {
		return
	}
	d.orders.WithLabelValues(reason).Inc()
}

// DurationMillis converts a duration to milliseconds for observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// register adds c to reg. When an equal collector is already registered
// the existing one is returned so that constructors can run more than once
// against the same registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(fmt.Errorf("register collector: %w", err))
	}
	return c
}
