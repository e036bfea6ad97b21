package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/hwameistor/array-csi/pkg/array/pool"
)

var _ pool.Observer = (*MetricsCollector)(nil)

// MetricsCollector exposes the controller's connection pools and RPCs
type MetricsCollector struct {
	// for connection pools
	poolSizeMetrics     *prometheus.GaugeVec
	poolCheckoutMetrics *prometheus.CounterVec
	poolWaitMetrics     *prometheus.HistogramVec
	// for grpc
	rpcCountMetrics    *prometheus.CounterVec
	rpcDurationMetrics *prometheus.HistogramVec

	extraCollectors []prometheus.Collector
	registry        *prometheus.Registry
	metricsHandler  http.Handler
}

// NewHandler creates the collector; extra collectors are registered alongside
func NewHandler(extra ...prometheus.Collector) *MetricsCollector {
	mc := &MetricsCollector{
		poolSizeMetrics: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "array_csi_pool_size",
				Help: "The number of mediators checked out or idle in the pool.",
			},
			[]string{"pool"},
		),
		poolCheckoutMetrics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "array_csi_pool_checkouts_total",
				Help: "The mediator checkouts of the pool by result.",
			},
			[]string{"pool", "result"},
		),
		poolWaitMetrics: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "array_csi_pool_wait_seconds",
				Help:    "The time spent waiting for a mediator.",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"pool"},
		),
		rpcCountMetrics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "array_csi_rpc_total",
				Help: "The gRPC calls by method and status code.",
			},
			[]string{"method", "code"},
		),
		rpcDurationMetrics: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "array_csi_rpc_duration_seconds",
				Help:    "The duration of the gRPC calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		extraCollectors: extra,
	}
	mc.registerMetrics()
	return mc
}

// ObserveSize records the pool size
func (mc *MetricsCollector) ObserveSize(pool string, size int) {
	mc.poolSizeMetrics.WithLabelValues(pool).Set(float64(size))
}

// ObserveCheckout records one checkout
func (mc *MetricsCollector) ObserveCheckout(pool string, result string, wait time.Duration) {
	mc.poolCheckoutMetrics.WithLabelValues(pool, result).Inc()
	mc.poolWaitMetrics.WithLabelValues(pool).Observe(wait.Seconds())
}

// UnaryServerInterceptor counts the calls
func (mc *MetricsCollector) UnaryServerInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	mc.rpcCountMetrics.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	mc.rpcDurationMetrics.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	return resp, err
}

// Register adds collectors built after the handler, e.g. ones that read the
// agent registry the pools report to
func (mc *MetricsCollector) Register(collectors ...prometheus.Collector) {
	for _, c := range collectors {
		mc.registry.MustRegister(c)
	}
}

func (mc *MetricsCollector) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	mc.metricsHandler.ServeHTTP(resp, req)
}

func (mc *MetricsCollector) registerMetrics() {
	registry := prometheus.NewRegistry()
	mc.registry = registry

	// for connection pools
	registry.MustRegister(mc.poolSizeMetrics)
	registry.MustRegister(mc.poolCheckoutMetrics)
	registry.MustRegister(mc.poolWaitMetrics)
	// for grpc
	registry.MustRegister(mc.rpcCountMetrics)
	registry.MustRegister(mc.rpcDurationMetrics)

	for _, c := range mc.extraCollectors {
		registry.MustRegister(c)
	}

	mc.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
