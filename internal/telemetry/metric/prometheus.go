package metric

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "artifact"

// Store operation results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Registration metrics
	Registrations  *prometheus.CounterVec
	RuleViolations *prometheus.CounterVec

	// Storage metrics
	StoreDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with the application metrics, the
// build info collector and the Go runtime collector registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Token registrations by outcome",
		}, []string{"outcome"}),

		RuleViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_violations_total",
			Help:      "Rejected token names and ids by error code",
		}, []string{"code"}),

		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_seconds",
			Help:      "Token store operation latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op", "result"}),
	}

	r.reg.MustRegister(
		r.Registrations,
		r.RuleViolations,
		r.StoreDuration,
		NewBuildInfoCollector(),
		collectors.NewGoCollector(),
	)
	return r
}

// Registerer returns the underlying registerer so other components (the
// storage engines) can add their own collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// Gatherer returns the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveRegistration counts a registration outcome.
func (r *Registry) ObserveRegistration(outcome string) {
	r.Registrations.WithLabelValues(outcome).Inc()
}

// ObserveViolation counts a rejected input by error code.
func (r *Registry) ObserveViolation(code string) {
	if code == "" {
		code = "unknown"
	}
	r.RuleViolations.WithLabelValues(code).Inc()
}

// ObserveStore records the latency of a store operation.
func (r *Registry) ObserveStore(op string, d time.Duration, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.StoreDuration.WithLabelValues(op, result).Observe(d.Seconds())
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is written atomically.
func (r *Registry) WriteTextfile(path string) error {
	if path == "" {
		return errors.New("metric: textfile path is empty")
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metric: write textfile: %w", err)
	}
	return nil
}

// Push sends all metrics to the Pushgateway at url under job.
func (r *Registry) Push(url, job string) error {
	if url == "" {
		return errors.New("metric: pushgateway url is empty")
	}
	if err := push.New(url, job).Gatherer(r.reg).Push(); err != nil {
		return fmt.Errorf("metric: push: %w", err)
	}
	return nil
}
