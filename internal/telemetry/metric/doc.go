// Package metric provides Prometheus metrics for token registration.
//
// Registry owns a private prometheus.Registry and implements the
// service.Metrics sink. A CLI run is short-lived, so the collected
// samples are exported at exit instead of being scraped:
//
//   - WriteTextfile writes them for the node_exporter textfile collector
//   - Push sends them to a Prometheus Pushgateway
package metric
