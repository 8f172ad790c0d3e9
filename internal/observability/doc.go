// Package observability builds the process logger and the Prometheus
// collectors for the authentication pipeline.
//
// Collectors are registered on an explicit prometheus.Registerer so tests can
// use a private registry. A nil *AuthMetrics is valid and records nothing.
package observability
