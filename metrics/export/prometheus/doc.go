// Package prometheus renders campusride engine metrics in the Prometheus
// text exposition format.
//
// [NewPrometheusExporter] accepts a [campusride.Engine] and exposes an
// [http.Handler] suitable for mounting at /metrics. Counter names are
// prefixed campusride_*_total. Two histograms are published:
// campusride_authenticate_latency_seconds and
// campusride_notification_latency_seconds.
//
// The exporter never registers with a global registry and never mutates
// engine state.
package prometheus
