// Package otel binds campusride engine metrics to an OpenTelemetry meter.
//
// [NewOTelExporter] registers an Int64ObservableCounter for each counter and
// an Int64ObservableGauge per histogram bucket. A single callback reads
// [campusride.Engine.MetricsSnapshot] on each collection cycle. Callers own
// the MeterProvider.
package otel
