// Package otel bridges engine metrics to OpenTelemetry observable
// instruments. Only the otel metric API is imported; the caller supplies
// a Meter from whatever SDK pipeline they run.
package otel
