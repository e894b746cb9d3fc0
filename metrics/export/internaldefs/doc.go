// Package internaldefs holds the shared metric name table used by the
// prometheus and otel exporters, so both emit identical series names.
package internaldefs
