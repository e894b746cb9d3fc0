// Package prometheus renders engine metrics in Prometheus text
// exposition format. The exporter is pull-based and dependency-free: it
// reads counter snapshots and hand-writes the text format.
package prometheus
