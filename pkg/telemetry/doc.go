// Package telemetry provides OpenTelemetry instrumentation for the graph
// container.
//
// A Provider owns the meter provider, a Prometheus exporter over a
// dedicated registry, and the instruments: counters for imports, prunes,
// input changes and vetoes, a histogram of member-node counts observed at
// structural events, and a histogram of cumulative feature callback time.
// The registry's Gatherer is exposed so the embedding service can mount it
// on its metrics endpoint; this library itself serves nothing.
//
// Feature adapts the provider to the container's listener protocol:
// attach it with fgraph.WithFeatures and every structural event is
// recorded, with a span per input change when tracing is enabled. Call
// Flush at the end of a rewrite pass to export the container's callback
// timings.
package telemetry
