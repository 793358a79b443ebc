// Package telemetry wires OpenTelemetry tracing and metrics for the
// transcript backend.
//
// Init installs OTLP/HTTP exporters for traces and metrics as the global
// providers. When telemetry is disabled the global no-op providers stay in
// place, so instrumented code needs no special casing.
//
// Metrics holds the instruments recorded by the meeting processor: processing
// outcomes and latency, segment and drop counts per pipeline stage, engine
// call latency, and accelerator slot usage.
package telemetry
