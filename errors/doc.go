// Package errors provides the structured error type shared by transcriptkit
// packages. Every failure carries a machine-readable code and a retryable
// flag so callers can tell a defect in the pipeline apart from an upstream
// inference engine that merely failed this time.
package errors
