// Package engine defines the contracts for the external inference engines
// (speech-to-text and speaker diarization) and the plumbing shared by every
// adapter: a generic registry of engine factories, selection strategies, a
// bounded inference-slot pool, caller-side retry, and the sliding-window
// decoding plan.
//
// Concrete adapters live in sub-packages (engine/whisper, engine/pyannote)
// and register themselves through a Factory.
package engine
