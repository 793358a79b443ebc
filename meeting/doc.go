// Package meeting owns the recording lifecycle and drives transcript
// processing for a single meeting.
//
// A meeting moves through recording, paused, processing and one of the
// outcomes completed, error or cancelled. Service applies those transitions
// against a Repository and announces them through a Publisher. Processor
// runs the inference engines for a stopped meeting, assembles the
// speaker-aligned transcript and persists it.
//
// Persistence, caching and event delivery are ports: the store and events
// packages provide the production implementations.
package meeting
