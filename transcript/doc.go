// Package transcript assembles speaker-attributed transcripts from raw ASR
// chunks and diarization intervals.
//
// Every stage is a pure function over ordered slices:
//
//	chunks    -> MergeChunks -> FilterHallucinations --+
//	                                                  +-> Align -> RemoveRedundant -> MergeTurns -> Label
//	intervals -> Smooth ---------------------------------+
//
// Assemble runs the whole flow and checks the context between stages. The
// package holds no state across invocations, so separate meetings can be
// assembled concurrently.
package transcript
