// Package ingest normalizes transcript payloads from outside the pipeline
// into chunks and speaker intervals ready for transcript.Assemble.
//
// Three JSON document shapes are recognised:
//
//   - native: {"chunks": [{start, end, text}], "intervals": [{start, end, speaker}]}
//   - utterances: {"utterances": [{start, end, text, speaker}]}, as returned by
//     hosted ASR vendors with speaker labels enabled
//   - words: {"words": [{start, end, text, speaker_id, channel_index, type}]},
//     word-level vendor output grouped here into per-speaker runs
//
// Vendor timestamps above MillisecondThreshold are read as milliseconds and
// vendor speaker names are rewritten to the SPEAKER_NN form the pipeline uses.
package ingest
