// Package store persists meetings and transcripts.
//
// Repository keeps meetings, transcript segments and per-run diarization
// context in a SQL database through GORM (SQLite driver). Cache keeps
// assembled transcripts in Redis as JSON with a TTL. Both satisfy the ports
// declared by the meeting package.
package store
