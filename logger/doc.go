// Package logger provides structured logging for transcriptkit using zerolog.
//
// Loggers are component-scoped and accept structured fields as maps. Output
// goes to stderr by default, to stdout, or to a rotating file when Output
// names a path. Init installs the process logger; component loggers from Get
// are derived from it lazily and rebuilt after every Init.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "/var/log/transcriptkit/assembly.log"
//	  max_size: 100
//
// # Usage
//
//	logger.Init(cfg.Logging, "transcriptkit")
//	log := logger.Get("meeting")
//	log.Info("transcript assembled", logger.Fields(logger.FieldMeetingID, id, "segments", n))
package logger
