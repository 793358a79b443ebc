// Package config loads the transcriptkit configuration.
//
// Values come from a YAML file, an optional .env file and the process
// environment, in increasing order of precedence. Environment variables use
// underscore-separated paths with the TRANSCRIPTKIT_ prefix, for example
// TRANSCRIPTKIT_ENGINES_SLOTS=2 or TRANSCRIPTKIT_STORE_DATABASE_DSN=/data/tk.db.
//
//	cfg, err := config.Load(config.WithConfigFile("config.yml"))
package config
