// Package validation checks configuration sections and inbound payloads.
//
// Struct tag validation (go-playground/validator) covers config structs;
// field names in messages follow their mapstructure keys so they match what
// operators write in config.yml. Checks covers rules that span several
// fields, such as interval bounds or paired TLS files.
//
//	type Config struct {
//	    MergeGapSeconds float64 `mapstructure:"merge_gap_seconds" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
//	err = validation.New().
//	    Interval("intervals[3]", iv.Start, iv.End).
//	    Err()
package validation
