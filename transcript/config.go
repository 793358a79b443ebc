package transcript

import (
	"strings"

	"github.com/kbukum/transcriptkit/validation"
)

// DefaultSpeaker is assigned when alignment has no intervals to choose from.
const DefaultSpeaker = "SPEAKER_00"

// Stitch gates accepted by Config.StitchGate.
const (
	// StitchBoundary accepts the longest restated run of StitchMinWords to
	// StitchWords words, and stitches when either the time overlap or the
	// share of the compared words that matched exceeds StitchOverlapFraction.
	StitchBoundary = "boundary"
	// StitchStrict requires all min(StitchWords, words(prev)) boundary words
	// to match and the time overlap alone to exceed StitchOverlapFraction.
	StitchStrict = "strict"
)

// Config holds the assembly heuristics. All durations are seconds.
type Config struct {
	// MergeGapSeconds joins same-speaker diarization intervals separated by less than this.
	MergeGapSeconds float64 `yaml:"merge_gap_seconds" mapstructure:"merge_gap_seconds" validate:"finite,gte=0"`
	// TurnGapSeconds joins same-speaker aligned segments into one turn.
	TurnGapSeconds float64 `yaml:"turn_gap_seconds" mapstructure:"turn_gap_seconds" validate:"finite,gte=0"`
	// OverlapDuplicateThreshold is the overlap fraction above which a contained segment is a ghost.
	OverlapDuplicateThreshold float64 `yaml:"overlap_duplicate_threshold" mapstructure:"overlap_duplicate_threshold" validate:"finite,gt=0,lte=1"`
	// StitchOverlapFraction gates word-level stitching of consecutive chunks.
	StitchOverlapFraction float64 `yaml:"stitch_overlap_fraction" mapstructure:"stitch_overlap_fraction" validate:"finite,gte=0,lt=1"`
	// StitchGate selects the stitching rule, StitchBoundary or StitchStrict.
	StitchGate string `yaml:"stitch_gate" mapstructure:"stitch_gate" validate:"oneof=boundary strict"`
	// StitchWords is the widest boundary compared when stitching.
	StitchWords int `yaml:"stitch_words" mapstructure:"stitch_words" validate:"gte=1"`
	// StitchMinWords is the shortest boundary accepted as a restatement.
	StitchMinWords int `yaml:"stitch_min_words" mapstructure:"stitch_min_words" validate:"gte=1,ltefield=StitchWords"`
	// DriftClampSeconds bounds the overlap treated as timestamp drift.
	DriftClampSeconds float64 `yaml:"drift_clamp_seconds" mapstructure:"drift_clamp_seconds" validate:"finite,gte=0"`
	// MinSegmentSeconds drops segments at or below this duration.
	MinSegmentSeconds float64 `yaml:"min_segment_seconds" mapstructure:"min_segment_seconds" validate:"finite,gte=0"`

	// SyntheticChunkSeconds is the duration given to text without usable timestamps.
	SyntheticChunkSeconds float64 `yaml:"synthetic_chunk_seconds" mapstructure:"synthetic_chunk_seconds" validate:"finite,gt=0"`
	// MaxUntimedChars caps untimed text that may still receive a synthetic duration.
	MaxUntimedChars int `yaml:"max_untimed_chars" mapstructure:"max_untimed_chars" validate:"gte=0"`
	// HallucinationMinWords and HallucinationUniqueRatio detect repetition loops in a block.
	HallucinationMinWords    int     `yaml:"hallucination_min_words" mapstructure:"hallucination_min_words" validate:"gte=1"`
	HallucinationUniqueRatio float64 `yaml:"hallucination_unique_ratio" mapstructure:"hallucination_unique_ratio" validate:"finite,gt=0,lte=1"`
	// RepeatedWordMin drops sub-chunks with more words than this that are all identical.
	RepeatedWordMin int `yaml:"repeated_word_min" mapstructure:"repeated_word_min" validate:"gte=1"`

	// DefaultSpeaker labels chunks aligned against an empty interval set.
	DefaultSpeaker string `yaml:"default_speaker" mapstructure:"default_speaker" validate:"required"`
	// LabelFormat renders the ordinal of a SPEAKER_NN label, e.g. "Speaker %d".
	LabelFormat string `yaml:"label_format" mapstructure:"label_format" validate:"required"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	c := Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MergeGapSeconds == 0 {
		c.MergeGapSeconds = 1.0
	}
	if c.TurnGapSeconds == 0 {
		c.TurnGapSeconds = 2.0
	}
	if c.OverlapDuplicateThreshold == 0 {
		c.OverlapDuplicateThreshold = 0.8
	}
	if c.StitchOverlapFraction == 0 {
		c.StitchOverlapFraction = 0.5
	}
	if c.StitchGate == "" {
		c.StitchGate = StitchBoundary
	}
	if c.StitchWords == 0 {
		c.StitchWords = 5
	}
	if c.StitchMinWords == 0 {
		c.StitchMinWords = 2
	}
	if c.DriftClampSeconds == 0 {
		c.DriftClampSeconds = 1.0
	}
	if c.MinSegmentSeconds == 0 {
		c.MinSegmentSeconds = 0.1
	}
	if c.SyntheticChunkSeconds == 0 {
		c.SyntheticChunkSeconds = 2.0
	}
	if c.MaxUntimedChars == 0 {
		c.MaxUntimedChars = 200
	}
	if c.HallucinationMinWords == 0 {
		c.HallucinationMinWords = 10
	}
	if c.HallucinationUniqueRatio == 0 {
		c.HallucinationUniqueRatio = 0.1
	}
	if c.RepeatedWordMin == 0 {
		c.RepeatedWordMin = 4
	}
	if c.DefaultSpeaker == "" {
		c.DefaultSpeaker = DefaultSpeaker
	}
	if c.LabelFormat == "" {
		c.LabelFormat = "Speaker %d"
	}
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return validation.New().
		Check(singleOrdinalVerb(c.LabelFormat), "label_format", "must contain exactly one %d").
		Err()
}

// singleOrdinalVerb reports whether format renders one integer and nothing else.
func singleOrdinalVerb(format string) bool {
	if strings.Count(format, "%d") != 1 {
		return false
	}
	rest := strings.ReplaceAll(strings.Replace(format, "%d", "", 1), "%%", "")
	return !strings.Contains(rest, "%")
}
