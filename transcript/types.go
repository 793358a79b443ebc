package transcript

import (
	"encoding/json"
	"math"
)

// TimedText is a piece of decoded text anchored to the audio timeline, in seconds.
type TimedText struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns End - Start.
func (t TimedText) Duration() float64 { return t.End - t.Start }

// SpeakerInterval is a span attributed to one diarization cluster. Speaker
// labels are only meaningful within a single diarization run.
type SpeakerInterval struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Duration returns End - Start.
func (s SpeakerInterval) Duration() float64 { return s.End - s.Start }

// Midpoint returns the center of the interval.
func (s SpeakerInterval) Midpoint() float64 { return (s.Start + s.End) / 2 }

// OverlapRegion is a span where two or more speakers are active at once.
type OverlapRegion struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// SpeakerStat aggregates the smoothed intervals of one speaker.
type SpeakerStat struct {
	Speaker           string  `json:"speaker"`
	TotalSpeakingTime float64 `json:"total_speaking_time"`
	SegmentCount      int     `json:"segment_count"`
}

// AlignedSegment is one entry of the final transcript.
//
// Speaker is empty when diarization was skipped; it is encoded as JSON null.
type AlignedSegment struct {
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Speaker          string  `json:"speaker"`
	Label            string  `json:"label,omitempty"`
	Text             string  `json:"text"`
	IsOverlap        bool    `json:"is_overlap"`
	SpeakerTotalTime float64 `json:"speaker_total_time,omitempty"`
}

// Duration returns End - Start.
func (s AlignedSegment) Duration() float64 { return s.End - s.Start }

// MarshalJSON writes an unattributed segment with a null speaker.
func (s AlignedSegment) MarshalJSON() ([]byte, error) {
	type plain AlignedSegment
	var speaker *string
	if s.Speaker != "" {
		speaker = &s.Speaker
	}
	return json.Marshal(struct {
		plain
		Speaker *string `json:"speaker"`
	}{plain(s), speaker})
}

// overlap returns the length of the intersection of [aStart, aEnd) and [bStart, bEnd).
func overlap(aStart, aEnd, bStart, bEnd float64) float64 {
	return math.Max(0, math.Min(aEnd, bEnd)-math.Max(aStart, bStart))
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
