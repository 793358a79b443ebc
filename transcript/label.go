package transcript

import (
	"fmt"
	"strconv"
	"strings"
)

// Sequence makes turns monotonic without extending the time they cover. A
// turn that starts before its predecessor ends is simultaneous speech: both
// are flagged IsOverlap and the shared span is given to one of them. A turn
// running past its predecessor starts where the predecessor ends; a turn
// nested inside it cuts the predecessor at its own start. When the nested
// turn starts no later than its predecessor, the predecessor's span is
// split in half between the two.
func Sequence(turns []AlignedSegment) []AlignedSegment {
	out := make([]AlignedSegment, 0, len(turns))
	for _, t := range turns {
		if n := len(out); n > 0 && t.Start < out[n-1].End {
			prev := &out[n-1]
			prev.IsOverlap, t.IsOverlap = true, true
			switch {
			case t.End > prev.End:
				t.Start = prev.End
			case t.Start > prev.Start:
				prev.End = t.Start
			default:
				mid := prev.Start + prev.Duration()/2
				t.Start, t.End = mid, prev.End
				prev.End = mid
			}
		}
		out = append(out, t)
	}
	return out
}

// Label fills the presentation fields of each turn: the ordinal label, the
// overlap flag from the diarization overlap regions, and the speaker's total
// speaking time. A nil diarization leaves IsOverlap and SpeakerTotalTime as
// they are.
func Label(turns []AlignedSegment, d *Diarization, cfg Config) []AlignedSegment {
	out := make([]AlignedSegment, len(turns))
	for i, t := range turns {
		t.Label = SpeakerLabel(t.Speaker, cfg.LabelFormat)
		if d != nil {
			t.IsOverlap = t.IsOverlap || intersectsAny(t, d.Overlaps)
			t.SpeakerTotalTime = d.TotalTime(t.Speaker)
		}
		out[i] = t
	}
	return out
}

// SpeakerLabel maps a cluster label ending in a number, such as
// "SPEAKER_07", to its one-based ordinal rendered with format ("Speaker 8").
// Other labels are returned unchanged.
func SpeakerLabel(speaker, format string) string {
	i := strings.LastIndexAny(speaker, "_- ")
	if i < 0 {
		return speaker
	}
	n, err := strconv.Atoi(speaker[i+1:])
	if err != nil || n < 0 {
		return speaker
	}
	return fmt.Sprintf(format, n+1)
}

func intersectsAny(t AlignedSegment, regions []OverlapRegion) bool {
	for _, r := range regions {
		if t.Start < r.End && r.Start < t.End {
			return true
		}
	}
	return false
}
