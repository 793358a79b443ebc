package transcript

import (
	"strings"
)

// MergeTurns folds consecutive same-speaker segments whose gap is under
// TurnGapSeconds into a single turn.
func MergeTurns(segments []AlignedSegment, cfg Config) []AlignedSegment {
	turns := make([]AlignedSegment, 0, len(segments))
	for _, seg := range segments {
		if n := len(turns); n > 0 {
			cur := &turns[n-1]
			if seg.Speaker == cur.Speaker && seg.Start-cur.End < cfg.TurnGapSeconds {
				cur.Text = joinText(cur.Text, seg.Text)
				cur.End = max(cur.End, seg.End)
				cur.IsOverlap = cur.IsOverlap || seg.IsOverlap
				continue
			}
		}
		turns = append(turns, seg)
	}
	return turns
}

func joinText(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
