package transcript

import (
	"fmt"

	"github.com/kbukum/transcriptkit/errors"
)

// RemoveRedundant drops ghost segments left over from window overlap and
// repairs small timestamp drift. Segments must be sorted by start.
//
// Each segment is compared with the last accepted one. It is a ghost, and
// dropped, when more than OverlapDuplicateThreshold of it lies inside the
// accepted segment and all its words already occur there. Otherwise, if it
// starts before the accepted one ends but overlaps it by less than
// DriftClampSeconds, its start is moved to that end. Segments no longer
// than MinSegmentSeconds are dropped.
func RemoveRedundant(segments []AlignedSegment, cfg Config) ([]AlignedSegment, error) {
	for i := 1; i < len(segments); i++ {
		if segments[i].Start < segments[i-1].Start {
			return nil, errors.Precondition("redundancy removal",
				fmt.Sprintf("segment %d starts at %g before segment %d at %g", i, segments[i].Start, i-1, segments[i-1].Start))
		}
	}

	out := make([]AlignedSegment, 0, len(segments))
	for _, cur := range segments {
		if len(out) > 0 {
			prev := out[len(out)-1]
			ov := overlap(prev.Start, prev.End, cur.Start, cur.End)
			if d := cur.Duration(); d > 0 && ov/d > cfg.OverlapDuplicateThreshold && wordSubset(cur.Text, prev.Text) {
				continue
			}
			if cur.Start < prev.End && ov < cfg.DriftClampSeconds {
				cur.Start = prev.End
			}
		}
		if cur.Duration() <= cfg.MinSegmentSeconds {
			continue
		}
		out = append(out, cur)
	}
	return out, nil
}
