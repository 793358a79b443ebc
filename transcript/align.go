package transcript

import "math"

// Align attributes every chunk with End > Start to its dominant speaker: the
// label with the largest total overlap against the chunk. Ties go to the
// label seen first in intervals. A chunk no interval touches takes the
// speaker whose interval midpoint is nearest its own; with no intervals at
// all it takes cfg.DefaultSpeaker.
//
// Segments come out in chunk order, which is not necessarily time order.
func Align(chunks []TimedText, intervals []SpeakerInterval, cfg Config) []AlignedSegment {
	out := make([]AlignedSegment, 0, len(chunks))
	for _, c := range chunks {
		if !finite(c.Start, c.End) || c.End <= c.Start {
			continue
		}
		out = append(out, AlignedSegment{
			Start:   c.Start,
			End:     c.End,
			Speaker: dominantSpeaker(c, intervals, cfg.DefaultSpeaker),
			Text:    c.Text,
		})
	}
	return out
}

func dominantSpeaker(c TimedText, intervals []SpeakerInterval, fallback string) string {
	if len(intervals) == 0 {
		return fallback
	}

	var order []string
	totals := make(map[string]float64)
	for _, iv := range intervals {
		ov := overlap(c.Start, c.End, iv.Start, iv.End)
		if ov <= 0 {
			continue
		}
		if _, seen := totals[iv.Speaker]; !seen {
			order = append(order, iv.Speaker)
		}
		totals[iv.Speaker] += ov
	}

	best, bestOverlap := "", 0.0
	for _, speaker := range order {
		if totals[speaker] > bestOverlap {
			best, bestOverlap = speaker, totals[speaker]
		}
	}
	if best != "" {
		return best
	}
	return nearestSpeaker(c, intervals)
}

func nearestSpeaker(c TimedText, intervals []SpeakerInterval) string {
	mid := (c.Start + c.End) / 2
	best, bestDist := intervals[0].Speaker, math.Inf(1)
	for _, iv := range intervals {
		if d := math.Abs(mid - iv.Midpoint()); d < bestDist {
			best, bestDist = iv.Speaker, d
		}
	}
	return best
}
