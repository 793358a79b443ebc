package transcript

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/transcriptkit/errors"
)

// Diarization is the smoothed view of one diarization run.
type Diarization struct {
	Intervals []SpeakerInterval `json:"intervals"`
	Overlaps  []OverlapRegion   `json:"overlaps"`
	Stats     []SpeakerStat     `json:"stats"`
}

// ForSpeaker returns the smoothed intervals attributed to speaker.
func (d *Diarization) ForSpeaker(speaker string) []SpeakerInterval {
	return keepWhere(d.Intervals, func(iv SpeakerInterval) bool { return iv.Speaker == speaker })
}

// keepWhere returns the items matching keep, in order, as a new slice.
func keepWhere[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// TotalTime returns the speaking time of speaker, or 0 when unknown.
func (d *Diarization) TotalTime(speaker string) float64 {
	for _, s := range d.Stats {
		if s.Speaker == speaker {
			return s.TotalSpeakingTime
		}
	}
	return 0
}

// SanitizeIntervals drops intervals that Smooth would reject: non-finite or
// non-positive spans and blank speaker labels. It returns the kept intervals
// and the number dropped.
func SanitizeIntervals(intervals []SpeakerInterval) ([]SpeakerInterval, int) {
	out := make([]SpeakerInterval, 0, len(intervals))
	for _, iv := range intervals {
		if !finite(iv.Start, iv.End) || iv.End <= iv.Start || strings.TrimSpace(iv.Speaker) == "" {
			continue
		}
		out = append(out, iv)
	}
	return out, len(intervals) - len(out)
}

// Smooth sorts intervals by start, merges fragmented same-speaker
// neighbours, and derives overlap regions and per-speaker statistics from
// the merged set. The input slice is not modified.
//
// An interval with End <= Start is a precondition violation; callers that
// accept raw engine output run SanitizeIntervals first.
func Smooth(intervals []SpeakerInterval, cfg Config) (*Diarization, error) {
	for i, iv := range intervals {
		if !finite(iv.Start, iv.End) || iv.End <= iv.Start {
			return nil, errors.Precondition("diarization smoothing",
				fmt.Sprintf("interval %d (%s) spans [%g, %g]", i, iv.Speaker, iv.Start, iv.End))
		}
	}

	sorted := slices.Clone(intervals)
	slices.SortStableFunc(sorted, func(a, b SpeakerInterval) int {
		return cmp.Compare(a.Start, b.Start)
	})
	merged := mergeIntervals(sorted, cfg.MergeGapSeconds)

	return &Diarization{
		Intervals: merged,
		Overlaps:  DetectOverlaps(merged),
		Stats:     SpeakerStats(merged),
	}, nil
}

// mergeIntervals folds each interval into its predecessor when both belong
// to the same speaker and the gap between them is under gap.
func mergeIntervals(sorted []SpeakerInterval, gap float64) []SpeakerInterval {
	if len(sorted) == 0 {
		return []SpeakerInterval{}
	}
	out := []SpeakerInterval{sorted[0]}
	for _, next := range sorted[1:] {
		cur := &out[len(out)-1]
		if next.Speaker == cur.Speaker && next.Start-cur.End < gap {
			cur.End = max(cur.End, next.End)
			continue
		}
		out = append(out, next)
	}
	return out
}

type boundary struct {
	at      float64
	delta   int
	speaker string
}

// DetectOverlaps sweeps interval boundaries in time order and returns every
// maximal range where at least two distinct speakers are active. Touching
// intervals do not overlap.
func DetectOverlaps(intervals []SpeakerInterval) []OverlapRegion {
	events := make([]boundary, 0, 2*len(intervals))
	for _, iv := range intervals {
		events = append(events,
			boundary{at: iv.Start, delta: 1, speaker: iv.Speaker},
			boundary{at: iv.End, delta: -1, speaker: iv.Speaker})
	}
	slices.SortFunc(events, func(a, b boundary) int { return cmp.Compare(a.at, b.at) })

	active := make(map[string]int)
	regions := []OverlapRegion{}
	open := false
	var start float64
	for i := 0; i < len(events); {
		at := events[i].at
		for ; i < len(events) && events[i].at == at; i++ {
			e := events[i]
			active[e.speaker] += e.delta
			if active[e.speaker] == 0 {
				delete(active, e.speaker)
			}
		}
		switch {
		case len(active) >= 2 && !open:
			open, start = true, at
		case len(active) < 2 && open:
			open = false
			regions = append(regions, OverlapRegion{Start: start, End: at})
		}
	}
	return regions
}

// SpeakerStats sums durations and counts intervals per speaker, in order of
// first appearance.
func SpeakerStats(intervals []SpeakerInterval) []SpeakerStat {
	index := make(map[string]int)
	stats := []SpeakerStat{}
	for _, iv := range intervals {
		i, ok := index[iv.Speaker]
		if !ok {
			i = len(stats)
			index[iv.Speaker] = i
			stats = append(stats, SpeakerStat{Speaker: iv.Speaker})
		}
		stats[i].TotalSpeakingTime += iv.Duration()
		stats[i].SegmentCount++
	}
	return stats
}
