package transcript

import (
	"cmp"
	"context"
	"slices"

	"github.com/kbukum/transcriptkit/errors"
)

// Stage names reported in cancellation errors and stats.
const (
	StageStitch        = "stitch"
	StageHallucination = "hallucination"
	StageSmooth        = "smooth"
	StageAlign         = "align"
	StageRedundancy    = "redundancy"
	StageTurns         = "turns"
	StageLabel         = "label"
)

// Input is one meeting's raw engine output.
type Input struct {
	Chunks    []TimedText       `json:"chunks"`
	Intervals []SpeakerInterval `json:"intervals"`
	// SkipDiarization assembles without speakers; Intervals is ignored.
	SkipDiarization bool `json:"skip_diarization"`
}

// Stats counts what each stage absorbed or dropped.
type Stats struct {
	InputChunks           int `json:"input_chunks"`
	InputIntervals        int `json:"input_intervals"`
	StitchedChunks        int `json:"stitched_chunks"`
	HallucinationsDropped int `json:"hallucinations_dropped"`
	MalformedIntervals    int `json:"malformed_intervals"`
	RedundantDropped      int `json:"redundant_dropped"`
	TurnsMerged           int `json:"turns_merged"`
}

// Result is the assembled transcript with its diarization context.
type Result struct {
	Segments []AlignedSegment `json:"segments"`
	Overlaps []OverlapRegion  `json:"overlaps"`
	Speakers []SpeakerStat    `json:"speakers"`
	Stats    Stats            `json:"stats"`
}

// Summary condenses a result for logs and events.
type Summary struct {
	Segments           int     `json:"segments"`
	Speakers           int     `json:"speakers"`
	OverlapRegions     int     `json:"overlap_regions"`
	OverlappedSegments int     `json:"overlapped_segments"`
	SpeechSeconds      float64 `json:"speech_seconds"`
	Dropped            int     `json:"dropped"`
}

// Summary computes the result summary.
func (r *Result) Summary() Summary {
	s := Summary{
		Segments:       len(r.Segments),
		Speakers:       len(r.Speakers),
		OverlapRegions: len(r.Overlaps),
		Dropped:        r.Stats.HallucinationsDropped + r.Stats.MalformedIntervals + r.Stats.RedundantDropped,
	}
	for _, seg := range r.Segments {
		s.SpeechSeconds += seg.Duration()
		if seg.IsOverlap {
			s.OverlappedSegments++
		}
	}
	return s
}

// ForSpeaker narrows the result to the segments of one speaker, matched by
// cluster label ("SPEAKER_01") or display label ("Speaker 2"). Speaker stats
// and overlap regions are kept only where they concern those segments. It
// reports false when no segment matches.
func (r *Result) ForSpeaker(speaker string) (*Result, bool) {
	segments := keepWhere(r.Segments, func(s AlignedSegment) bool {
		return s.Speaker != "" && (s.Speaker == speaker || s.Label == speaker)
	})
	if len(segments) == 0 {
		return nil, false
	}
	out := &Result{
		Segments: segments,
		Overlaps: keepWhere(r.Overlaps, func(o OverlapRegion) bool {
			return intersectsAny(AlignedSegment{Start: o.Start, End: o.End}, segmentRegions(segments))
		}),
		Speakers: keepWhere(r.Speakers, func(st SpeakerStat) bool { return st.Speaker == segments[0].Speaker }),
		Stats:    r.Stats,
	}
	if out.Overlaps == nil {
		out.Overlaps = []OverlapRegion{}
	}
	if out.Speakers == nil {
		out.Speakers = []SpeakerStat{}
	}
	return out, true
}

func segmentRegions(segments []AlignedSegment) []OverlapRegion {
	regions := make([]OverlapRegion, len(segments))
	for i, s := range segments {
		regions[i] = OverlapRegion{Start: s.Start, End: s.End}
	}
	return regions
}

func emptyResult(in Input) *Result {
	return &Result{
		Segments: []AlignedSegment{},
		Overlaps: []OverlapRegion{},
		Speakers: []SpeakerStat{},
		Stats:    Stats{InputChunks: len(in.Chunks), InputIntervals: len(in.Intervals)},
	}
}

// Assemble runs the full pipeline over one meeting's engine output.
//
// No chunks, or no intervals when diarization is requested, yields an empty
// transcript. Malformed chunks and intervals are dropped and counted in
// Stats. Precondition violations are returned as errors, and ctx is checked
// before each stage.
func Assemble(ctx context.Context, in Input, cfg Config) (*Result, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := emptyResult(in)
	if len(in.Chunks) == 0 || (!in.SkipDiarization && len(in.Intervals) == 0) {
		return res, nil
	}

	if err := checkpoint(ctx, StageStitch); err != nil {
		return nil, err
	}
	chunks := MergeChunks(in.Chunks, cfg)
	res.Stats.StitchedChunks = len(in.Chunks) - len(chunks)

	if err := checkpoint(ctx, StageHallucination); err != nil {
		return nil, err
	}
	filtered := FilterHallucinations(chunks, cfg)
	res.Stats.HallucinationsDropped = len(chunks) - len(filtered)

	if in.SkipDiarization {
		return assembleUnattributed(ctx, res, filtered, cfg)
	}

	if err := checkpoint(ctx, StageSmooth); err != nil {
		return nil, err
	}
	intervals, malformed := SanitizeIntervals(in.Intervals)
	res.Stats.MalformedIntervals = malformed
	diarization, err := Smooth(intervals, cfg)
	if err != nil {
		return nil, err
	}
	res.Overlaps = diarization.Overlaps
	res.Speakers = diarization.Stats

	if err := checkpoint(ctx, StageAlign); err != nil {
		return nil, err
	}
	aligned := Align(filtered, diarization.Intervals, cfg)
	sortByStart(aligned)

	if err := checkpoint(ctx, StageRedundancy); err != nil {
		return nil, err
	}
	kept, err := RemoveRedundant(aligned, cfg)
	if err != nil {
		return nil, err
	}
	res.Stats.RedundantDropped = len(aligned) - len(kept)

	if err := checkpoint(ctx, StageTurns); err != nil {
		return nil, err
	}
	turns := MergeTurns(kept, cfg)
	res.Stats.TurnsMerged = len(kept) - len(turns)

	if err := checkpoint(ctx, StageLabel); err != nil {
		return nil, err
	}
	sequenced, slivers := dropSlivers(Sequence(turns), cfg.MinSegmentSeconds)
	res.Stats.RedundantDropped += slivers
	res.Segments = Label(sequenced, diarization, cfg)
	return res, nil
}

// assembleUnattributed finishes a diarization-free run: segments keep their
// chunk boundaries and carry no speaker.
func assembleUnattributed(ctx context.Context, res *Result, chunks []TimedText, cfg Config) (*Result, error) {
	if err := checkpoint(ctx, StageRedundancy); err != nil {
		return nil, err
	}
	segments := make([]AlignedSegment, 0, len(chunks))
	for _, c := range chunks {
		segments = append(segments, AlignedSegment{Start: c.Start, End: c.End, Text: c.Text})
	}
	sortByStart(segments)
	kept, err := RemoveRedundant(segments, cfg)
	if err != nil {
		return nil, err
	}
	sequenced, slivers := dropSlivers(Sequence(kept), cfg.MinSegmentSeconds)
	res.Stats.RedundantDropped = len(segments) - len(kept) + slivers
	res.Segments = sequenced
	return res, nil
}

// dropSlivers removes segments that trimming left at or below minSeconds.
func dropSlivers(segments []AlignedSegment, minSeconds float64) ([]AlignedSegment, int) {
	kept := slices.DeleteFunc(segments, func(s AlignedSegment) bool {
		return s.Duration() <= minSeconds
	})
	return kept, len(segments) - len(kept)
}

func sortByStart(segments []AlignedSegment) {
	slices.SortStableFunc(segments, func(a, b AlignedSegment) int {
		return cmp.Compare(a.Start, b.Start)
	})
}

func checkpoint(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return errors.Cancelled(stage, err)
	}
	return nil
}
