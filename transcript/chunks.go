package transcript

import (
	"strings"
)

// MergeChunks stitches the output of overlapping decode windows into one
// ordered sequence.
//
// A chunk that starts before its predecessor ends and restates the
// predecessor's closing words is folded into it: only the words past the
// restated boundary are appended and the end is extended. Anything else is
// appended unchanged. Chunks with unusable timestamps pass through untouched
// for FilterHallucinations to deal with.
func MergeChunks(chunks []TimedText, cfg Config) []TimedText {
	if len(chunks) == 0 {
		return nil
	}
	merged := make([]TimedText, 0, len(chunks))
	merged = append(merged, chunks[0])
	for _, cur := range chunks[1:] {
		prev := &merged[len(merged)-1]
		n := stitchLength(*prev, cur, cfg)
		if n == 0 {
			merged = append(merged, cur)
			continue
		}
		if rest := strings.Fields(cur.Text)[n:]; len(rest) > 0 {
			prev.Text = strings.TrimRight(prev.Text, " \t\n") + " " + strings.Join(rest, " ")
		}
		if cur.End > prev.End {
			prev.End = cur.End
		}
	}
	return merged
}

// stitchLength returns how many leading words of cur restate the tail of
// prev, or 0 when the two chunks must stay separate. Both gates require the
// chunks to overlap in time; see StitchBoundary and StitchStrict.
func stitchLength(prev, cur TimedText, cfg Config) int {
	if strings.TrimSpace(prev.Text) == "" {
		return 0
	}
	if !finite(prev.Start, prev.End, cur.Start, cur.End) || cur.Start >= prev.End {
		return 0
	}
	prevWords := strings.Fields(prev.Text)
	curWords := strings.Fields(cur.Text)
	window := min(cfg.StitchWords, len(prevWords))

	temporal := 0.0
	if d := prev.Duration(); d > 0 {
		temporal = overlap(prev.Start, prev.End, cur.Start, cur.End) / d
	}

	if cfg.StitchGate == StitchStrict {
		if len(curWords) < window || !wordsEqual(prevWords[len(prevWords)-window:], curWords[:window]) {
			return 0
		}
		if temporal > cfg.StitchOverlapFraction {
			return window
		}
		return 0
	}

	matched := 0
	for n := min(window, len(curWords)); n >= cfg.StitchMinWords && n > 0; n-- {
		if wordsEqual(prevWords[len(prevWords)-n:], curWords[:n]) {
			matched = n
			break
		}
	}
	if matched == 0 {
		return 0
	}
	lexical := float64(matched) / float64(window)
	if max(temporal, lexical) > cfg.StitchOverlapFraction {
		return matched
	}
	return 0
}
