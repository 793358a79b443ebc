package transcript

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	timestampToken = regexp.MustCompile(`<\|(\d+(?:\.\d+)?)\|>`)
	specialToken   = regexp.MustCompile(`<\|[^|>]*\|>`)
)

// ParseWindow splits the decoded text of one window into timed sub-chunks.
//
// Decoders emit "<|1.20|>" timestamp tokens around each phrase; the text
// between two tokens becomes a chunk spanning them, and trailing text after
// the last token gets SyntheticChunkSeconds. Other special tokens are
// removed. Offset is the window's start on the audio timeline and is added
// to every timestamp.
//
// A window whose words loop (see FilterHallucinations) yields nothing. When
// no timestamped chunk survives but short text remains, that text is
// returned as one synthetic chunk at the window start.
func ParseWindow(decoded string, offset float64, cfg Config) []TimedText {
	clean := strings.TrimSpace(specialToken.ReplaceAllString(decoded, " "))
	if degenerate(normalizedWords(clean), cfg.HallucinationMinWords, cfg.HallucinationUniqueRatio) {
		return nil
	}

	var chunks []TimedText
	marks := timestampToken.FindAllStringSubmatchIndex(decoded, -1)
	for i, m := range marks {
		start, err := strconv.ParseFloat(decoded[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		textEnd := len(decoded)
		end := start + cfg.SyntheticChunkSeconds
		if i+1 < len(marks) {
			next := marks[i+1]
			textEnd = next[0]
			if v, err := strconv.ParseFloat(decoded[next[2]:next[3]], 64); err == nil {
				end = v
			}
		}
		text := strings.Join(strings.Fields(specialToken.ReplaceAllString(decoded[m[1]:textEnd], " ")), " ")
		c := TimedText{Start: offset + start, End: offset + end, Text: text}
		if keepChunk(c, cfg) {
			chunks = append(chunks, c)
		}
	}

	if len(chunks) == 0 && clean != "" && utf8.RuneCountInString(clean) < cfg.MaxUntimedChars {
		c := TimedText{Start: offset, End: offset + cfg.SyntheticChunkSeconds, Text: strings.Join(strings.Fields(clean), " ")}
		if keepChunk(c, cfg) {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// FilterHallucinations drops decoder artifacts from timed chunks: repetition
// loops, empty or punctuation-only text, runs of one repeated word, and
// chunks with End <= Start.
//
// A chunk whose timestamps are not finite numbers is recovered when its text
// is shorter than MaxUntimedChars: it keeps a finite start (or follows the
// previous kept chunk) and lasts SyntheticChunkSeconds. Longer untimed text
// is dropped since no safe duration can be inferred for it.
func FilterHallucinations(chunks []TimedText, cfg Config) []TimedText {
	out := make([]TimedText, 0, len(chunks))
	for _, c := range chunks {
		if !finite(c.Start, c.End) {
			if utf8.RuneCountInString(strings.TrimSpace(c.Text)) >= cfg.MaxUntimedChars {
				continue
			}
			start := c.Start
			if !finite(start) {
				start = 0
				if len(out) > 0 {
					start = out[len(out)-1].End
				}
			}
			c.Start, c.End = start, start+cfg.SyntheticChunkSeconds
		}
		if keepChunk(c, cfg) {
			out = append(out, c)
		}
	}
	return out
}

func keepChunk(c TimedText, cfg Config) bool {
	if c.End <= c.Start {
		return false
	}
	text := strings.TrimSpace(c.Text)
	if text == "" || punctuationOnly(text) {
		return false
	}
	words := normalizedWords(text)
	if degenerate(words, cfg.HallucinationMinWords, cfg.HallucinationUniqueRatio) {
		return false
	}
	return !repeated(words, cfg.RepeatedWordMin)
}
