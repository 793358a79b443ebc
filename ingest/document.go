package ingest

import (
	"encoding/json"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/transcript"
	"github.com/kbukum/transcriptkit/validation"
)

// Document shapes.
const (
	SourceNative     = "native"
	SourceUtterances = "utterances"
	SourceWords      = "words"
)

// Batch is a normalized document.
type Batch struct {
	// Source is the detected document shape.
	Source string `json:"source"`
	// Chunks are the timed texts, possibly untimed (NaN) for vendor items
	// without timestamps.
	Chunks []transcript.TimedText `json:"chunks"`
	// Intervals are the speaker intervals. Empty when the document carries
	// no speaker information.
	Intervals []transcript.SpeakerInterval `json:"intervals"`
	// Dropped counts speaker intervals rejected as malformed.
	Dropped int `json:"dropped"`
}

// Input converts the batch into pipeline input.
func (b *Batch) Input() transcript.Input {
	return transcript.Input{Chunks: b.Chunks, Intervals: b.Intervals}
}

// Decode reads one JSON document and normalizes it.
func Decode(r io.Reader) (*Batch, error) {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.InvalidFormat("document", "JSON object").WithCause(err)
	}
	return FromMap(raw)
}

// FromMap normalizes an already decoded JSON document.
func FromMap(raw map[string]any) (*Batch, error) {
	switch {
	case raw["utterances"] != nil:
		items, err := records("utterances", raw["utterances"])
		if err != nil {
			return nil, err
		}
		return fromUtterances(items)
	case raw["words"] != nil:
		items, err := records("words", raw["words"])
		if err != nil {
			return nil, err
		}
		return fromWords(items)
	case raw["chunks"] != nil || raw["intervals"] != nil:
		return fromNative(raw)
	default:
		return nil, errors.InvalidFormat("document", "one of chunks/intervals, utterances or words")
	}
}

type timedRecord struct {
	Start        any    `mapstructure:"start"`
	End          any    `mapstructure:"end"`
	Text         string `mapstructure:"text"`
	Speaker      any    `mapstructure:"speaker"`
	SpeakerLabel any    `mapstructure:"speaker_label"`
	SpeakerID    any    `mapstructure:"speaker_id"`
	Channel      any    `mapstructure:"channel_index"`
	Type         string `mapstructure:"type"`
}

func (r timedRecord) speaker() string {
	for _, v := range []any{r.Speaker, r.SpeakerLabel, r.SpeakerID} {
		if id := SpeakerID(v); id != "" {
			return id
		}
	}
	return ""
}

// records turns a JSON array of objects into maps.
func records(field string, v any) ([]map[string]any, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.InvalidFormat(field, "array of objects")
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, errors.InvalidFormat(field, "array of objects").WithCause(err)
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeRecord(field string, m map[string]any) (timedRecord, error) {
	var rec timedRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return rec, errors.Internal(err)
	}
	if err := dec.Decode(m); err != nil {
		return rec, errors.InvalidFormat(field, "object with start, end and text").WithCause(err)
	}
	return rec, nil
}

// validInterval reports whether an interval can enter the pipeline.
func validInterval(iv transcript.SpeakerInterval) bool {
	return validation.New().
		Required("speaker", iv.Speaker).
		Interval("interval", iv.Start, iv.End).
		OK()
}

func fromNative(raw map[string]any) (*Batch, error) {
	b := &Batch{Source: SourceNative}

	if raw["chunks"] != nil {
		items, err := records("chunks", raw["chunks"])
		if err != nil {
			return nil, err
		}
		for _, m := range items {
			rec, err := decodeRecord("chunks", m)
			if err != nil {
				return nil, err
			}
			b.Chunks = append(b.Chunks, transcript.TimedText{
				Start: plainSeconds(rec.Start),
				End:   plainSeconds(rec.End),
				Text:  rec.Text,
			})
		}
	}

	if raw["intervals"] != nil {
		items, err := records("intervals", raw["intervals"])
		if err != nil {
			return nil, err
		}
		for _, m := range items {
			rec, err := decodeRecord("intervals", m)
			if err != nil {
				return nil, err
			}
			iv := transcript.SpeakerInterval{
				Start:   plainSeconds(rec.Start),
				End:     plainSeconds(rec.End),
				Speaker: strings.TrimSpace(cast.ToString(rec.Speaker)),
			}
			if !validInterval(iv) {
				b.Dropped++
				continue
			}
			b.Intervals = append(b.Intervals, iv)
		}
	}
	return b, nil
}

// plainSeconds reads a native timestamp, which is always in seconds.
func plainSeconds(v any) float64 {
	if v == nil {
		return math.NaN()
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN()
	}
	return f
}

func fromUtterances(items []map[string]any) (*Batch, error) {
	b := &Batch{Source: SourceUtterances}
	for _, m := range items {
		rec, err := decodeRecord("utterances", m)
		if err != nil {
			return nil, err
		}
		b.add(Seconds(rec.Start), Seconds(rec.End), rec.Text, rec.speaker())
	}
	return b, nil
}

// add appends one vendor item as a chunk and, when it names a speaker, a
// speaker interval.
func (b *Batch) add(start, end float64, text, speaker string) {
	b.Chunks = append(b.Chunks, transcript.TimedText{Start: start, End: end, Text: strings.TrimSpace(text)})
	if speaker == "" {
		return
	}
	iv := transcript.SpeakerInterval{Start: start, End: end, Speaker: speaker}
	if !validInterval(iv) {
		b.Dropped++
		return
	}
	b.Intervals = append(b.Intervals, iv)
}

type word struct {
	start, end float64
	text       string
	speaker    string
}

// fromWords groups word-level output into consecutive same-speaker runs.
// Spacing and audio-event tokens are skipped; a word with no speaker takes
// its channel, or SPEAKER_00 for single-channel input.
func fromWords(items []map[string]any) (*Batch, error) {
	words := make([]word, 0, len(items))
	for _, m := range items {
		rec, err := decodeRecord("words", m)
		if err != nil {
			return nil, err
		}
		if rec.Type != "" && rec.Type != "word" {
			continue
		}
		w := word{start: Seconds(rec.Start), end: Seconds(rec.End), text: strings.TrimSpace(rec.Text), speaker: rec.speaker()}
		if w.text == "" || math.IsNaN(w.start) || math.IsNaN(w.end) {
			continue
		}
		if w.speaker == "" {
			if rec.Channel != nil {
				w.speaker = "channel_" + cast.ToString(rec.Channel)
			} else {
				w.speaker = format(0)
			}
		}
		words = append(words, w)
	}
	slices.SortStableFunc(words, func(a, b word) int {
		switch {
		case a.start < b.start:
			return -1
		case a.start > b.start:
			return 1
		default:
			return 0
		}
	})

	b := &Batch{Source: SourceWords}
	for i := 0; i < len(words); {
		run := words[i]
		texts := []string{run.text}
		j := i + 1
		for ; j < len(words) && words[j].speaker == run.speaker; j++ {
			texts = append(texts, words[j].text)
			run.end = max(run.end, words[j].end)
		}
		b.add(run.start, run.end, strings.Join(texts, " "), run.speaker)
		i = j
	}
	return b, nil
}
