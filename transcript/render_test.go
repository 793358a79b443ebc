package transcript

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kbukum/transcriptkit/errors"
)

func sampleResult() *Result {
	return &Result{
		Segments: []AlignedSegment{
			{Start: 0, End: 18, Speaker: "SPEAKER_00", Label: "Speaker 1", Text: "hello world"},
			{Start: 3725.5, End: 3727.25, Speaker: "SPEAKER_01", Label: "Speaker 2", Text: "fine thanks", IsOverlap: true},
		},
		Speakers: []SpeakerStat{{Speaker: "SPEAKER_00"}, {Speaker: "SPEAKER_01"}},
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		format Format
		want   []string
	}{
		{FormatText, []string{
			"[00:00:00.000 --> 00:00:18.000] [Speaker 1] hello world\n",
			"[01:02:05.500 --> 01:02:07.250] [Speaker 2] fine thanks\n",
		}},
		{FormatSRT, []string{
			"1\n00:00:00,000 --> 00:00:18,000\nSpeaker 1: hello world\n\n",
			"2\n01:02:05,500 --> 01:02:07,250\nSpeaker 2: fine thanks\n\n",
		}},
		{FormatVTT, []string{
			"WEBVTT\n\n",
			"00:00:00.000 --> 00:00:18.000\n<v Speaker 1>hello world\n",
		}},
		{FormatMarkdown, []string{
			"# Weekly sync\n",
			"- Meeting: `m-1`\n",
			"- Speakers: 2\n",
			"[00:00-00:18] **Speaker 1**: hello world\n",
			"[01:02:05-01:02:07] **Speaker 2**: fine thanks _(overlapping speech)_\n",
		}},
	}
	for _, tc := range tests {
		t.Run(string(tc.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, sampleResult(), tc.format, RenderOptions{Title: "Weekly sync", MeetingID: "m-1"}); err != nil {
				t.Fatalf("render: %v", err)
			}
			for _, w := range tc.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("expected %q in output:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleResult(), FormatJSON, RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	var decoded Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Segments) != 2 || decoded.Segments[1].Label != "Speaker 2" || !decoded.Segments[1].IsOverlap {
		t.Errorf("unexpected decoded result %+v", decoded)
	}
}

func TestRender_UnattributedText(t *testing.T) {
	var buf bytes.Buffer
	res := &Result{Segments: []AlignedSegment{{Start: 1, End: 2, Text: "plain"}}}
	if err := Render(&buf, res, FormatText, RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := buf.String(); got != "[00:00:01.000 --> 00:00:02.000] plain\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"srt", FormatSRT},
		{"VTT", FormatVTT},
		{"md", FormatMarkdown},
		{"txt", FormatText},
		{"", FormatText},
		{"json", FormatJSON},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	if _, err := ParseFormat("docx"); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected invalid input for docx, got %v", err)
	}
	if err := Render(&bytes.Buffer{}, sampleResult(), Format("docx"), RenderOptions{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestAlignedSegment_JSON(t *testing.T) {
	data, err := json.Marshal(AlignedSegment{Start: 1, End: 2, Speaker: "SPEAKER_00", Text: "hi"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"speaker":"SPEAKER_00"`) {
		t.Errorf("expected speaker in %s", data)
	}
	if strings.Count(string(data), `"speaker"`) != 1 {
		t.Errorf("expected a single speaker key in %s", data)
	}

	var back AlignedSegment
	if err := json.Unmarshal([]byte(`{"start":1,"end":2,"speaker":null,"text":"hi"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Speaker != "" || back.Text != "hi" {
		t.Errorf("unexpected segment %+v", back)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MergeGapSeconds != 1.0 || cfg.TurnGapSeconds != 2.0 || cfg.OverlapDuplicateThreshold != 0.8 || cfg.StitchOverlapFraction != 0.5 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
	cfg.OverlapDuplicateThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for threshold above 1")
	}
}
