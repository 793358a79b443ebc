package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/kbukum/transcriptkit/errors"
)

// Format selects a transcript rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatSRT      Format = "srt"
	FormatVTT      Format = "vtt"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists every supported rendering.
var Formats = []Format{FormatText, FormatSRT, FormatVTT, FormatMarkdown, FormatJSON}

// ParseFormat resolves a format name, accepting "md" and "txt" as aliases.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatText, FormatSRT, FormatVTT, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "txt", "":
		return FormatText, nil
	}
	return "", errors.InvalidInput("format", fmt.Sprintf("unknown transcript format %q", name))
}

// RenderOptions carries the Markdown header.
type RenderOptions struct {
	Title     string
	MeetingID string
}

// Render writes res to w in the given format.
func Render(w io.Writer, res *Result, format Format, opts RenderOptions) error {
	switch format {
	case FormatText:
		for _, s := range res.Segments {
			speaker := ""
			if s.Label != "" {
				speaker = fmt.Sprintf(" [%s]", s.Label)
			}
			if _, err := fmt.Fprintf(w, "[%s --> %s]%s %s\n", clock(s.Start, '.'), clock(s.End, '.'), speaker, s.Text); err != nil {
				return err
			}
		}
		return nil
	case FormatSRT:
		for i, s := range res.Segments {
			if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n", i+1, clock(s.Start, ','), clock(s.End, ','), cueText(s)); err != nil {
				return err
			}
		}
		return nil
	case FormatVTT:
		if _, err := io.WriteString(w, "WEBVTT\n\n"); err != nil {
			return err
		}
		for _, s := range res.Segments {
			if _, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n", clock(s.Start, '.'), clock(s.End, '.'), vttText(s)); err != nil {
				return err
			}
		}
		return nil
	case FormatMarkdown:
		return renderMarkdown(w, res, opts)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return errors.InvalidInput("format", fmt.Sprintf("unknown transcript format %q", format))
}

func renderMarkdown(w io.Writer, res *Result, opts RenderOptions) error {
	var b strings.Builder
	title := opts.Title
	if title == "" {
		title = "Meeting Transcript"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if opts.MeetingID != "" {
		fmt.Fprintf(&b, "- Meeting: `%s`\n", opts.MeetingID)
	}
	sum := res.Summary()
	fmt.Fprintf(&b, "- Speakers: %d\n", sum.Speakers)
	fmt.Fprintf(&b, "- Segments: %d\n", sum.Segments)
	if n := len(res.Segments); n > 0 {
		fmt.Fprintf(&b, "- Duration: %s\n", shortClock(res.Segments[n-1].End))
	}
	b.WriteString("\n---\n\n")

	for _, s := range res.Segments {
		fmt.Fprintf(&b, "[%s-%s] ", shortClock(s.Start), shortClock(s.End))
		if s.Label != "" {
			fmt.Fprintf(&b, "**%s**: ", s.Label)
		}
		b.WriteString(strings.TrimSpace(s.Text))
		if s.IsOverlap {
			b.WriteString(" _(overlapping speech)_")
		}
		b.WriteString("\n\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func cueText(s AlignedSegment) string {
	if s.Label == "" {
		return s.Text
	}
	return s.Label + ": " + s.Text
}

func vttText(s AlignedSegment) string {
	if s.Label == "" {
		return s.Text
	}
	return fmt.Sprintf("<v %s>%s", s.Label, s.Text)
}

func toDuration(sec float64) time.Duration {
	return time.Duration(math.Round(sec*1000)) * time.Millisecond
}

// clock formats seconds as HH:MM:SS<sep>mmm.
func clock(sec float64, sep rune) string {
	d := toDuration(sec)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, d/time.Millisecond)
}

// shortClock formats seconds as MM:SS, or HH:MM:SS past the first hour.
func shortClock(sec float64) string {
	d := toDuration(sec)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
