package transcript

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < epsilon }

func assertChunks(t *testing.T, got, want []TimedText) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if !approx(got[i].Start, want[i].Start) || !approx(got[i].End, want[i].End) || got[i].Text != want[i].Text {
			t.Errorf("chunk %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func assertIntervals(t *testing.T, got, want []SpeakerInterval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d intervals, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if !approx(got[i].Start, want[i].Start) || !approx(got[i].End, want[i].End) || got[i].Speaker != want[i].Speaker {
			t.Errorf("interval %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func assertSpan(t *testing.T, name string, s AlignedSegment, start, end float64) {
	t.Helper()
	if !approx(s.Start, start) || !approx(s.End, end) {
		t.Errorf("%s: expected [%g, %g], got [%g, %g]", name, start, end, s.Start, s.End)
	}
}
