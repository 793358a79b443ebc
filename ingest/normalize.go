package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cast"
)

// MillisecondThreshold is the largest value still read as seconds. A
// meeting longer than ~27 hours is not expected, so anything larger is a
// millisecond timestamp.
const MillisecondThreshold = 100000

// Seconds converts a loosely typed vendor timestamp to seconds. A nil or
// unparsable value yields NaN so downstream filters treat the item as
// untimed.
func Seconds(v any) float64 {
	if v == nil {
		return math.NaN()
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN()
	}
	if f > MillisecondThreshold {
		return f / 1000
	}
	return f
}

// SpeakerID rewrites a vendor speaker name into SPEAKER_NN form:
//
//	"A" -> SPEAKER_00, "c" -> SPEAKER_02
//	"speaker_3", "SPEAKER_3", "3" -> SPEAKER_03
//
// Names without a recognisable index (e.g. "channel_left") are kept as-is.
// An empty or nil value yields "".
func SpeakerID(v any) string {
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return ""
	}

	runes := []rune(s)
	if len(runes) == 1 && unicode.IsLetter(runes[0]) && runes[0] < unicode.MaxASCII {
		return format(int(unicode.ToUpper(runes[0]) - 'A'))
	}

	num := s
	if i := strings.LastIndexAny(s, "_- "); i >= 0 {
		prefix := strings.ToLower(s[:i])
		if prefix != "speaker" && prefix != "spk" {
			return s
		}
		num = s[i+1:]
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return s
	}
	return format(n)
}

func format(n int) string {
	return fmt.Sprintf("SPEAKER_%02d", n)
}
