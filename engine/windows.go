package engine

// Window is one slice of the recording decoded in a single ASR request.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 { return w.End - w.Start }

// MinWindowSeconds is the shortest tail window worth decoding.
const MinWindowSeconds = 1.0

// Windows plans sliding decode windows over a recording of total seconds.
// Consecutive windows share stride seconds so that words cut at a boundary
// appear whole in one of them. Planning stops at the first window shorter
// than MinWindowSeconds. A non-positive total or length yields nil.
func Windows(total, length, stride float64) []Window {
	if total <= 0 || length <= 0 {
		return nil
	}
	step := length - stride
	if step <= 0 {
		step = length
	}

	var out []Window
	for offset := 0.0; offset < total; offset += step {
		end := min(offset+length, total)
		if end-offset < MinWindowSeconds {
			break
		}
		out = append(out, Window{Start: offset, End: end})
	}
	return out
}
