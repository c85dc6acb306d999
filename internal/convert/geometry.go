package convert

import "math"

// TargetSize computes output dimensions for a w0 x h0 source.
//
// With neither target set the source size is kept. With aspect ratio
// maintained, width takes precedence: the other axis is derived from
// w0/h0 and rounded to the nearest pixel. Without it, each unset axis keeps
// the source value. Results are at least 1.
func TargetSize(w0, h0 int, s Settings) (int, int) {
	if w0 <= 0 || h0 <= 0 {
		return max(w0, 0), max(h0, 0)
	}
	if s.Width <= 0 && s.Height <= 0 {
		return w0, h0
	}

	var w, h int
	if s.MaintainAspectRatio {
		aspect := float64(w0) / float64(h0)
		if s.Width > 0 {
			w = s.Width
			h = int(math.Round(float64(w) / aspect))
		} else {
			h = s.Height
			w = int(math.Round(float64(h) * aspect))
		}
	} else {
		w, h = w0, h0
		if s.Width > 0 {
			w = s.Width
		}
		if s.Height > 0 {
			h = s.Height
		}
	}
	return max(w, 1), max(h, 1)
}
