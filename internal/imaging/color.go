package imaging

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSVRange is an inclusive box in 8-bit HSV space.
//
// A pixel is inside the range when every component lies within its
// [Min, Max] bounds, matching the semantics of an inRange threshold.
type HSVRange struct {
	HMin uint8 `yaml:"hMin" json:"hMin"` // Hue lower bound (0-180)
	HMax uint8 `yaml:"hMax" json:"hMax"` // Hue upper bound (0-180)
	SMin uint8 `yaml:"sMin" json:"sMin"` // Saturation lower bound (0-255)
	SMax uint8 `yaml:"sMax" json:"sMax"` // Saturation upper bound (0-255)
	VMin uint8 `yaml:"vMin" json:"vMin"` // Value lower bound (0-255)
	VMax uint8 `yaml:"vMax" json:"vMax"` // Value upper bound (0-255)
}

// Contains reports whether the given HSV triple falls inside the range.
func (r HSVRange) Contains(h, s, v uint8) bool {
	return h >= r.HMin && h <= r.HMax &&
		s >= r.SMin && s <= r.SMax &&
		v >= r.VMin && v <= r.VMax
}

// MagentaRanges returns the reference marker color bands.
//
// Both bands require saturation and value of at least 50. The second band
// lies inside the first; they are tuned independently in configuration.
//
// The returned slice is freshly allocated and may be modified by the caller.
func MagentaRanges() []HSVRange {
	return []HSVRange{
		{HMin: 140, HMax: 170, SMin: 50, SMax: 255, VMin: 50, VMax: 255},
		{HMin: 145, HMax: 165, SMin: 50, SMax: 255, VMin: 50, VMax: 255},
	}
}

// HSV converts 8-bit RGB values to 8-bit HSV.
//
// The conversion is done in floating point by go-colorful and then rescaled:
//
//	H = round(hue° / 2)        0-180
//	S = round(saturation * 255) 0-255
//	V = round(value * 255)      0-255
//
// Grays (including black and white) have hue and saturation 0.
func HSV(r, g, b uint8) (h, s, v uint8) {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	hf, sf, vf := c.Hsv()
	return uint8(math.Round(hf / 2)), uint8(math.Round(sf * 255)), uint8(math.Round(vf * 255))
}

// inAnyRange reports whether an RGB pixel classifies as marker under ranges.
func inAnyRange(r, g, b uint8, ranges []HSVRange) bool {
	h, s, v := HSV(r, g, b)
	for _, rg := range ranges {
		if rg.Contains(h, s, v) {
			return true
		}
	}
	return false
}
