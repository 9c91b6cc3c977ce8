package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestHSV_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		wantH   uint8
		wantS   uint8
		wantV   uint8
	}{
		{"pure red", 255, 0, 0, 0, 255, 255},
		{"pure green", 0, 255, 0, 60, 255, 255},
		{"pure blue", 0, 0, 255, 120, 255, 255},
		{"magenta", 255, 0, 255, 150, 255, 255},
		{"dark purple", 128, 0, 128, 150, 255, 128},
		{"white", 255, 255, 255, 0, 0, 255},
		{"black", 0, 0, 0, 0, 0, 0},
		{"gray", 128, 128, 128, 0, 0, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := HSV(tt.r, tt.g, tt.b)
			if h != tt.wantH || s != tt.wantS || v != tt.wantV {
				t.Errorf("HSV(%d,%d,%d) = (%d,%d,%d), want (%d,%d,%d)",
					tt.r, tt.g, tt.b, h, s, v, tt.wantH, tt.wantS, tt.wantV)
			}
		})
	}
}

func TestHSVRange_Contains(t *testing.T) {
	r := HSVRange{HMin: 140, HMax: 170, SMin: 50, SMax: 255, VMin: 50, VMax: 255}

	tests := []struct {
		name    string
		h, s, v uint8
		want    bool
	}{
		{"inside", 150, 200, 200, true},
		{"lower hue bound inclusive", 140, 50, 50, true},
		{"upper hue bound inclusive", 170, 255, 255, true},
		{"hue below", 139, 200, 200, false},
		{"hue above", 171, 200, 200, false},
		{"saturation too low", 150, 49, 200, false},
		{"value too low", 150, 200, 49, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.h, tt.s, tt.v); got != tt.want {
				t.Errorf("Contains(%d,%d,%d) = %v, want %v", tt.h, tt.s, tt.v, got, tt.want)
			}
		})
	}
}

func TestMagentaRanges(t *testing.T) {
	ranges := MagentaRanges()
	if len(ranges) != 2 {
		t.Fatalf("got %d ranges, want 2", len(ranges))
	}
	if ranges[0].HMin != 140 || ranges[0].HMax != 170 {
		t.Errorf("first band hue: got [%d,%d], want [140,170]", ranges[0].HMin, ranges[0].HMax)
	}
	if ranges[1].HMin != 145 || ranges[1].HMax != 165 {
		t.Errorf("second band hue: got [%d,%d], want [145,165]", ranges[1].HMin, ranges[1].HMax)
	}

	// Callers own the returned slice
	ranges[0].HMin = 0
	if MagentaRanges()[0].HMin != 140 {
		t.Error("MagentaRanges should return a fresh slice")
	}
}

func TestInAnyRange(t *testing.T) {
	ranges := MagentaRanges()

	tests := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{"magenta", 255, 0, 255, true},
		{"purple", 160, 32, 160, true},
		{"pinkish magenta", 230, 40, 180, true},
		{"red", 255, 0, 0, false},
		{"blue", 0, 0, 255, false},
		{"black text", 0, 0, 0, false},
		{"white paper", 255, 255, 255, false},
		{"pale magenta", 255, 230, 255, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inAnyRange(tt.r, tt.g, tt.b, ranges); got != tt.want {
				h, s, v := HSV(tt.r, tt.g, tt.b)
				t.Errorf("inAnyRange(%d,%d,%d) = %v, want %v (hsv %d,%d,%d)",
					tt.r, tt.g, tt.b, got, tt.want, h, s, v)
			}
		})
	}
}
