package document

import (
	"math"
	"testing"
)

func TestRasterToPage_FullPage(t *testing.T) {
	page := Rect{X0: 0, Y0: 0, X1: 500, Y1: 700}

	got := RasterToPage(0, 0, 1000, 1400, 1000, 1400, page)
	want := Rect{X0: 0, Y0: 0, X1: 500, Y1: 700}
	if got != want {
		t.Errorf("full page: got %+v, want %+v", got, want)
	}
}

func TestRasterToPage_VerticalFlip(t *testing.T) {
	page := Rect{X1: 500, Y1: 500}

	tests := []struct {
		name       string
		x, y, w, h int
		want       Rect
	}{
		{"top-left corner", 0, 0, 100, 100, Rect{0, 450, 50, 500}},
		{"bottom-left corner", 0, 900, 100, 100, Rect{0, 0, 50, 50}},
		{"scenario blob", 100, 100, 20, 20, Rect{50, 440, 60, 450}},
		{"bottom-right pixel", 999, 999, 1, 1, Rect{499.5, 0, 500, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RasterToPage(tt.x, tt.y, tt.w, tt.h, 1000, 1000, page)
			if !rectNear(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRect(t *testing.T) {
	r := Rect{X0: 10, Y0: 20, X1: 40, Y1: 30}
	if r.Width() != 30 || r.Height() != 10 {
		t.Errorf("size: got %vx%v, want 30x10", r.Width(), r.Height())
	}
	if r.Empty() {
		t.Error("rect with area reported empty")
	}
	if !(Rect{X0: 5, X1: 5, Y1: 10}).Empty() {
		t.Error("zero-width rect should be empty")
	}
}

func TestParsePageCount(t *testing.T) {
	output := []byte("Title:          deck\nProducer:       test\nPages:          12\nEncrypted:      no\n")
	n, err := parsePageCount(output)
	if err != nil {
		t.Fatalf("parsePageCount failed: %v", err)
	}
	if n != 12 {
		t.Errorf("got %d pages, want 12", n)
	}

	if _, err := parsePageCount([]byte("Producer: x\n")); err == nil {
		t.Error("missing Pages line should fail")
	}
}

func TestParsePageSizes(t *testing.T) {
	output := []byte(`Pages:          2
Page    1 size: 612 x 792 pts (letter)
Page    1 rot:  0
Page    2 size: 841.89 x 595.276 pts (A4)
Page    2 rot:  0
`)
	rects, err := parsePageSizes(output, 2)
	if err != nil {
		t.Fatalf("parsePageSizes failed: %v", err)
	}
	if rects[0] != (Rect{X1: 612, Y1: 792}) {
		t.Errorf("page 1: got %+v", rects[0])
	}
	if rects[1] != (Rect{X1: 841.89, Y1: 595.276}) {
		t.Errorf("page 2: got %+v", rects[1])
	}
}

func TestParsePageSizes_Missing(t *testing.T) {
	output := []byte("Page    1 size: 612 x 792 pts (letter)\n")
	if _, err := parsePageSizes(output, 2); err == nil {
		t.Error("missing page size should fail")
	}
}

func rectNear(a, b Rect) bool {
	const eps = 1e-9
	return math.Abs(a.X0-b.X0) < eps && math.Abs(a.Y0-b.Y0) < eps &&
		math.Abs(a.X1-b.X1) < eps && math.Abs(a.Y1-b.Y1) < eps
}
