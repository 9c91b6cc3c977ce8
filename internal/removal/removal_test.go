package removal

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/ironsheep/slidemarks/internal/detection"
	"github.com/ironsheep/slidemarks/internal/document"
)

var magenta = color.RGBA{255, 0, 255, 255}

// recordingPage is an in-memory page that records every mutation.
type recordingPage struct {
	img       image.Image
	rect      document.Rect
	marked    []document.Rect
	commits   int
	imageRect document.Rect
	imagePNG  []byte
}

func (p *recordingPage) Number() int         { return 1 }
func (p *recordingPage) Rect() document.Rect { return p.rect }

func (p *recordingPage) Render(context.Context, float64) (image.Image, error) {
	return p.img, nil
}

func (p *recordingPage) MarkForRemoval(r document.Rect, _ color.Color) {
	p.marked = append(p.marked, r)
}

func (p *recordingPage) CommitRedactions() error {
	p.commits++
	return nil
}

func (p *recordingPage) SetImage(r document.Rect, data []byte) error {
	p.imageRect = r
	p.imagePNG = data
	return nil
}

func (p *recordingPage) untouched() bool {
	return len(p.marked) == 0 && p.commits == 0 && p.imagePNG == nil
}

func newPage(width, height int, rect document.Rect, blobs ...image.Rectangle) *recordingPage {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for _, b := range blobs {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				img.Set(x, y, magenta)
			}
		}
	}
	return &recordingPage{img: img, rect: rect}
}

func TestNew(t *testing.T) {
	tests := []struct {
		strategy string
		wantType string
		wantErr  bool
	}{
		{"", "", false},
		{"none", "", false},
		{"redact", "redact", false},
		{"REDACT", "redact", false},
		{"overpaint", "overpaint", false},
		{"erase", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			r, err := New(tt.strategy, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStrategy) {
					t.Errorf("got %v, want ErrUnknownStrategy", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch tt.wantType {
			case "":
				if r != nil {
					t.Errorf("expected nil remover, got %T", r)
				}
			case "redact":
				if rd, ok := r.(*Redactor); !ok || rd.Segmenter == nil {
					t.Errorf("expected *Redactor with segmenter, got %T", r)
				}
			case "overpaint":
				if op, ok := r.(*Overpainter); !ok || op.Segmenter == nil {
					t.Errorf("expected *Overpainter with segmenter, got %T", r)
				}
			}
		})
	}
}

func TestRemovers_NoMarkersLeavePageUntouched(t *testing.T) {
	removers := map[string]Remover{
		"redact":    &Redactor{Segmenter: detection.NewSegmenter()},
		"overpaint": &Overpainter{Segmenter: detection.NewSegmenter()},
	}

	for name, r := range removers {
		t.Run(name, func(t *testing.T) {
			page := newPage(100, 100, document.Rect{X1: 50, Y1: 50})
			if err := r.RemoveMarkers(context.Background(), page); err != nil {
				t.Fatalf("RemoveMarkers failed: %v", err)
			}
			if !page.untouched() {
				t.Errorf("page was modified: %+v", page)
			}
		})
	}
}

func TestRedactor_MapsRegionsToPageSpace(t *testing.T) {
	page := newPage(200, 100, document.Rect{X1: 100, Y1: 50},
		image.Rect(40, 20, 60, 30),
	)

	r := &Redactor{Segmenter: detection.NewSegmenter()}
	if err := r.RemoveMarkers(context.Background(), page); err != nil {
		t.Fatalf("RemoveMarkers failed: %v", err)
	}

	if len(page.marked) != 1 {
		t.Fatalf("expected 1 redaction, got %d", len(page.marked))
	}
	want := document.Rect{X0: 20, Y0: 35, X1: 30, Y1: 40}
	got := page.marked[0]
	if !near(got.X0, want.X0) || !near(got.Y0, want.Y0) || !near(got.X1, want.X1) || !near(got.Y1, want.Y1) {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if page.commits != 1 {
		t.Errorf("expected 1 commit, got %d", page.commits)
	}
	if page.imagePNG != nil {
		t.Error("redactor must not replace the page image")
	}
}

func TestRedactor_IgnoresSizeFilter(t *testing.T) {
	page := newPage(200, 200, document.Rect{X1: 100, Y1: 100},
		image.Rect(10, 10, 40, 40),
		image.Rect(150, 150, 152, 152),
	)

	r := &Redactor{Segmenter: detection.NewSegmenter()}
	if err := r.RemoveMarkers(context.Background(), page); err != nil {
		t.Fatalf("RemoveMarkers failed: %v", err)
	}
	if len(page.marked) != 2 {
		t.Errorf("expected both regions redacted, got %d", len(page.marked))
	}
	if page.commits != 1 {
		t.Errorf("redactions should be committed once, got %d", page.commits)
	}
}

func TestOverpainter_ReplacesPageImage(t *testing.T) {
	rect := document.Rect{X1: 50, Y1: 50}
	page := newPage(100, 100, rect, image.Rect(10, 10, 30, 30))

	o := &Overpainter{Segmenter: detection.NewSegmenter()}
	if err := o.RemoveMarkers(context.Background(), page); err != nil {
		t.Fatalf("RemoveMarkers failed: %v", err)
	}

	if page.imagePNG == nil {
		t.Fatal("expected the page image to be replaced")
	}
	if page.imageRect != rect {
		t.Errorf("image rect: got %+v, want %+v", page.imageRect, rect)
	}
	if len(page.marked) != 0 || page.commits != 0 {
		t.Error("overpainter must not redact")
	}

	img, err := png.Decode(bytes.NewReader(page.imagePNG))
	if err != nil {
		t.Fatalf("replacement is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Errorf("replacement size: got %v", img.Bounds())
	}
	r, g, b, _ := img.At(20, 20).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("marker pixel: got (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
