package document

import (
	"context"
	"errors"
	"image"
	"image/color"
)

// ErrOpen is wrapped by every failure to open or parse an input document.
var ErrOpen = errors.New("cannot open document")

// Document is an open, exclusively owned document.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// Page returns the page at a 0-based index.
	Page(index int) (Page, error)

	// Bytes serializes the whole document, including committed edits.
	Bytes() ([]byte, error)

	// Close releases the document. Further calls are no-ops.
	Close() error
}

// Page is one page of a Document.
type Page interface {
	// Number returns the 1-based page number.
	Number() int

	// Rect returns the page rectangle in page space.
	Rect() Rect

	// Render rasterizes the page at the given magnification. A zoom of 1.0
	// renders one pixel per page unit.
	Render(ctx context.Context, zoom float64) (image.Image, error)

	// MarkForRemoval schedules a region for redaction with an opaque fill.
	// Nothing changes until CommitRedactions is called.
	MarkForRemoval(r Rect, fill color.Color)

	// CommitRedactions permanently applies all scheduled redactions: drawing
	// operations inside each region are removed and the region is filled.
	CommitRedactions() error

	// SetImage replaces the page's visual content with a PNG image scaled
	// to r.
	SetImage(r Rect, png []byte) error
}

// Rect is a rectangle in page space, origin bottom-left.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns X1 - X0.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns Y1 - Y0.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

func (r Rect) offset(dx, dy float64) Rect {
	return Rect{X0: r.X0 + dx, Y0: r.Y0 + dy, X1: r.X1 + dx, Y1: r.Y1 + dy}
}

// RasterToPage maps a raster bounding box to page space.
//
// The box (x, y, w, h) is in pixels of a rasterW x rasterH render of a page
// whose rectangle is page. With pw, ph the page width and height:
//
//	X0 = x/W * pw
//	Y0 = ph - (y+h)/H * ph
//	X1 = (x+w)/W * pw
//	Y1 = ph - y/H * ph
//
// A box covering the whole raster maps to (0, 0, pw, ph).
func RasterToPage(x, y, w, h, rasterW, rasterH int, page Rect) Rect {
	pw, ph := page.Width(), page.Height()
	fw, fh := float64(rasterW), float64(rasterH)
	return Rect{
		X0: float64(x) / fw * pw,
		Y0: ph - float64(y+h)/fh*ph,
		X1: float64(x+w) / fw * pw,
		Y1: ph - float64(y)/fh*ph,
	}
}
