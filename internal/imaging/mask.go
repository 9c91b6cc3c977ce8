package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
)

// Mask is a binary classification of a raster, one boolean per pixel.
//
// Bits is row-major: the pixel at (x, y) is Bits[y*Width+x]. Coordinates are
// relative to the raster's top-left corner regardless of the source image's
// bounds origin.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask allocates an empty mask of the given dimensions.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Bits:   make([]bool, width*height),
	}
}

// At reports whether (x, y) is a marker pixel. Out-of-range coordinates
// report false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Set marks or clears a single pixel. Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Bits[y*m.Width+x] = on
}

// Count returns the number of marker pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Empty reports whether the mask has no marker pixels.
func (m *Mask) Empty() bool {
	for _, b := range m.Bits {
		if b {
			return false
		}
	}
	return true
}

// Image renders the mask as a grayscale image: marker pixels are white (255),
// everything else black (0).
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, b := range m.Bits {
		if b {
			img.Pix[(i/m.Width)*img.Stride+i%m.Width] = 255
		}
	}
	return img
}

// Segment classifies every pixel of img against ranges.
//
// Parameters:
//   - img: The rendered page. Any image.Image is accepted; it is normalized to
//     RGBA before classification and is never modified.
//   - ranges: Color bands that count as marker. A pixel inside any band is set.
//
// Returns a Mask with the same dimensions as img. An empty ranges slice
// yields an empty mask.
func Segment(img image.Image, ranges []HSVRange) *Mask {
	rgba := clone.AsRGBA(img)
	bounds := rgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	mask := NewMask(width, height)
	if len(ranges) == 0 {
		return mask
	}

	for y := 0; y < height; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < width; x++ {
			i := x * 4
			if inAnyRange(row[i], row[i+1], row[i+2], ranges) {
				mask.Bits[y*width+x] = true
			}
		}
	}
	return mask
}

// SaveMask writes the mask as a PNG file, white marker pixels on black.
func SaveMask(path string, m *Mask) error {
	if err := imgio.Save(path, m.Image(), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save mask: %w", err)
	}
	return nil
}
