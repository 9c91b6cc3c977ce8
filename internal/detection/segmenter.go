package detection

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/slidemarks/internal/document"
	"github.com/ironsheep/slidemarks/internal/imaging"
)

// DefaultZoom is the render magnification used for detection.
const DefaultZoom = 2.0

// Segmenter renders pages and classifies their pixels as marker or not.
type Segmenter struct {
	Zoom   float64
	Ranges []imaging.HSVRange
}

// NewSegmenter returns a Segmenter with the reference zoom and color bands.
func NewSegmenter() *Segmenter {
	return &Segmenter{Zoom: DefaultZoom, Ranges: imaging.MagentaRanges()}
}

// SegmentPage renders page at the segmenter's zoom and returns the raster
// together with its marker mask. The page is not modified.
func (s *Segmenter) SegmentPage(ctx context.Context, page document.Page) (image.Image, *imaging.Mask, error) {
	zoom := s.Zoom
	if zoom <= 0 {
		zoom = DefaultZoom
	}

	img, err := page.Render(ctx, zoom)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render page %d: %w", page.Number(), err)
	}
	mask := imaging.Segment(img, s.Ranges)

	log.Debug().
		Int("page", page.Number()).
		Int("width", mask.Width).
		Int("height", mask.Height).
		Int("markerPixels", mask.Count()).
		Msg("segmented page")
	return img, mask, nil
}
