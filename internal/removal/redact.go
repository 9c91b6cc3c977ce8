package removal

import (
	"context"
	"image/color"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/slidemarks/internal/detection"
	"github.com/ironsheep/slidemarks/internal/document"
)

// Redactor removes the page content underneath every marker region.
//
// Regions are the external components of the page mask with no size filter
// and no clustering, so stray marker-colored specks are removed as well.
// Each region box is mapped to page space and redacted with a white fill.
type Redactor struct {
	Segmenter *detection.Segmenter
}

// RemoveMarkers implements Remover.
func (r *Redactor) RemoveMarkers(ctx context.Context, page document.Page) error {
	img, mask, err := r.Segmenter.SegmentPage(ctx, page)
	if err != nil {
		return err
	}

	boxes := detection.Components(mask)
	if len(boxes) == 0 {
		return nil
	}

	bounds := img.Bounds()
	pageRect := page.Rect()
	for _, b := range boxes {
		rect := document.RasterToPage(b.X, b.Y, b.W, b.H, bounds.Dx(), bounds.Dy(), pageRect)
		page.MarkForRemoval(rect, color.White)
	}

	log.Debug().Int("page", page.Number()).Int("regions", len(boxes)).Msg("redacting markers")
	return page.CommitRedactions()
}
