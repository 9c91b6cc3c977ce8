package removal

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/slidemarks/internal/detection"
	"github.com/ironsheep/slidemarks/internal/document"
	"github.com/ironsheep/slidemarks/internal/imaging"
)

// Overpainter replaces a page with its own render, marker pixels painted white.
//
// The page loses its vector content and text layer; it becomes a single
// image at the segmenter's zoom.
type Overpainter struct {
	Segmenter *detection.Segmenter
}

// RemoveMarkers implements Remover.
func (o *Overpainter) RemoveMarkers(ctx context.Context, page document.Page) error {
	img, mask, err := o.Segmenter.SegmentPage(ctx, page)
	if err != nil {
		return err
	}
	if mask.Empty() {
		return nil
	}

	png, err := imaging.EncodePNG(imaging.WhiteOut(img, mask))
	if err != nil {
		return err
	}
	if err := page.SetImage(page.Rect(), png); err != nil {
		return fmt.Errorf("failed to replace page %d: %w", page.Number(), err)
	}

	log.Debug().Int("page", page.Number()).Int("pixels", mask.Count()).Msg("overpainted markers")
	return nil
}
