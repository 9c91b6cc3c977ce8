// Package pipeline runs marker detection over a whole document.
//
// A run makes two passes over the pages, strictly in order. The first pass
// renders and segments each page and collects the positions of its marker
// regions; once every page is done the positions are clustered per page and
// numbered. The second pass, only when a Remover is configured, erases the
// markers page by page. Exactly one raster and mask are alive at any time.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/slidemarks/internal/detection"
	"github.com/ironsheep/slidemarks/internal/document"
	"github.com/ironsheep/slidemarks/internal/imaging"
	"github.com/ironsheep/slidemarks/internal/removal"
)

// Options configures a run.
type Options struct {
	Zoom             float64
	Ranges           []imaging.HSVRange
	SizeFilter       detection.SizeFilter
	ClusterThreshold float64
	IDPrefix         string

	// Remover, when non-nil, runs a second pass that erases markers.
	Remover removal.Remover

	// MaskDir, when set, receives one PNG mask per page.
	MaskDir string
}

// DefaultOptions returns the reference detection settings with no removal.
func DefaultOptions() Options {
	return Options{
		Zoom:             detection.DefaultZoom,
		Ranges:           imaging.MagentaRanges(),
		SizeFilter:       detection.DefaultSizeFilter(),
		ClusterThreshold: detection.DefaultClusterThreshold,
		IDPrefix:         detection.DefaultIDPrefix,
	}
}

// Result is the outcome of a run.
type Result struct {
	Annotations []detection.Annotation
	Pages       int
	Removed     bool
}

// Run detects and numbers the markers of doc, then optionally removes them.
//
// doc stays open and owned by the caller; when a Remover ran, doc.Bytes()
// afterwards yields the edited document. Any page failure aborts the run.
func Run(ctx context.Context, doc document.Document, opts Options) (*Result, error) {
	segmenter := &detection.Segmenter{Zoom: opts.Zoom, Ranges: opts.Ranges}
	pages := doc.PageCount()

	if opts.MaskDir != "" {
		if err := os.MkdirAll(opts.MaskDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create mask dir: %w", err)
		}
	}

	var acc Accumulator
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := doc.Page(i)
		if err != nil {
			return nil, err
		}

		_, mask, err := segmenter.SegmentPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if opts.MaskDir != "" {
			path := filepath.Join(opts.MaskDir, fmt.Sprintf("page-%03d-mask.png", page.Number()))
			if err := imaging.SaveMask(path, mask); err != nil {
				return nil, err
			}
		}

		found := detection.ExtractPositions(mask, page.Number(), opts.SizeFilter)
		acc.Add(found...)
		log.Info().Int("page", page.Number()).Int("of", pages).Int("regions", len(found)).Msg("scanned page")
	}

	clustered := detection.ClusterByPage(acc.Positions(), opts.ClusterThreshold)
	result := &Result{
		Annotations: detection.Sequence(clustered, opts.IDPrefix),
		Pages:       pages,
	}
	log.Info().Int("regions", acc.Len()).Int("markers", len(result.Annotations)).Msg("detection complete")

	if opts.Remover == nil {
		return result, nil
	}
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := doc.Page(i)
		if err != nil {
			return nil, err
		}
		if err := opts.Remover.RemoveMarkers(ctx, page); err != nil {
			return nil, fmt.Errorf("failed to remove markers on page %d: %w", page.Number(), err)
		}
	}
	result.Removed = true
	log.Info().Int("pages", pages).Msg("markers removed")
	return result, nil
}
