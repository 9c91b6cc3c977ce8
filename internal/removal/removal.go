// Package removal erases detected markers from document pages.
//
// Two strategies are available behind the Remover interface. Redactor removes
// the page content under each marker region; Overpainter replaces the whole
// page with a raster in which marker pixels have been painted white. Both
// re-render and re-segment the page themselves, so they can run after
// detection without keeping any raster alive in between.
//
// A page without marker pixels is never touched by either strategy.
package removal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/slidemarks/internal/detection"
	"github.com/ironsheep/slidemarks/internal/document"
)

// ErrUnknownStrategy is returned by New for an unrecognized strategy name.
var ErrUnknownStrategy = errors.New("unknown removal strategy")

// Strategy names accepted by New.
const (
	StrategyNone      = "none"
	StrategyRedact    = "redact"
	StrategyOverpaint = "overpaint"
)

// Remover erases markers from a single page.
type Remover interface {
	RemoveMarkers(ctx context.Context, page document.Page) error
}

// New returns the Remover for a strategy name.
//
// "" and "none" return a nil Remover, meaning no removal pass runs. Names are
// matched case-insensitively.
func New(strategy string, segmenter *detection.Segmenter) (Remover, error) {
	if segmenter == nil {
		segmenter = detection.NewSegmenter()
	}
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyNone:
		return nil, nil
	case StrategyRedact:
		return &Redactor{Segmenter: segmenter}, nil
	case StrategyOverpaint:
		return &Overpainter{Segmenter: segmenter}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// Strategies lists the accepted strategy names.
func Strategies() []string {
	return []string{StrategyNone, StrategyRedact, StrategyOverpaint}
}
