package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/slidemarks/internal/bundle"
	"github.com/ironsheep/slidemarks/internal/config"
	"github.com/ironsheep/slidemarks/internal/detection"
	"github.com/ironsheep/slidemarks/internal/document"
	"github.com/ironsheep/slidemarks/internal/removal"
)

// Opener opens a document by path.
type Opener func(ctx context.Context, path string) (document.Document, error)

// OpenPDF is the default Opener.
func OpenPDF(ctx context.Context, path string) (document.Document, error) {
	return document.OpenPDF(ctx, path)
}

// ExtractRequest describes one extract run from input file to bundle file.
type ExtractRequest struct {
	Input string

	// Clean, when set, names a marker-free replacement document whose bytes
	// are stored in the bundle instead of the input's.
	Clean string

	// Output defaults to bundle.DefaultOutputPath(Input).
	Output string

	Config config.Config

	// Open defaults to OpenPDF.
	Open Opener
}

// ExtractResult summarizes a written bundle.
type ExtractResult struct {
	Output      string
	Pages       int
	Annotations []detection.Annotation
}

// OptionsFromConfig converts a validated configuration into run options.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	if err := cfg.Validate(); err != nil {
		return Options{}, err
	}
	remover, err := removal.New(cfg.Remove, cfg.Segmenter())
	if err != nil {
		return Options{}, err
	}
	return Options{
		Zoom:             cfg.Zoom,
		Ranges:           cfg.Ranges,
		SizeFilter:       cfg.SizeFilter(),
		ClusterThreshold: cfg.ClusterThreshold,
		IDPrefix:         cfg.IDPrefix,
		Remover:          remover,
		MaskDir:          cfg.MaskDir,
	}, nil
}

// Extract opens the input, runs detection (and removal, if configured) and
// writes the bundle. No bundle is written when any step fails.
func Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	opts, err := OptionsFromConfig(req.Config)
	if err != nil {
		return nil, err
	}
	open := req.Open
	if open == nil {
		open = OpenPDF
	}
	output := req.Output
	if output == "" {
		output = bundle.DefaultOutputPath(req.Input)
	}

	log.Info().Str("input", req.Input).Msg("extracting annotations")
	result, data, err := detect(ctx, open, req.Input, opts)
	if err != nil {
		return nil, err
	}

	if req.Clean != "" {
		data, err = os.ReadFile(req.Clean)
		if err != nil {
			return nil, fmt.Errorf("failed to read clean document: %w", err)
		}
		log.Info().Str("clean", req.Clean).Msg("using clean document")
	}

	if err := bundle.WriteFile(output, bundle.Build(data, result.Annotations)); err != nil {
		return nil, err
	}
	log.Info().Str("output", output).Int("annotations", len(result.Annotations)).Msg("saved bundle")

	return &ExtractResult{
		Output:      output,
		Pages:       result.Pages,
		Annotations: result.Annotations,
	}, nil
}

// Detect opens path and runs detection without removal or output.
func Detect(ctx context.Context, open Opener, path string, cfg config.Config) (*Result, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts.Remover = nil
	opts.MaskDir = ""
	if open == nil {
		open = OpenPDF
	}
	result, _, err := detect(ctx, open, path, opts)
	return result, err
}

// detect owns the document for the length of one run: it is opened here,
// serialized after the run and closed exactly once.
func detect(ctx context.Context, open Opener, path string, opts Options) (*Result, []byte, error) {
	doc, err := open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	defer doc.Close()

	result, err := Run(ctx, doc, opts)
	if err != nil {
		return nil, nil, err
	}
	data, err := doc.Bytes()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return result, data, nil
}
