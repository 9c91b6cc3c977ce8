package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/slidemarks/internal/bundle"
	"github.com/ironsheep/slidemarks/internal/config"
	"github.com/ironsheep/slidemarks/internal/pipeline"
	"github.com/ironsheep/slidemarks/internal/removal"
)

type extractFlags struct {
	remove    string
	zoom      float64
	threshold float64
	maskDir   string
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	flags := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract <input.pdf> [clean.pdf | output] [output]",
		Short: "Detect markers and write an annotation bundle",
		Long: `Renders every page of the input PDF, finds the marker glyphs, numbers them
in reading order and writes a bundle.

When the second argument ends in .pdf it is a marker-free copy of the input
whose bytes are stored in the bundle instead; otherwise it is the output path.
The output defaults to the input path with a .pdfannotations extension.`,
		Example: `  # Write deck.pdfannotations next to the input
  slidemarks extract deck.pdf

  # Embed a clean export and choose the output path
  slidemarks extract deck.pdf deck-clean.pdf out/deck.pdfannotations

  # Remove the markers from the embedded document
  slidemarks extract deck.pdf --remove redact`,
		Args: extractArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			applyExtractFlags(cmd, flags, &cfg)

			input, clean, output := splitExtractArgs(args)
			result, err := pipeline.Extract(cmd.Context(), pipeline.ExtractRequest{
				Input:  input,
				Clean:  clean,
				Output: output,
				Config: cfg,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d annotations on %d pages saved to %s\n",
				len(result.Annotations), result.Pages, result.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.remove, "remove", removal.StrategyNone,
		"Marker removal strategy ("+strings.Join(removal.Strategies(), ", ")+")")
	cmd.Flags().Float64Var(&flags.zoom, "zoom", 0, "Render magnification (default 2.0)")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0, "Cluster merge distance in page fractions (default 0.05)")
	cmd.Flags().StringVar(&flags.maskDir, "mask-dir", "", "Write one PNG marker mask per page to this directory")

	return cmd
}

// extractArgs accepts one to three paths. Its errors carry the usage line
// since SilenceUsage suppresses cobra's own usage output.
func extractArgs(cmd *cobra.Command, args []string) error {
	switch {
	case len(args) == 0:
		return fmt.Errorf("no input PDF given\nUsage: %s", cmd.UseLine())
	case len(args) > 3:
		return fmt.Errorf("accepts at most 3 paths, received %d\nUsage: %s", len(args), cmd.UseLine())
	}
	return nil
}

// applyExtractFlags overrides cfg with flags the user set explicitly.
func applyExtractFlags(cmd *cobra.Command, flags *extractFlags, cfg *config.Config) {
	if cmd.Flags().Changed("remove") {
		cfg.Remove = flags.remove
	}
	if cmd.Flags().Changed("zoom") {
		cfg.Zoom = flags.zoom
	}
	if cmd.Flags().Changed("threshold") {
		cfg.ClusterThreshold = flags.threshold
	}
	if cmd.Flags().Changed("mask-dir") {
		cfg.MaskDir = flags.maskDir
	}
}

// splitExtractArgs interprets the positional arguments of extract.
func splitExtractArgs(args []string) (input, clean, output string) {
	input = args[0]
	switch len(args) {
	case 2:
		if bundle.IsPDFPath(args[1]) {
			clean = args[1]
		} else {
			output = args[1]
		}
	case 3:
		clean, output = args[1], args[2]
	}
	return input, clean, output
}
