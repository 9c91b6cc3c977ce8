package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ironsheep/slidemarks/internal/bundle"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <bundle>",
		Short: "Summarize an annotation bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := bundle.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := b.Document()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version:     %d\n", b.Version)
			fmt.Fprintf(out, "pdf:         %d bytes\n", len(doc))
			fmt.Fprintf(out, "annotations: %d\n", len(b.Annotations))
			fmt.Fprintf(out, "pages:       %v\n", b.Pages())
			if len(b.Annotations) == 0 {
				return nil
			}

			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPAGE\tX\tY")
			for _, a := range b.Annotations {
				fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\n", a.ID, a.Page, a.X, a.Y)
			}
			return tw.Flush()
		},
	}
}
