package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom/htmldom"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		output  string
		nodeIDs bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the demo document as HTML",
		Long: `Build the demo document and write its HTML.

Examples:
  vbind render
  vbind render -o demo.html
  vbind render --node-ids`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), flags, output, nodeIDs)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&nodeIDs, "node-ids", false, "Add data-vb-id attributes to elements")

	return cmd
}

func runRender(ctx context.Context, flags *globalFlags, output string, nodeIDs bool) error {
	cfg, logger, err := flags.load()
	if err != nil {
		return err
	}
	d, err := buildDocument(ctx, cfg, logger, nil, nil)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return errors.New("L001").Wrap(err)
		}
		defer f.Close()
		w = f
	}

	var opts []htmldom.RenderOption
	if nodeIDs {
		opts = append(opts, htmldom.WithNodeIDs())
	}
	if err := htmldom.Render(w, d.doc, opts...); err != nil {
		return errors.New("L001").Wrap(err)
	}
	if output != "" {
		success("Wrote %s", output)
	} else {
		io.WriteString(w, "\n")
	}
	return nil
}
