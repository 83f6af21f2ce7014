package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/cache"
	errs "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
	formatPDF = "pdf"
	formatPNG = "png"

	defaultOutput = "family.svg"
	defaultScale  = 2.0 // PNG resolution multiplier
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatDOT: true, formatPDF: true, formatPNG: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output path; "-" writes to stdout
	format   string // overrides the format implied by the extension
	detailed bool   // include descriptions in node labels
	stored   bool   // use stored positions instead of a fresh layout
	noCache  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{output: defaultOutput}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the tree as SVG, DOT, PDF or PNG",
		Long: `Draw the tree as a node-link diagram.

Positions come from a fresh generational layout (the same one 'layout'
prints), or from the stored positions with --stored. The output format
follows the file extension: .svg, .dot, .pdf or .png. PDF and PNG need
rsvg-convert from librsvg.

Rendered SVGs are cached by content, so re-rendering an unchanged tree is
instant. Use --no-cache to bypass the cache.`,
		Example: `  kintree render
  kintree render -o tree.png
  kintree render -o - --format dot | dot -Tpng > tree.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", opts.output, "output file (- for stdout)")
	flags.StringVarP(&opts.format, "format", "f", "", "output format: svg, dot, pdf, png (default: from extension)")
	flags.BoolVar(&opts.detailed, "detailed", false, "include descriptions in the boxes")
	flags.BoolVar(&opts.stored, "stored", false, "use stored positions instead of computing a layout")
	flags.BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// outputFormat picks the format from the flag or the output extension.
func outputFormat(output, format string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "" {
			format = formatSVG
		}
	}
	if !validFormats[format] {
		return "", errs.New(errs.ErrCodeInvalidInput, "invalid format: %s (must be 'svg', 'dot', 'pdf', or 'png')", format)
	}
	return format, nil
}

func (c *CLI) runRender(ctx context.Context, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	format, err := outputFormat(opts.output, opts.format)
	if err != nil {
		return err
	}
	if opts.output != "-" {
		if err := errs.ValidatePath(opts.output); err != nil {
			return err
		}
	}

	store, cfg, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	people := store.People()
	var positions map[int]family.Position
	if !opts.stored {
		positions = layout.Compute(people, layoutOptions(cfg))
	}
	dot := nodelink.ToDOT(people, positions, nodelink.Options{Detailed: opts.detailed})

	rc := newCache(cfg, opts.noCache)
	defer rc.Close()

	data, cached, err := renderCached(ctx, rc, dot, format)
	if err != nil {
		return err
	}
	logger.Debugf("Generated %s: %d bytes", format, len(data))

	w, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer w.Close()
	if _, err := w.Write(data); err != nil {
		return err
	}

	if opts.output != "-" {
		printSuccess("Rendered %s", format)
		printStats(len(people), countLinks(people), cached)
		printFile(opts.output)
	}
	return nil
}

// renderCached returns the rendered bytes for dot, consulting rc first.
// DOT output needs no rendering and bypasses the cache.
func renderCached(ctx context.Context, rc cache.Cache, dot, format string) ([]byte, bool, error) {
	if format == formatDOT {
		return []byte(dot), false, nil
	}

	logger := loggerFromContext(ctx)
	key := cache.RenderKey(dot, format)
	if data, hit, err := rc.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "err", err)
	} else if hit {
		logger.Debug("cache hit", "format", format)
		return data, true, nil
	}

	prog := newProgress(logger)
	spin := newSpinnerWithContext(ctx, "Rendering "+format)
	spin.Start()
	data, err := renderDOT(ctx, dot, format)
	spin.Stop()
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeInternal, err, "render %s", format)
	}
	prog.done(fmt.Sprintf("Rendered %s", format))

	if err := rc.Set(ctx, key, data, 0); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
	return data, false, nil
}

func renderDOT(ctx context.Context, dot, format string) ([]byte, error) {
	switch format {
	case formatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case formatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case formatPNG:
		return nodelink.RenderPNG(ctx, dot, defaultScale)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing; "-" and "" mean stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{out}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", path)
	}
	return f, nil
}
