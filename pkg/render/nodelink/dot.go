package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the description under the name and birth date.
	Detailed bool
	// Scale multiplies layout coordinates. Zero means 0.5, which turns the
	// default 200-unit gaps into 100pt.
	Scale float64
}

const defaultScale = 0.5

// ToDOT converts a people snapshot to Graphviz DOT.
//
// positions takes precedence over each person's stored Position; pass nil
// to use the stored positions only. Links to ids outside the snapshot are
// skipped.
func ToDOT(people []family.Person, positions map[int]family.Position, opts Options) string {
	scale := opts.Scale
	if scale == 0 {
		scale = defaultScale
	}

	known := make(map[int]bool, len(people))
	pinned := false
	for _, p := range people {
		known[p.ID] = true
		if _, ok := positionOf(p, positions); ok {
			pinned = true
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if pinned {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  splines=true;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
		buf.WriteString("  ranksep=0.5;\n")
		buf.WriteString("  nodesep=0.3;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, p := range people {
		attrs := fmtAttrs(p, opts.Detailed)
		if pos, ok := positionOf(p, positions); ok {
			// Graphviz's y axis points up; the layout's points down.
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtCoord(pos.X*scale), fmtCoord(-pos.Y*scale)))
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", p.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, p := range people {
		for _, c := range p.Children {
			if known[c] {
				fmt.Fprintf(&buf, "  %d -> %d;\n", p.ID, c)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func positionOf(p family.Person, positions map[int]family.Position) (family.Position, bool) {
	if pos, ok := positions[p.ID]; ok {
		return pos, true
	}
	if p.Position != nil {
		return *p.Position, true
	}
	return family.Position{}, false
}

func fmtAttrs(p family.Person, detailed bool) []string {
	label := p.Label()
	if detailed && p.Description != nil {
		label += "\n" + *p.Description
	}
	attrs := []string{"label=" + quote(label)}
	if p.Description != nil {
		attrs = append(attrs, "tooltip="+quote(*p.Description))
	}
	return attrs
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// quote returns s as a DOT string literal. Unlike %q it leaves non-ASCII
// text alone, which DOT accepts as UTF-8.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")
	return `"` + r.Replace(s) + `"`
}

var layoutRe = regexp.MustCompile(`(?m)^\s*layout="?(\w+)"?;`)

// Engine returns the Graphviz layout engine a DOT source asks for,
// defaulting to dot.
func Engine(dot string) graphviz.Layout {
	if m := layoutRe.FindStringSubmatch(dot); m != nil {
		return graphviz.Layout(m[1])
	}
	return graphviz.DOT
}

// RenderSVG renders a DOT graph to SVG using Graphviz, with the engine
// named by its layout attribute.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(Engine(dot))

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its
// container instead of carrying Graphviz's fixed point size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// Requires librsvg.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
