// Package render turns a family graph into pictures.
//
// The [nodelink] subpackage builds Graphviz DOT from a people snapshot and
// renders it to SVG in process. This package converts that SVG to other
// formats with the external rsvg-convert tool (from librsvg):
//
//	dot := nodelink.ToDOT(people, positions, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/kintree/pkg/render/nodelink
package render
