// Package nodelink renders a family graph as a node-link diagram.
//
// # Overview
//
// Each person becomes a rounded box labelled with their name and birth date;
// each parent→child link becomes an arrow. When positions are supplied
// (usually from [layout.Compute]) every node is pinned at its coordinates and
// the graph is laid out with neato, so the picture matches the stored layout.
// Without positions, Graphviz's dot engine arranges the generations itself.
//
// # Usage
//
//	positions := layout.Compute(people, layout.Options{})
//	dot := nodelink.ToDOT(people, positions, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: also print each person's description in the box
//   - Scale: multiplies layout coordinates before they become points
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
//
// [layout.Compute]: github.com/matzehuels/kintree/pkg/layout.Compute
package nodelink
