// Package pkg provides the core libraries for kintree family trees.
//
// # Overview
//
// kintree keeps a genealogical graph (people joined by parent/child links)
// and lays it out by generation, one row per generation below the roots.
// The pkg directory is organized into these areas:
//
//  1. [family] - The graph store: people, links, audit, persistence
//  2. [layout] - Generational BFS layout
//  3. [render] - Node-link diagrams via Graphviz, SVG to PDF/PNG
//  4. [cache] - Content-addressed cache for rendered diagrams
//  5. [config], [errors], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	Backend (JSON file, SQLite, Redis, MongoDB, Neo4j)
//	         ↓
//	    [family] Store (mutations keep links reciprocal)
//	         ↓
//	    [layout] (roots → generations → positions)
//	         ↓
//	    [render/nodelink] (DOT → SVG/PDF/PNG)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/kintree/pkg/family"
//	    "github.com/matzehuels/kintree/pkg/family/backend"
//	    "github.com/matzehuels/kintree/pkg/layout"
//	    "github.com/matzehuels/kintree/pkg/render/nodelink"
//	)
//
//	store := family.NewStore(backend.NewFileBackend("family.json"))
//	if err := store.Load(ctx); err != nil {
//	    return err
//	}
//	ana, _ := store.Add(ctx, family.NewPerson{Name: "Ana"})
//	store.Add(ctx, family.NewPerson{Name: "Bea", Parents: []int{ana}})
//
//	people := store.People()
//	positions := layout.Compute(people, layout.Options{})
//	svg, _ := nodelink.RenderSVG(ctx, nodelink.ToDOT(people, positions, nodelink.Options{}))
//
// # Main Packages
//
// [family] - Person records and the Store that owns them. Every mutation
// mirrors links on both sides and is persisted before it becomes visible.
// [family.Audit] reports any link that is not mirrored or points nowhere.
//
// [family/backend] - Persistence behind the Store. The JSON file backend is
// the default; SQLite, Redis, MongoDB and Neo4j hold the same ordered data.
//
// [layout] - Breadth-first generations from the roots (people without
// parents) and evenly spaced positions, one row per generation.
//
// [render/nodelink] - Graphviz diagrams of the tree, pinned to computed or
// stored positions when there are any.
//
// [render] - SVG to PDF/PNG conversion via rsvg-convert.
//
// [cache] - File-backed cache keyed by a hash of the DOT source and format.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [family]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/family
// [family/backend]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/family/backend
// [family.Audit]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/family#Audit
// [layout]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/buildinfo
package pkg
