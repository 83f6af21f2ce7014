package layout

import (
	"math"

	"github.com/matzehuels/kintree/pkg/family"
)

// DefaultGap is the horizontal and vertical spacing used when an option is zero.
const DefaultGap = 200

// Options configures [Compute].
type Options struct {
	// XGap is the horizontal distance between neighbours on a level.
	XGap float64
	// YGap is the vertical distance between generations.
	YGap float64
	// PlaceUnreached puts people not reachable from any root on an extra
	// row below the deepest generation instead of omitting them.
	PlaceUnreached bool
}

func (o Options) withDefaults() Options {
	if o.XGap == 0 {
		o.XGap = DefaultGap
	}
	if o.YGap == 0 {
		o.YGap = DefaultGap
	}
	return o
}

// Compute returns a position for every person reached from the roots of
// people. See the package documentation for the algorithm.
func Compute(people []family.Person, opts Options) map[int]family.Position {
	opts = opts.withDefaults()
	levels := Generations(people)

	if opts.PlaceUnreached {
		if rest := Unreached(people, levels); len(rest) > 0 {
			levels = append(levels, rest)
		}
	}

	positions := make(map[int]family.Position, len(people))
	for lvl, ids := range levels {
		center := float64(len(ids)-1) / 2
		for i, id := range ids {
			positions[id] = family.Position{
				X: (float64(i) - center) * opts.XGap,
				Y: float64(lvl) * opts.YGap,
			}
		}
	}
	return positions
}

// Generations returns the breadth-first levels of people, starting from the
// roots. Children ids that are not part of people are ignored.
func Generations(people []family.Person) [][]int {
	if len(people) == 0 {
		return nil
	}

	children := make(map[int][]int, len(people))
	var roots, all []int
	for _, p := range people {
		children[p.ID] = p.Children
		all = append(all, p.ID)
		if p.IsRoot() {
			roots = append(roots, p.ID)
		}
	}
	if len(roots) == 0 {
		roots = all
	}

	visited := make(map[int]bool, len(people))
	var level []int
	for _, id := range roots {
		if !visited[id] {
			visited[id] = true
			level = append(level, id)
		}
	}

	var levels [][]int
	for len(level) > 0 {
		levels = append(levels, level)
		var next []int
		for _, id := range level {
			for _, c := range children[id] {
				if _, known := children[c]; !known || visited[c] {
					continue
				}
				visited[c] = true
				next = append(next, c)
			}
		}
		level = next
	}
	return levels
}

// Unreached returns the ids of people that appear in no level, in snapshot
// order. Such people only exist when every path to them passes through a
// cycle or a link to someone outside the snapshot.
func Unreached(people []family.Person, levels [][]int) []int {
	seen := make(map[int]bool, len(people))
	for _, ids := range levels {
		for _, id := range ids {
			seen[id] = true
		}
	}
	var out []int
	for _, p := range people {
		if !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p.ID)
		}
	}
	return out
}

// Box is an axis-aligned bounding rectangle.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of b.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of b.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Bounds returns the smallest box containing every position.
// The zero Box is returned for an empty map.
func Bounds(positions map[int]family.Position) Box {
	if len(positions) == 0 {
		return Box{}
	}
	b := Box{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, p := range positions {
		b.MinX = min(b.MinX, p.X)
		b.MinY = min(b.MinY, p.Y)
		b.MaxX = max(b.MaxX, p.X)
		b.MaxY = max(b.MaxY, p.Y)
	}
	return b
}
