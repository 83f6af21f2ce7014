package family

import (
	"fmt"
	"slices"
)

// graph is the id-indexed person collection behind a Store.
// order preserves insertion order for deterministic snapshots.
type graph struct {
	people    map[int]*Person
	order     []int
	highWater int
}

func newGraph() *graph {
	return &graph{people: make(map[int]*Person)}
}

// buildGraph indexes persisted people, rejecting duplicate ids and repairing
// links that violate reciprocity or reference missing people. The repairs
// made are returned so the caller can report them.
func buildGraph(people []Person) (*graph, []Violation, error) {
	g := newGraph()
	for _, p := range people {
		if _, exists := g.people[p.ID]; exists {
			return nil, nil, fmt.Errorf("%w: %d", errDuplicateID, p.ID)
		}
		c := p.Clone()
		g.people[c.ID] = &c
		g.order = append(g.order, c.ID)
		g.highWater = max(g.highWater, c.ID)
	}
	repairs := Audit(people)
	if len(repairs) > 0 {
		g.repair()
	}
	return g, repairs, nil
}

// repair rewrites every link set so that both graph invariants hold: sets
// are deduplicated, self and dangling references dropped, and every
// remaining link mirrored on the other side.
func (g *graph) repair() {
	for _, id := range g.order {
		p := g.people[id]
		p.Parents = g.normalize(p.Parents, id)
		p.Children = g.normalize(p.Children, id)
	}
	for _, id := range g.order {
		p := g.people[id]
		for _, pid := range p.Parents {
			parent := g.people[pid]
			parent.Children = appendUnique(parent.Children, id)
		}
		for _, cid := range p.Children {
			child := g.people[cid]
			child.Parents = appendUnique(child.Parents, id)
		}
	}
}

func (g *graph) clone() *graph {
	c := &graph{
		people:    make(map[int]*Person, len(g.people)),
		order:     slices.Clone(g.order),
		highWater: g.highWater,
	}
	for id, p := range g.people {
		cp := p.Clone()
		c.people[id] = &cp
	}
	return c
}

func (g *graph) len() int { return len(g.order) }

func (g *graph) nextID() int {
	return g.highWater + 1
}

func (g *graph) snapshot() []Person {
	out := make([]Person, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.people[id].Clone())
	}
	return out
}

// normalize filters a requested link set down to ids that exist, excluding
// self and duplicates, preserving first-occurrence order. The result is
// never nil so that an explicit empty set stays distinguishable.
func (g *graph) normalize(ids []int, self int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id == self || slices.Contains(out, id) {
			continue
		}
		if _, ok := g.people[id]; !ok {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (g *graph) insert(p *Person) {
	g.people[p.ID] = p
	g.order = append(g.order, p.ID)
	g.highWater = max(g.highWater, p.ID)
}

// setParents replaces p's parent set, removing p from every dropped parent's
// children and adding it to every new parent's children.
func (g *graph) setParents(p *Person, parents []int) {
	for _, old := range p.Parents {
		if slices.Contains(parents, old) {
			continue
		}
		if parent, ok := g.people[old]; ok {
			parent.Children = remove(parent.Children, p.ID)
		}
	}
	p.Parents = parents
	for _, pid := range parents {
		parent := g.people[pid]
		parent.Children = appendUnique(parent.Children, p.ID)
	}
}

// setChildren is the mirror of setParents.
func (g *graph) setChildren(p *Person, children []int) {
	for _, old := range p.Children {
		if slices.Contains(children, old) {
			continue
		}
		if child, ok := g.people[old]; ok {
			child.Parents = remove(child.Parents, p.ID)
		}
	}
	p.Children = children
	for _, cid := range children {
		child := g.people[cid]
		child.Parents = appendUnique(child.Parents, p.ID)
	}
}

// drop removes id from every link set in the graph, then the record.
func (g *graph) drop(id int) {
	for _, p := range g.people {
		p.Parents = remove(p.Parents, id)
		p.Children = remove(p.Children, id)
	}
	delete(g.people, id)
	g.order = remove(g.order, id)
}

func appendUnique(ids []int, id int) []int {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func remove(ids []int, id int) []int {
	return slices.DeleteFunc(ids, func(v int) bool { return v == id })
}
