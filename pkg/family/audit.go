package family

import (
	"fmt"
	"slices"
)

// ViolationKind classifies a broken graph invariant.
type ViolationKind string

const (
	// ViolationDangling marks a link to an id that is not in the collection.
	ViolationDangling ViolationKind = "dangling"
	// ViolationAsymmetric marks a link whose mirror entry is missing.
	ViolationAsymmetric ViolationKind = "asymmetric"
	// ViolationDuplicateLink marks an id listed twice in one link set.
	ViolationDuplicateLink ViolationKind = "duplicate_link"
	// ViolationSelfLink marks a person listed as their own parent or child.
	ViolationSelfLink ViolationKind = "self_link"
)

// Violation describes one broken link found by [Audit].
type Violation struct {
	Kind     ViolationKind
	PersonID int    // person whose link set holds the bad entry
	Field    string // "parents" or "children"
	Ref      int    // the offending id
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: person %d %s references %d", v.Kind, v.PersonID, v.Field, v.Ref)
}

// Audit checks a person collection against the graph invariants and returns
// every violation found, in collection order. It never modifies people.
// Duplicate person ids are not reported here; the store rejects them on load.
func Audit(people []Person) []Violation {
	byID := make(map[int]Person, len(people))
	for _, p := range people {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}

	var out []Violation
	check := func(p Person, field string, ids []int, mirror func(Person) []int) {
		for i, ref := range ids {
			switch {
			case ref == p.ID:
				out = append(out, Violation{ViolationSelfLink, p.ID, field, ref})
			case slices.Contains(ids[:i], ref):
				out = append(out, Violation{ViolationDuplicateLink, p.ID, field, ref})
			default:
				other, ok := byID[ref]
				if !ok {
					out = append(out, Violation{ViolationDangling, p.ID, field, ref})
				} else if !slices.Contains(mirror(other), p.ID) {
					out = append(out, Violation{ViolationAsymmetric, p.ID, field, ref})
				}
			}
		}
	}

	for _, p := range people {
		check(p, "parents", p.Parents, func(o Person) []int { return o.Children })
		check(p, "children", p.Children, func(o Person) []int { return o.Parents })
	}
	return out
}
