package family

import (
	"encoding/json"
	"slices"
)

// Position is a point on the layout canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Person is a node in the family graph.
//
// BirthDate, Description and Position are optional; nil means unset.
// Parents and Children are duplicate-free and ordered by insertion.
type Person struct {
	ID          int
	Name        string
	BirthDate   *string
	Description *string
	Parents     []int
	Children    []int
	Position    *Position
}

// record is the persisted shape of a Person.
type record struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	BirthDate   *string  `json:"birthDate,omitempty"`
	Description *string  `json:"description,omitempty"`
	Parents     []int    `json:"parents"`
	Children    []int    `json:"children"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
}

// MarshalJSON encodes the person in the flat persisted record format.
func (p Person) MarshalJSON() ([]byte, error) {
	r := record{
		ID:          p.ID,
		Name:        p.Name,
		BirthDate:   p.BirthDate,
		Description: p.Description,
		Parents:     nonNil(p.Parents),
		Children:    nonNil(p.Children),
	}
	if p.Position != nil {
		x, y := p.Position.X, p.Position.Y
		r.X, r.Y = &x, &y
	}
	return json.Marshal(r)
}

// UnmarshalJSON decodes a persisted record. Empty strings decode as unset,
// and a position is only set when both coordinates are present.
func (p *Person) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*p = Person{
		ID:          r.ID,
		Name:        r.Name,
		BirthDate:   optString(r.BirthDate),
		Description: optString(r.Description),
		Parents:     r.Parents,
		Children:    r.Children,
	}
	if r.X != nil && r.Y != nil {
		p.Position = &Position{X: *r.X, Y: *r.Y}
	}
	return nil
}

// Clone returns a deep copy of p.
func (p Person) Clone() Person {
	c := p
	c.BirthDate = cloneString(p.BirthDate)
	c.Description = cloneString(p.Description)
	c.Parents = slices.Clone(p.Parents)
	c.Children = slices.Clone(p.Children)
	if p.Position != nil {
		pos := *p.Position
		c.Position = &pos
	}
	return c
}

// HasParent reports whether id is one of p's parents.
func (p Person) HasParent(id int) bool { return slices.Contains(p.Parents, id) }

// HasChild reports whether id is one of p's children.
func (p Person) HasChild(id int) bool { return slices.Contains(p.Children, id) }

// IsRoot reports whether p has no recorded parents.
func (p Person) IsRoot() bool { return len(p.Parents) == 0 }

// Label returns the display label: the name, followed by the birth date on a
// second line when one is set.
func (p Person) Label() string {
	if p.BirthDate != nil {
		return p.Name + "\n" + *p.BirthDate
	}
	return p.Name
}

// Opt returns a pointer to s, or nil when s is empty. It is the usual way to
// fill the optional string fields of [Person], [NewPerson] and [Update].
func Opt(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns *s, or "" when s is nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optString(s *string) *string {
	if s == nil {
		return nil
	}
	return Opt(*s)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
