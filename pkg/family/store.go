package family

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/kintree/pkg/errors"
)

var errDuplicateID = errs.New(errs.ErrCodeDuplicateID, "duplicate person id")

// Backend persists a person collection.
type Backend interface {
	// Load returns the persisted collection in stored order.
	// Returns nil, nil when nothing has been persisted yet.
	Load(ctx context.Context) ([]Person, error)

	// Save replaces the persisted collection with people.
	Save(ctx context.Context, people []Person) error

	// Close releases any resources held by the backend.
	Close() error
}

// NewPerson holds the input for [Store.Add].
type NewPerson struct {
	Name        string
	BirthDate   *string
	Description *string
	Parents     []int
	Children    []int
}

// Update holds the fields to change in [Store.Update].
//
// A nil scalar pointer leaves the field untouched; a pointer to "" unsets it.
// A nil Parents or Children slice leaves that set untouched, while a non-nil
// slice (including an empty one) replaces the whole set.
type Update struct {
	Name          *string
	BirthDate     *string
	Description   *string
	Parents       []int
	Children      []int
	Position      *Position
	ClearPosition bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence and repair messages.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store is the single source of truth for the family graph.
// The zero value is not usable; use [NewStore].
type Store struct {
	backend Backend
	logger  *log.Logger
	g       *graph
}

// NewStore creates an empty store persisting through backend.
// Call [Store.Load] to read previously saved data.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  log.New(io.Discard),
		g:       newGraph(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory graph with the persisted one, or with an empty
// graph when nothing is persisted. Links that break reciprocity or point at
// missing people are repaired and logged. Unreadable data and duplicate ids
// return a STORAGE_READ error and leave the current graph untouched.
func (s *Store) Load(ctx context.Context) error {
	people, err := s.backend.Load(ctx)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorageRead, err, "load people")
	}
	g, repairs, err := buildGraph(people)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorageRead, err, "load people")
	}
	for _, v := range repairs {
		s.logger.Warn("repaired link", "kind", v.Kind, "person", v.PersonID, "field", v.Field, "ref", v.Ref)
	}
	s.g = g
	s.logger.Debug("loaded people", "count", g.len())
	return nil
}

// Save persists the current graph.
func (s *Store) Save(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.g.snapshot()); err != nil {
		return errs.Wrap(errs.ErrCodeStorageWrite, err, "save people")
	}
	return nil
}

// GenerateID returns the id the next [Store.Add] will assign.
// It has no side effects.
func (s *Store) GenerateID() int { return s.g.nextID() }

// Len returns the number of people in the store.
func (s *Store) Len() int { return s.g.len() }

// Get returns a copy of the person with the given id.
func (s *Store) Get(id int) (Person, bool) {
	p, ok := s.g.people[id]
	if !ok {
		return Person{}, false
	}
	return p.Clone(), true
}

// People returns a copy of every person in insertion order.
func (s *Store) People() []Person { return s.g.snapshot() }

// Add creates a person and returns its id. Relationship ids that are unknown
// or repeated are skipped; every kept link is mirrored on the other person.
func (s *Store) Add(ctx context.Context, in NewPerson) (int, error) {
	if err := errs.ValidateName(in.Name); err != nil {
		return 0, err
	}

	next := s.g.clone()
	id := next.nextID()
	p := &Person{
		ID:          id,
		Name:        in.Name,
		BirthDate:   optString(in.BirthDate),
		Description: optString(in.Description),
	}
	parents := next.normalize(in.Parents, id)
	children := next.normalize(in.Children, id)
	next.insert(p)
	next.setParents(p, parents)
	next.setChildren(p, children)

	if err := s.commit(ctx, "add", next, "id", id); err != nil {
		return 0, err
	}
	return id, nil
}

// Update changes the person with the given id and reports whether it exists.
// See [Update] for which fields are replaced.
func (s *Store) Update(ctx context.Context, id int, u Update) (bool, error) {
	if _, ok := s.g.people[id]; !ok {
		return false, nil
	}
	if u.Name != nil {
		if err := errs.ValidateName(*u.Name); err != nil {
			return true, err
		}
	}

	next := s.g.clone()
	p := next.people[id]
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.BirthDate != nil {
		p.BirthDate = Opt(*u.BirthDate)
	}
	if u.Description != nil {
		p.Description = Opt(*u.Description)
	}
	if u.Parents != nil {
		next.setParents(p, next.normalize(u.Parents, id))
	}
	if u.Children != nil {
		next.setChildren(p, next.normalize(u.Children, id))
	}
	switch {
	case u.ClearPosition:
		p.Position = nil
	case u.Position != nil:
		pos := *u.Position
		p.Position = &pos
	}

	if err := s.commit(ctx, "update", next, "id", id); err != nil {
		return true, err
	}
	return true, nil
}

// Delete removes the person with the given id from the store and from every
// other person's parents and children, and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id int) (bool, error) {
	if _, ok := s.g.people[id]; !ok {
		return false, nil
	}
	next := s.g.clone()
	next.drop(id)
	if err := s.commit(ctx, "delete", next, "id", id); err != nil {
		return true, err
	}
	return true, nil
}

// SetPositions stores the given positions with a single save. Ids not in the
// store are skipped. Nothing is saved when no id matches.
func (s *Store) SetPositions(ctx context.Context, positions map[int]Position) error {
	next := s.g.clone()
	applied := 0
	for id, pos := range positions {
		p, ok := next.people[id]
		if !ok {
			continue
		}
		p.Position = &pos
		applied++
	}
	if applied == 0 {
		return nil
	}
	return s.commit(ctx, "positions", next, "applied", applied)
}

// Check audits the in-memory graph. It returns nil for a healthy store.
func (s *Store) Check() []Violation { return Audit(s.g.snapshot()) }

// Close closes the backend.
func (s *Store) Close() error { return s.backend.Close() }

// commit saves next and, only if that succeeds, makes it the current graph.
func (s *Store) commit(ctx context.Context, op string, next *graph, keyvals ...any) error {
	if err := s.backend.Save(ctx, next.snapshot()); err != nil {
		s.logger.Error("save failed", append([]any{"op", op, "err", err}, keyvals...)...)
		return errs.Wrap(errs.ErrCodeStorageWrite, err, "save after %s", op)
	}
	s.g = next
	s.logger.Debug("saved", append([]any{"op", op, "people", next.len()}, keyvals...)...)
	return nil
}

// IsDuplicateID reports whether err was caused by duplicate persisted ids.
func IsDuplicateID(err error) bool { return errs.Is(err, errs.ErrCodeDuplicateID) }
