package node

import (
	"errors"
	"fmt"

	"github.com/matsen/cocite/internal/identity"
)

// Validation errors for node tables.
var (
	ErrInvalidID   = errors.New("node ID must be a positive integer")
	ErrDuplicateID = errors.New("duplicate node ID")
)

// Registry maps identity keys to node IDs for authors and institutions.
// The two key spaces are kept apart; lookups never fail, unknown keys give (0, false).
type Registry struct {
	authorIDs    map[identity.Key]int
	instIDs      map[identity.Key]int
	authors      map[int]Author
	institutions map[int]Institution
}

// NewRegistry indexes the given node tables.
// When two rows share a key the later row wins.
func NewRegistry(authors []Author, institutions []Institution) (*Registry, error) {
	r := &Registry{
		authorIDs:    make(map[identity.Key]int, len(authors)),
		instIDs:      make(map[identity.Key]int, len(institutions)),
		authors:      make(map[int]Author, len(authors)),
		institutions: make(map[int]Institution, len(institutions)),
	}

	for _, a := range authors {
		if a.ID <= 0 {
			return nil, fmt.Errorf("author %q: %w", a.Name, ErrInvalidID)
		}
		if _, dup := r.authors[a.ID]; dup {
			return nil, fmt.Errorf("author %d: %w", a.ID, ErrDuplicateID)
		}
		r.authors[a.ID] = a
		r.authorIDs[a.Key()] = a.ID
	}

	for _, inst := range institutions {
		if inst.ID <= 0 {
			return nil, fmt.Errorf("institution %q: %w", inst.Name, ErrInvalidID)
		}
		if _, dup := r.institutions[inst.ID]; dup {
			return nil, fmt.Errorf("institution %d: %w", inst.ID, ErrDuplicateID)
		}
		r.institutions[inst.ID] = inst
		r.instIDs[inst.Key()] = inst.ID
	}

	return r, nil
}

// AuthorID returns the node ID registered for an author key.
func (r *Registry) AuthorID(k identity.Key) (int, bool) {
	if k.IsZero() {
		return 0, false
	}
	id, ok := r.authorIDs[k]
	return id, ok
}

// InstitutionID returns the node ID registered for an institution key.
func (r *Registry) InstitutionID(k identity.Key) (int, bool) {
	if k.IsZero() {
		return 0, false
	}
	id, ok := r.instIDs[k]
	return id, ok
}

// Author returns the author row with the given ID.
func (r *Registry) Author(id int) (Author, bool) {
	a, ok := r.authors[id]
	return a, ok
}

// Institution returns the institution row with the given ID.
func (r *Registry) Institution(id int) (Institution, bool) {
	inst, ok := r.institutions[id]
	return inst, ok
}

// NumAuthors returns the number of author rows.
func (r *Registry) NumAuthors() int { return len(r.authors) }

// NumInstitutions returns the number of institution rows.
func (r *Registry) NumInstitutions() int { return len(r.institutions) }
