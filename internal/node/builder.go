package node

import "github.com/matsen/cocite/internal/identity"

// Builder deduplicates nodes in first-seen order.
//
// IDs are not assigned while adding: Authors and Institutions enumerate the
// deduplicated sequence, so an ID depends only on the order keys were first seen.
type Builder struct {
	authorSeen   map[identity.Key]bool
	authors      []Author
	instSeen     map[identity.Key]bool
	institutions []Institution
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		authorSeen: make(map[identity.Key]bool),
		instSeen:   make(map[identity.Key]bool),
	}
}

// AddAuthor records an author unless its key was already seen.
// Reports whether the author was new.
func (b *Builder) AddAuthor(a Author) bool {
	k := a.Key()
	if b.authorSeen[k] {
		return false
	}
	b.authorSeen[k] = true
	b.authors = append(b.authors, a)
	return true
}

// AddInstitution records an institution unless its key was already seen.
// Reports whether the institution was new.
func (b *Builder) AddInstitution(i Institution) bool {
	k := i.Key()
	if b.instSeen[k] {
		return false
	}
	b.instSeen[k] = true
	b.institutions = append(b.institutions, i)
	return true
}

// Authors returns the deduplicated authors with IDs 1..N in first-seen order.
func (b *Builder) Authors() []Author {
	out := make([]Author, len(b.authors))
	for i, a := range b.authors {
		a.ID = i + 1
		out[i] = a
	}
	return out
}

// Institutions returns the deduplicated institutions with IDs 1..N in first-seen order.
func (b *Builder) Institutions() []Institution {
	out := make([]Institution, len(b.institutions))
	for i, inst := range b.institutions {
		inst.ID = i + 1
		out[i] = inst
	}
	return out
}
