package resolve

import (
	"strings"

	"github.com/matsen/cocite/internal/identity"
	"github.com/matsen/cocite/internal/node"
	"github.com/matsen/cocite/internal/openalex"
)

// Representatives are the entities a work contributes to the network.
// Either may be nil when the work has no usable author or affiliation.
type Representatives struct {
	Author      *node.Author
	Institution *node.Institution
}

// FirstAuthorIndex returns the index of the authorship marked "first", or 0
// when none is. It returns -1 for a work without authorships.
func FirstAuthorIndex(ships []openalex.Authorship) int {
	if len(ships) == 0 {
		return -1
	}
	for i, s := range ships {
		if s.AuthorPosition == openalex.PositionFirst {
			return i
		}
	}
	return 0
}

// ScanOrder returns authorship indexes in institution scan order: the entry
// marked "first" followed by every other entry in original order. Without a
// "first" entry the original order is kept.
func ScanOrder(ships []openalex.Authorship) []int {
	order := make([]int, 0, len(ships))
	first := -1
	for i, s := range ships {
		if s.AuthorPosition == openalex.PositionFirst {
			first = i
			break
		}
	}
	if first >= 0 {
		order = append(order, first)
	}
	for i := range ships {
		if i != first {
			order = append(order, i)
		}
	}
	return order
}

// SelectAuthor builds the representative author of a work, or nil when the
// chosen authorship has no display name.
func SelectAuthor(ships []openalex.Authorship) *node.Author {
	i := FirstAuthorIndex(ships)
	if i < 0 {
		return nil
	}
	a := ships[i].Author
	if a.DisplayName == "" {
		return nil
	}
	return &node.Author{
		Name:             a.DisplayName,
		ORCID:            identity.ExtractORCID(a.ORCID),
		OpenAlexAuthorID: a.ID,
		NormName:         identity.NormalizeName(a.DisplayName),
	}
}

// SelectInstitution walks the authorships in scan order and returns the
// first listed affiliation of the first entry whose first affiliation has a
// non-blank display name.
func SelectInstitution(ships []openalex.Authorship) *node.Institution {
	for _, i := range ScanOrder(ships) {
		insts := ships[i].Institutions
		if len(insts) == 0 {
			continue
		}
		cand := insts[0]
		if strings.TrimSpace(cand.DisplayName) == "" {
			continue
		}
		return &node.Institution{
			Name:                  cand.DisplayName,
			OpenAlexInstitutionID: cand.ID,
			Country:               cand.CountryCode,
			Type:                  cand.Type,
			NormName:              identity.NormalizeName(cand.DisplayName),
		}
	}
	return nil
}

// Select computes both representatives of a work.
func Select(w *openalex.Work) Representatives {
	if w == nil {
		return Representatives{}
	}
	return Representatives{
		Author:      SelectAuthor(w.Authorships),
		Institution: SelectInstitution(w.Authorships),
	}
}
