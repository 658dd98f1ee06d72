// Package node defines author and institution nodes of the co-citation
// network and the registry that maps identity keys to node IDs.
package node

import (
	"github.com/matsen/cocite/internal/identity"
)

// Author is a row of the author node table.
type Author struct {
	ID               int    `json:"id"`
	Name             string `json:"author"`
	ORCID            string `json:"orcid,omitempty"`
	OpenAlexAuthorID string `json:"openalex_author_id,omitempty"`
	NormName         string `json:"norm_name"`
}

// Key returns the identity key this row is registered under.
func (a Author) Key() identity.Key {
	return identity.AuthorKey(a.ORCID, a.OpenAlexAuthorID, a.NormName)
}

// Institution is a row of the institution node table.
type Institution struct {
	ID                    int    `json:"id"`
	Name                  string `json:"institution"`
	OpenAlexInstitutionID string `json:"openalex_institution_id,omitempty"`
	Country               string `json:"country,omitempty"`
	Type                  string `json:"type,omitempty"`
	NormName              string `json:"norm_name"`
}

// Key returns the identity key this row is registered under.
func (i Institution) Key() identity.Key {
	return identity.InstitutionKey(i.OpenAlexInstitutionID, i.NormName)
}
