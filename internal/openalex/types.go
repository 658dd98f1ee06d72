// Package openalex provides a paced client for the OpenAlex works API.
package openalex

// Author positions reported by OpenAlex.
const (
	PositionFirst  = "first"
	PositionMiddle = "middle"
	PositionLast   = "last"
)

// Work is the subset of an OpenAlex work record needed to resolve its authors.
type Work struct {
	ID          string       `json:"id"`
	Title       string       `json:"title,omitempty"`
	Authorships []Authorship `json:"authorships"`
}

// Authorship links a work to one author and that author's affiliations.
type Authorship struct {
	AuthorPosition string        `json:"author_position"`
	Author         Author        `json:"author"`
	Institutions   []Institution `json:"institutions"`
}

// Author is an OpenAlex author as embedded in an authorship.
type Author struct {
	ID          string `json:"id"` // https://openalex.org/A...
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid"` // https://orcid.org/..., may be empty
}

// Institution is an OpenAlex institution as embedded in an authorship.
type Institution struct {
	ID          string `json:"id"` // https://openalex.org/I...
	DisplayName string `json:"display_name"`
	CountryCode string `json:"country_code"`
	Type        string `json:"type"`
}
