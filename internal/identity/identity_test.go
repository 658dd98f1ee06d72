package identity

import (
	"errors"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"lowercases", "Jane DOE", "jane doe"},
		{"strips punctuation", "O'Brien, J.", "obrien j"},
		{"keeps hyphen", "Jean-Luc Picard", "jean-luc picard"},
		{"collapses whitespace", "  Ada \t  Lovelace  ", "ada lovelace"},
		{"keeps unicode letters", "Zoë Müller", "zoë müller"},
		{"keeps cjk", "邓 格", "邓 格"},
		{"only punctuation", "???", ""},
		{"keeps digits and underscore", "Lab_42", "lab_42"},
		{"drops combining marks", "Jose\u0301 Garci\u0301a", "jose garcia"},
		{"keeps subscript digits", "H\u2082O Lab", "h\u2082o lab"},
		{"keeps superscript digits", "Smith\u00b2", "smith\u00b2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractORCID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://orcid.org/0000-0002-1825-0097", "0000-0002-1825-0097"},
		{"0000-0001-5109-351X", "0000-0001-5109-351X"},
		{"http://orcid.org/0000-0001-5109-351x", ""},
		{"https://orcid.org/0000-0002-1825", ""},
		{"", ""},
		{"not an orcid at all", ""},
	}

	for _, tt := range tests {
		if got := ExtractORCID(tt.input); got != tt.want {
			t.Errorf("ExtractORCID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWorkID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://openalex.org/W2741809807", "W2741809807"},
		{"W2741809807", "W2741809807"},
		{" W1 ", "W1"},
		{"https://openalex.org/", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := WorkID(tt.input); got != tt.want {
			t.Errorf("WorkID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAuthorKey_Priority(t *testing.T) {
	tests := []struct {
		name       string
		orcid      string
		platformID string
		normName   string
		want       string
	}{
		{"orcid wins", "https://orcid.org/0000-0002-1825-0097", "https://openalex.org/A1", "jane doe", "orcid:0000-0002-1825-0097"},
		{"platform id next", "", "https://openalex.org/A1", "jane doe", "id:A1"},
		{"bare platform id", "", "A1", "jane doe", "id:A1"},
		{"name last", "", "", "jane doe", "name:jane doe"},
		{"malformed orcid falls through", "orcid.org/bogus", "", "jane doe", "name:jane doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AuthorKey(tt.orcid, tt.platformID, tt.normName).String()
			if got != tt.want {
				t.Errorf("AuthorKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthorKey_SpellingVariantsShareKey(t *testing.T) {
	orcid := "https://orcid.org/0000-0002-1825-0097"
	a := AuthorKey(orcid, "A1", NormalizeName("J. Smith"))
	b := AuthorKey(orcid, "A2", NormalizeName("John Smith"))
	if a != b {
		t.Errorf("keys differ for same ORCID: %v vs %v", a, b)
	}

	c := AuthorKey("", "https://openalex.org/A9", NormalizeName("Smith, J"))
	d := AuthorKey("", "A9", NormalizeName("Jonathan Smith"))
	if c != d {
		t.Errorf("keys differ for same platform ID: %v vs %v", c, d)
	}
}

func TestInstitutionKey(t *testing.T) {
	if got := InstitutionKey("https://openalex.org/I27837315", "mit").String(); got != "id:I27837315" {
		t.Errorf("InstitutionKey with ID = %q", got)
	}
	if got := InstitutionKey("", "mit").String(); got != "name:mit" {
		t.Errorf("InstitutionKey without ID = %q", got)
	}
}

func TestParseKey_RoundTrip(t *testing.T) {
	for _, k := range []Key{
		{Kind: KindORCID, Value: "0000-0002-1825-0097"},
		{Kind: KindPlatform, Value: "I1"},
		{Kind: KindName, Value: "zoë müller"},
		{Kind: KindName, Value: ""},
	} {
		got, err := ParseKey(k.String())
		if err != nil {
			t.Fatalf("ParseKey(%q) error: %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKey(%q) = %v, want %v", k.String(), got, k)
		}
	}

	if _, err := ParseKey("doi:10.1/x"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("ParseKey(unknown prefix) error = %v, want ErrInvalidKey", err)
	}
	if !(Key{}).IsZero() || (Key{}).String() != "" {
		t.Error("zero Key should be absent and render empty")
	}
}
