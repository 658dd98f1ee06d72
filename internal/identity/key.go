package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Kind discriminates the source an identity key was built from.
type Kind int

const (
	// KindNone is the zero Kind; a Key with KindNone is absent.
	KindNone Kind = iota
	// KindORCID keys come from a persistent researcher identifier.
	KindORCID
	// KindPlatform keys come from an OpenAlex entity ID (A..., I...).
	KindPlatform
	// KindName keys come from a normalized display name.
	KindName
)

// Key prefixes used in the string form of a Key.
const (
	prefixORCID    = "orcid:"
	prefixPlatform = "id:"
	prefixName     = "name:"
)

// ErrInvalidKey is returned by ParseKey for strings without a known prefix.
var ErrInvalidKey = errors.New("invalid identity key")

// Key is the canonical identity of an author or institution.
type Key struct {
	Kind  Kind
	Value string
}

// String renders the key as "orcid:<v>", "id:<v>" or "name:<v>".
// The zero Key renders as "".
func (k Key) String() string {
	switch k.Kind {
	case KindORCID:
		return prefixORCID + k.Value
	case KindPlatform:
		return prefixPlatform + k.Value
	case KindName:
		return prefixName + k.Value
	default:
		return ""
	}
}

// IsZero reports whether the key is absent.
func (k Key) IsZero() bool {
	return k.Kind == KindNone
}

// ParseKey parses the string form produced by Key.String.
func ParseKey(s string) (Key, error) {
	switch {
	case strings.HasPrefix(s, prefixORCID):
		return Key{Kind: KindORCID, Value: s[len(prefixORCID):]}, nil
	case strings.HasPrefix(s, prefixPlatform):
		return Key{Kind: KindPlatform, Value: s[len(prefixPlatform):]}, nil
	case strings.HasPrefix(s, prefixName):
		return Key{Kind: KindName, Value: s[len(prefixName):]}, nil
	default:
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
}

// AuthorKey builds an author key by priority: ORCID, then OpenAlex author ID,
// then normalized name. orcid may be a URL; it is reduced with ExtractORCID.
// platformID may be a full OpenAlex URL; it is reduced to its last segment.
func AuthorKey(orcid, platformID, normName string) Key {
	if o := ExtractORCID(orcid); o != "" {
		return Key{Kind: KindORCID, Value: o}
	}
	if id := WorkID(platformID); id != "" {
		return Key{Kind: KindPlatform, Value: id}
	}
	return Key{Kind: KindName, Value: normName}
}

// InstitutionKey builds an institution key: OpenAlex institution ID, else normalized name.
func InstitutionKey(platformID, normName string) Key {
	if id := WorkID(platformID); id != "" {
		return Key{Kind: KindPlatform, Value: id}
	}
	return Key{Kind: KindName, Value: normName}
}
