package ir

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Fact is a typed, directed binary relation between two named entities,
// e.g. "left of" from fork to plate.
//
// Fact is comparable: two facts with identical fields are the same fact,
// and a Fact can be used directly as a map key. Facts are never mutated
// after construction.
type Fact struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Object  string `json:"object"`
}

// PairKey identifies the ordered (subject, object) pair of a fact.
// (a, b) and (b, a) are distinct keys.
type PairKey struct {
	Subject string
	Object  string
}

// NewFact validates and normalizes the three names and returns the fact.
//
// Each name must be non-blank valid UTF-8. Surrounding whitespace is
// trimmed and the result is NFC-normalized so that a name typed with a
// combining accent and the same name typed precomposed are one entity.
func NewFact(relationType, subject, object string) (Fact, error) {
	t, err := normalizeName("type", relationType)
	if err != nil {
		return Fact{}, err
	}
	s, err := normalizeName("subject", subject)
	if err != nil {
		return Fact{}, err
	}
	o, err := normalizeName("object", object)
	if err != nil {
		return Fact{}, err
	}
	return Fact{Type: t, Subject: s, Object: o}, nil
}

// MustFact is like NewFact but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFact(relationType, subject, object string) Fact {
	f, err := NewFact(relationType, subject, object)
	if err != nil {
		panic(err)
	}
	return f
}

// NormalizeName applies the same validation and normalization NewFact uses
// to a single relation type or entity name.
func NormalizeName(field, name string) (string, error) {
	return normalizeName(field, name)
}

func normalizeName(field, name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", &InvalidArgumentError{Field: field, Value: name, Reason: "not valid UTF-8"}
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", &InvalidArgumentError{Field: field, Value: name, Reason: "must not be empty"}
	}
	return norm.NFC.String(trimmed), nil
}

// Pair returns the by-pair index key of the fact.
func (f Fact) Pair() PairKey {
	return PairKey{Subject: f.Subject, Object: f.Object}
}

// Mentions reports whether entity is the subject or object of f.
func (f Fact) Mentions(entity string) bool {
	return f.Subject == entity || f.Object == entity
}

// IsZero reports whether f is the zero Fact.
func (f Fact) IsZero() bool {
	return f == Fact{}
}

// String renders the fact as type(subject, object).
func (f Fact) String() string {
	return fmt.Sprintf("%s(%s, %s)", f.Type, f.Subject, f.Object)
}
