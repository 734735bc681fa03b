package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/prodsys/internal/ir"
)

// Vocabulary sections, in the order rules are registered.
const (
	fieldPairs      = "pairs"
	fieldMirrors    = "mirrors"
	fieldSymmetric  = "symmetric"
	fieldTransitive = "transitive"
	fieldFacts      = "facts"
)

// CompileVocabulary parses a CUE value into a Vocabulary.
//
// The value should be the vocabulary struct itself, e.g.:
//
//	v := cuecontext.New().CompileString(src)
//	voc, err := CompileVocabulary(v.LookupPath(cue.ParsePath("vocabulary.tableware")))
//
// Unknown fields are rejected. An empty vocabulary is valid.
func CompileVocabulary(v cue.Value) (*ir.Vocabulary, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	voc := &ir.Vocabulary{}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		voc.Name = sels[len(sels)-1].Unquoted()
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		switch label := iter.Selector().Unquoted(); label {
		case fieldPairs:
			voc.Pairs, err = parsePairs(iter.Value())
		case fieldMirrors:
			voc.Mirrors, err = parseMirrors(iter.Value())
		case fieldSymmetric:
			voc.Symmetric, err = parseNames(fieldSymmetric, iter.Value())
		case fieldTransitive:
			voc.Transitive, err = parseNames(fieldTransitive, iter.Value())
		case fieldFacts:
			voc.Facts, err = parseFacts(iter.Value())
		default:
			err = &CompileError{
				Field:   "field",
				Message: fmt.Sprintf("unknown vocabulary field %q", label),
				Pos:     iter.Value().Pos(),
			}
		}
		if err != nil {
			return nil, err
		}
	}

	return voc, nil
}

// parsePairs accepts a list of two-element string lists.
func parsePairs(v cue.Value) ([]ir.RelationPair, error) {
	var pairs []ir.RelationPair
	err := eachElem(fieldPairs, v, func(i int, elem cue.Value) error {
		names, err := stringList(fieldPairs, elem)
		if err != nil {
			return err
		}
		if len(names) != 2 {
			return &CompileError{
				Field:   fieldPairs,
				Message: fmt.Sprintf("pair %d must name exactly two relation types, got %d", i, len(names)),
				Pos:     elem.Pos(),
			}
		}
		first, err := name(fieldPairs, names[0], elem)
		if err != nil {
			return err
		}
		second, err := name(fieldPairs, names[1], elem)
		if err != nil {
			return err
		}
		pairs = append(pairs, ir.RelationPair{First: first, Second: second})
		return nil
	})
	return pairs, err
}

// parseMirrors accepts a list of {source, target} structs.
func parseMirrors(v cue.Value) ([]ir.RelationPair, error) {
	var mirrors []ir.RelationPair
	err := eachElem(fieldMirrors, v, func(_ int, elem cue.Value) error {
		source, err := requiredString(fieldMirrors, elem, "source")
		if err != nil {
			return err
		}
		target, err := requiredString(fieldMirrors, elem, "target")
		if err != nil {
			return err
		}
		mirrors = append(mirrors, ir.RelationPair{First: source, Second: target})
		return nil
	})
	return mirrors, err
}

func parseNames(field string, v cue.Value) ([]string, error) {
	var out []string
	err := eachElem(field, v, func(_ int, elem cue.Value) error {
		s, err := elem.String()
		if err != nil {
			return &CompileError{Field: field, Message: "expected a relation type string", Pos: elem.Pos()}
		}
		n, err := name(field, s, elem)
		if err != nil {
			return err
		}
		out = append(out, n)
		return nil
	})
	return out, err
}

// parseFacts accepts a list of {type, subject, object} structs.
func parseFacts(v cue.Value) ([]ir.Fact, error) {
	var facts []ir.Fact
	err := eachElem(fieldFacts, v, func(_ int, elem cue.Value) error {
		var raw [3]string
		for i, key := range []string{"type", "subject", "object"} {
			s, err := requiredString(fieldFacts, elem, key)
			if err != nil {
				return err
			}
			raw[i] = s
		}
		f, err := ir.NewFact(raw[0], raw[1], raw[2])
		if err != nil {
			return invalidName(fieldFacts, err, elem)
		}
		facts = append(facts, f)
		return nil
	})
	return facts, err
}

func eachElem(field string, v cue.Value, fn func(i int, elem cue.Value) error) error {
	list, err := v.List()
	if err != nil {
		return &CompileError{Field: field, Message: "expected a list", Pos: v.Pos()}
	}
	for i := 0; list.Next(); i++ {
		if err := fn(i, list.Value()); err != nil {
			return err
		}
	}
	return nil
}

func stringList(field string, v cue.Value) ([]string, error) {
	var out []string
	err := eachElem(field, v, func(_ int, elem cue.Value) error {
		s, err := elem.String()
		if err != nil {
			return &CompileError{Field: field, Message: "expected a relation type string", Pos: elem.Pos()}
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

func requiredString(field string, v cue.Value, key string) (string, error) {
	kv := v.LookupPath(cue.ParsePath(key))
	if !kv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", key),
			Pos:     v.Pos(),
		}
	}
	s, err := kv.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a string", key),
			Pos:     kv.Pos(),
		}
	}
	return name(field, s, kv)
}

func name(field, s string, at cue.Value) (string, error) {
	n, err := ir.NormalizeName(field, s)
	if err != nil {
		return "", invalidName(field, err, at)
	}
	return n, nil
}

func invalidName(field string, err error, at cue.Value) error {
	var ia *ir.InvalidArgumentError
	if errors.As(err, &ia) {
		return &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s %q %s", ia.Field, ia.Value, ia.Reason),
			Pos:     at.Pos(),
		}
	}
	return &CompileError{Field: field, Message: err.Error(), Pos: at.Pos()}
}
