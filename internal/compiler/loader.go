package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/prodsys/internal/ir"
)

// LoadMode controls how errors are handled while loading a directory.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll compiles every vocabulary and returns all errors.
	LoadModeCollectAll
)

// Error codes, shared by every command that loads vocabularies.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeEmpty       = "E007" // No vocabulary declared

	ErrCodeInvalidPair       = "E101"
	ErrCodeInvalidMirror     = "E102"
	ErrCodeInvalidSymmetric  = "E103"
	ErrCodeInvalidTransitive = "E104"
	ErrCodeInvalidFact       = "E105"
	ErrCodeUnknownField      = "E106"
)

// LoadResult holds the vocabularies compiled from a directory.
type LoadResult struct {
	Vocabularies []ir.Vocabulary
	FileCount    int
}

// LoadError is a loading or compilation error with an error code.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadVocabularies loads the CUE package in dir and compiles every
// vocabulary under the top-level "vocabulary" field, in declaration order.
func LoadVocabularies(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("vocabulary directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing vocabulary directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{FileCount: len(files)}
	return result, compileAll(value, mode, result)
}

func compileAll(value cue.Value, mode LoadMode, result *LoadResult) []error {
	var errs []error

	vocabs := value.LookupPath(cue.ParsePath("vocabulary"))
	if !vocabs.Exists() {
		return []error{&LoadError{Code: ErrCodeEmpty, Message: "no vocabulary declared"}}
	}

	iter, err := vocabs.Fields()
	if err != nil {
		return []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating vocabularies: %v", err)}}
	}
	for iter.Next() {
		voc, err := CompileVocabulary(iter.Value())
		if err != nil {
			errs = append(errs, convertCompileError(err, "vocabulary."+iter.Selector().String()))
			if mode == LoadModeFailFast {
				return errs
			}
			continue
		}
		result.Vocabularies = append(result.Vocabularies, *voc)
	}

	if len(result.Vocabularies) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeEmpty, Message: "no vocabulary declared"})
	}
	return errs
}

// FindCUEFiles walks dir and returns every .cue file path.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func convertCompileError(err error, context string) *LoadError {
	var ce *CompileError
	if errors.As(err, &ce) {
		return &LoadError{
			Code:    MapFieldToErrorCode(ce.Field),
			Message: fmt.Sprintf("%s: %s", context, ce.Message),
			Pos:     ce.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// MapFieldToErrorCode maps a CompileError field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case fieldPairs:
		return ErrCodeInvalidPair
	case fieldMirrors:
		return ErrCodeInvalidMirror
	case fieldSymmetric:
		return ErrCodeInvalidSymmetric
	case fieldTransitive:
		return ErrCodeInvalidTransitive
	case fieldFacts:
		return ErrCodeInvalidFact
	case "field":
		return ErrCodeUnknownField
	default:
		return ErrCodeGeneric
	}
}
