package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one harness test case.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is the fixed session id stamped on every event.
	// Defaults to testutil.DefaultSession.
	Session string `yaml:"session,omitempty"`

	// Vocabularies lists directories of CUE vocabulary files, relative to
	// the scenario's base path. Their rules and facts load first.
	Vocabularies []string `yaml:"vocabularies,omitempty"`

	// Pairs lists converse relation pairs, each exactly two types.
	Pairs [][]string `yaml:"pairs,omitempty"`

	// Mirrors lists one-way converse rules.
	Mirrors []MirrorSpec `yaml:"mirrors,omitempty"`

	// Symmetric lists relation types that hold in both directions.
	Symmetric []string `yaml:"symmetric,omitempty"`

	// Transitive lists relation types that get a standalone Transitive rule.
	Transitive []string `yaml:"transitive,omitempty"`

	// Facts are the seed facts, inserted after all rules.
	Facts []FactSpec `yaml:"facts,omitempty"`

	// Queries are point queries checked against their expectations.
	Queries []Query `yaml:"queries,omitempty"`

	// Assertions check the full fixpoint or compare strategies.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// FactSpec is a fact as written in YAML.
type FactSpec struct {
	Type    string `yaml:"type"`
	Subject string `yaml:"subject"`
	Object  string `yaml:"object"`
}

// MirrorSpec derives (target, b, a) from every (source, a, b).
type MirrorSpec struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Query is a point query between two entities.
type Query struct {
	Subject string `yaml:"subject"`
	Object  string `yaml:"object"`

	// Strategy is one of full, fast, exact or both. Default: both.
	Strategy string `yaml:"strategy,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect describes the facts a query must return.
type Expect struct {
	// Contains lists relation types that must appear in the result.
	Contains []string `yaml:"contains,omitempty"`

	// Excludes lists relation types that must not appear.
	Excludes []string `yaml:"excludes,omitempty"`

	// Empty requires the result to be empty.
	Empty bool `yaml:"empty,omitempty"`
}

// Assertion validates the full fixpoint or the strategies.
type Assertion struct {
	// Type is one of condition_present, condition_absent,
	// condition_count or strategies_agree.
	Type string `yaml:"type"`

	// Fact is the fact checked by condition_present and condition_absent.
	Fact *FactSpec `yaml:"fact,omitempty"`

	// Relation and Count are used by condition_count.
	Relation string `yaml:"relation,omitempty"`
	Count    int    `yaml:"count,omitempty"`
}

// Query strategies.
const (
	StrategyFull  = "full"
	StrategyFast  = "fast"
	StrategyExact = "exact"
	StrategyBoth  = "both"
)

// Assertion types.
const (
	AssertConditionPresent = "condition_present"
	AssertConditionAbsent  = "condition_absent"
	AssertConditionCount   = "condition_count"
	AssertStrategiesAgree  = "strategies_agree"
)

// LoadScenario reads and parses a scenario YAML file. Vocabulary paths are
// resolved relative to the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving vocabulary paths relative to basePath.
//
// Unknown fields are rejected to catch typos like "assertion:".
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, dir := range scenario.Vocabularies {
		if !filepath.IsAbs(dir) && basePath != "" {
			scenario.Vocabularies[i] = filepath.Join(basePath, dir)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks structure only. Names are validated when the
// scenario runs, by the same code that validates engine input.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Queries) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one query or assertion is required")
	}

	for _, dir := range s.Vocabularies {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("vocabulary directory not found: %s", dir)
		}
	}

	for i, p := range s.Pairs {
		if len(p) != 2 {
			return fmt.Errorf("pairs[%d]: must name exactly two relation types, got %d", i, len(p))
		}
	}

	for i, q := range s.Queries {
		if q.Subject == "" || q.Object == "" {
			return fmt.Errorf("queries[%d]: subject and object are required", i)
		}
		switch q.Strategy {
		case "", StrategyFull, StrategyFast, StrategyExact, StrategyBoth:
		default:
			return fmt.Errorf("queries[%d]: unknown strategy %q", i, q.Strategy)
		}
		if q.Expect.Empty && len(q.Expect.Contains) > 0 {
			return fmt.Errorf("queries[%d].expect: empty and contains are mutually exclusive", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertConditionPresent, AssertConditionAbsent:
		if a.Fact == nil {
			return fmt.Errorf("assertions[%d]: fact is required for %s", index, a.Type)
		}
	case AssertConditionCount:
		if a.Relation == "" {
			return fmt.Errorf("assertions[%d]: relation is required for condition_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be >= 0", index)
		}
	case AssertStrategiesAgree:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
