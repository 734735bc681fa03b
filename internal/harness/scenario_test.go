package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenariosDir, "transitive_left_of.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "transitive_left_of", s.Name)
	assert.Equal(t, [][]string{{"left of", "right of"}}, s.Pairs)
	assert.Equal(t, []string{"left of"}, s.Transitive)
	assert.Equal(t, FactSpec{Type: "left of", Subject: "fork", Object: "plate"}, s.Facts[0])
	require.Len(t, s.Queries, 2)
	assert.Equal(t, Expect{Contains: []string{"left of"}, Excludes: []string{"right of"}}, s.Queries[0].Expect)
	require.Len(t, s.Assertions, 3)
	assert.Equal(t, AssertStrategiesAgree, s.Assertions[2].Type)
}

func TestLoadScenario_ResolvesVocabularies(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenariosDir, "tableware_vocabulary.yaml"))
	require.NoError(t, err)

	require.Len(t, s.Vocabularies, 1)
	assert.Equal(t, filepath.Join(scenariosDir, "..", "vocab"), s.Vocabularies[0])
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: assertion instead of assertions
assertion:
  - type: strategies_agree
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestValidateScenario(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nassertions: [{type: strategies_agree}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nassertions: [{type: strategies_agree}]\n",
			wantErr: "description is required",
		},
		{
			name:    "nothing to check",
			yaml:    "name: n\ndescription: d\n",
			wantErr: "at least one query or assertion",
		},
		{
			name:    "short pair",
			yaml:    "name: n\ndescription: d\npairs: [[left of]]\nassertions: [{type: strategies_agree}]\n",
			wantErr: "pairs[0]",
		},
		{
			name:    "bad strategy",
			yaml:    "name: n\ndescription: d\nqueries: [{subject: a, object: b, strategy: fastest, expect: {}}]\n",
			wantErr: "unknown strategy",
		},
		{
			name:    "query without object",
			yaml:    "name: n\ndescription: d\nqueries: [{subject: a, expect: {}}]\n",
			wantErr: "subject and object are required",
		},
		{
			name:    "empty and contains",
			yaml:    "name: n\ndescription: d\nqueries: [{subject: a, object: b, expect: {empty: true, contains: [x]}}]\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "present without fact",
			yaml:    "name: n\ndescription: d\nassertions: [{type: condition_present}]\n",
			wantErr: "fact is required",
		},
		{
			name:    "count without relation",
			yaml:    "name: n\ndescription: d\nassertions: [{type: condition_count, count: 1}]\n",
			wantErr: "relation is required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nassertions: [{type: trace_order}]\n",
			wantErr: "unknown assertion type",
		},
		{
			name:    "missing vocabulary dir",
			yaml:    "name: n\ndescription: d\nvocabularies: [does-not-exist]\nassertions: [{type: strategies_agree}]\n",
			wantErr: "vocabulary directory not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
