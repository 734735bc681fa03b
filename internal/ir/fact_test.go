package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFact(t *testing.T) {
	f, err := NewFact("left of", "fork", "plate")
	require.NoError(t, err)

	assert.Equal(t, Fact{Type: "left of", Subject: "fork", Object: "plate"}, f)
	assert.Equal(t, "left of(fork, plate)", f.String())
	assert.Equal(t, PairKey{Subject: "fork", Object: "plate"}, f.Pair())
}

func TestNewFactStructuralEquality(t *testing.T) {
	a := MustFact("left of", "fork", "plate")
	b := MustFact("left of", "fork", "plate")

	assert.Equal(t, a, b)
	assert.True(t, a == b)

	m := map[Fact]int{a: 1}
	assert.Equal(t, 1, m[b], "facts are usable as map keys")
}

func TestNewFactNormalizes(t *testing.T) {
	f, err := NewFact("  left of ", "cafe\u0301", "plate\n")
	require.NoError(t, err)

	assert.Equal(t, "left of", f.Type)
	assert.Equal(t, "caf\u00e9", f.Subject)
	assert.Equal(t, "plate", f.Object)
	assert.Equal(t, MustFact("left of", "caf\u00e9", "plate"), f)
}

func TestNewFactRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		subject string
		object  string
		field   string
	}{
		{"empty type", "", "fork", "plate", "type"},
		{"blank subject", "left of", "   ", "plate", "subject"},
		{"empty object", "left of", "fork", "", "object"},
		{"invalid utf8", "left of", "fork", "\xff", "object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFact(tt.typ, tt.subject, tt.object)
			require.Error(t, err)

			assert.True(t, IsInvalidArgument(err))
			assert.True(t, errors.Is(err, ErrInvalidArgument))

			var ie *InvalidArgumentError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestMustFactPanics(t *testing.T) {
	assert.Panics(t, func() { MustFact("", "a", "b") })
}

func TestFactMentions(t *testing.T) {
	f := MustFact("left of", "fork", "plate")

	assert.True(t, f.Mentions("fork"))
	assert.True(t, f.Mentions("plate"))
	assert.False(t, f.Mentions("knife"))
	assert.False(t, f.IsZero())
	assert.True(t, Fact{}.IsZero())
}

func TestEventCanonicalMapOmitsEmpty(t *testing.T) {
	f := MustFact("left of", "fork", "knife")
	ev := Event{Seq: 3, Session: "s", Kind: EventFactDerived, Strategy: StrategyFull, Round: 1, Rule: "transitive(left of)", Fact: &f}

	data, err := MarshalCanonical(ev.CanonicalMap())
	require.NoError(t, err)
	assert.Equal(t,
		`{"fact":{"object":"knife","subject":"fork","type":"left of"},"kind":"fact_derived","round":1,"rule":"transitive(left of)","seq":3,"session":"s","strategy":"full"}`,
		string(data))
}
