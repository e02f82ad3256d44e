package domaingate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pawsense/pkg/lexicon"
)

func TestGate_IsInDomain(t *testing.T) {
	gate := New(lexicon.Default())

	tests := []struct {
		name     string
		question string
		context  string
		want     bool
	}{
		{"equipment question", "what's a good leash?", "", true},
		{"geography question", "what's the capital of France?", "", false},
		{"spanish breed question", "¿Los Husky aguantan el calor?", "", true},
		{"upper case", "IS MY PUPPY TOO THIN", "", true},
		{"context alone qualifies", "is this normal?", "Tengo un Golden Retriever de 3 años", true},
		{"empty input", "", "", false},
		{"substring false positive is accepted", "how many years until retirement?", "", true},
		{"cooking question", "how long to boil rice", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.IsInDomain(tt.question, tt.context))
		})
	}
}

func TestGate_IsDeterministic(t *testing.T) {
	gate := New(lexicon.Default())

	for i := 0; i < 5; i++ {
		assert.True(t, gate.IsInDomain("what's a good leash?", ""))
		assert.Equal(t, "leash", gate.Match("what's a good leash?", ""))
	}
}

func TestGate_UsesSuppliedVocabulary(t *testing.T) {
	lex := lexicon.Default()
	lex.Domain = []string{"ferret"}
	gate := New(lex)

	assert.True(t, gate.IsInDomain("my ferret sneezes", ""))
	assert.False(t, gate.IsInDomain("my dog sneezes", ""))
}
