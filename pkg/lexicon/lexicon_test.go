package lexicon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	lex := Default()

	require.NoError(t, lex.Validate())
	assert.NotEmpty(t, lex.Domain)
	assert.NotEmpty(t, lex.Medical)
	assert.NotEmpty(t, lex.Training)
	assert.NotEmpty(t, lex.Emergency)
	assert.Empty(t, lex.Overlap())
	assert.GreaterOrEqual(t, len(lex.References["medical"]), 4)
	assert.GreaterOrEqual(t, len(lex.References["training"]), 4)
	assert.Empty(t, lex.References["general"])
}

func TestDefault_ScoredTablesHaveNoRedundantTerms(t *testing.T) {
	lex := Default()

	for _, table := range []string{TableMedical, TableTraining} {
		pairs, err := lex.Redundant(table)
		require.NoError(t, err)
		assert.Empty(t, pairs, table)
	}
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()

	require.NoError(t, a.AddTerm(TableDomain, "zz-test-term"))
	assert.NotContains(t, b.Domain, "zz-test-term")
}

func TestParse_NormalizesTerms(t *testing.T) {
	lex := Default()
	lex.Domain = []string{"  DOG ", "Perro"}
	data := mustJSON(t, lex)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "perro"}, parsed.Domain)
}

func TestParse_RejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(l *Lexicon)
		wantErr string
	}{
		{
			name:    "overlapping intent vocabularies",
			mutate:  func(l *Lexicon) { l.Training = append(l.Training, l.Medical[0]) },
			wantErr: "medical and training share terms",
		},
		{
			name:    "empty emergency table",
			mutate:  func(l *Lexicon) { l.Emergency = nil },
			wantErr: "emergency table is empty",
		},
		{
			name:    "blank term",
			mutate:  func(l *Lexicon) { l.Domain = append(l.Domain, "   ") },
			wantErr: "is blank",
		},
		{
			name:    "duplicate term",
			mutate:  func(l *Lexicon) { l.Medical = append(l.Medical, l.Medical[0]) },
			wantErr: "is duplicated",
		},
		{
			name:    "general references",
			mutate:  func(l *Lexicon) { l.References["general"] = []string{"https://example.com"} },
			wantErr: "general intent must not carry references",
		},
		{
			name:    "reference is not a url",
			mutate:  func(l *Lexicon) { l.References["medical"] = []string{"merck manual"} },
			wantErr: "is not a URL",
		},
		{
			name:    "missing message",
			mutate:  func(l *Lexicon) { l.Messages.OutOfDomain = "" },
			wantErr: "messages.outOfDomain is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := Default()
			tt.mutate(lex)

			_, err := Parse(mustJSON(t, lex))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path falls back to embedded default", func(t *testing.T) {
		lex, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default().Version, lex.Version)
	})

	t.Run("round trips through Save", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lexicon.json")
		lex := Default()
		lex.Version = "2.0.0"
		require.NoError(t, lex.AddTerm(TableTraining, "Agility"))
		require.NoError(t, lex.Save(path))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", loaded.Version)
		assert.Contains(t, loaded.Training, "agility")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "decode lexicon"))
	})
}

func TestAddTerm(t *testing.T) {
	lex := Default()

	require.NoError(t, lex.AddTerm(TableEmergency, " Electrocuted "))
	assert.Contains(t, lex.Emergency, "electrocuted")

	assert.Error(t, lex.AddTerm(TableEmergency, "electrocuted"))
	assert.Error(t, lex.AddTerm(TableEmergency, "  "))
	assert.Error(t, lex.AddTerm("colors", "red"))
}

func mustJSON(t *testing.T, lex *Lexicon) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lexicon.json")
	require.NoError(t, lex.Save(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
