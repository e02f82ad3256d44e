// Package lexicon holds the keyword vocabularies, reference catalog and
// user-facing messages that drive the answering pipeline. Tables are plain
// JSON so they can be localized or tuned without a rebuild.
package lexicon

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

//go:embed default_lexicon.json
var defaultData []byte

// Table names accepted by Table and AddTerm.
const (
	TableDomain    = "domain"
	TableMedical   = "medical"
	TableTraining  = "training"
	TableEmergency = "emergency"
)

type Lexicon struct {
	Version    string              `json:"version"`
	Language   string              `json:"language"`
	Domain     []string            `json:"domain"`
	Medical    []string            `json:"medical"`
	Training   []string            `json:"training"`
	Emergency  []string            `json:"emergency"`
	References map[string][]string `json:"references"`
	Messages   Messages            `json:"messages"`
}

type Messages struct {
	OutOfDomain     string `json:"outOfDomain"`
	Emergency       string `json:"emergency"`
	RateLimited     string `json:"rateLimited"`
	SystemError     string `json:"systemError"`
	RetrySeparator  string `json:"retrySeparator"`
	Acknowledgement string `json:"acknowledgement"`
	SourcesHeader   string `json:"sourcesHeader"`
}

// Default returns a fresh copy of the embedded lexicon.
func Default() *Lexicon {
	lex, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon is invalid: %v", err))
	}
	return lex
}

// Load reads a lexicon file. An empty path yields the embedded default.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lex, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

// Parse decodes, normalizes and validates a lexicon document.
func Parse(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := json.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}
	lex.normalize()
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return &lex, nil
}

// Save writes the lexicon as indented JSON.
func (l *Lexicon) Save(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (l *Lexicon) normalize() {
	l.Domain = normalizeTerms(l.Domain)
	l.Medical = normalizeTerms(l.Medical)
	l.Training = normalizeTerms(l.Training)
	l.Emergency = normalizeTerms(l.Emergency)
}

// normalizeTerms lower-cases and trims terms. Blank entries are kept so
// Validate can report them.
func normalizeTerms(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return out
}

// Validate reports every structural problem in the lexicon at once.
func (l *Lexicon) Validate() error {
	var errs []error

	for _, name := range []string{TableDomain, TableMedical, TableTraining, TableEmergency} {
		terms, _ := l.Table(name)
		if len(terms) == 0 {
			errs = append(errs, fmt.Errorf("%s table is empty", name))
			continue
		}
		seen := make(map[string]bool, len(terms))
		for i, t := range terms {
			if t == "" {
				errs = append(errs, fmt.Errorf("%s[%d] is blank", name, i))
				continue
			}
			if seen[t] {
				errs = append(errs, fmt.Errorf("%s term %q is duplicated", name, t))
			}
			seen[t] = true
		}
	}

	if overlap := l.Overlap(); len(overlap) > 0 {
		errs = append(errs, fmt.Errorf("medical and training share terms: %s", strings.Join(overlap, ", ")))
	}

	if len(l.References["general"]) > 0 {
		errs = append(errs, errors.New("general intent must not carry references"))
	}
	for intent, urls := range l.References {
		for i, u := range urls {
			if !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
				errs = append(errs, fmt.Errorf("references.%s[%d] is not a URL: %q", intent, i, u))
			}
		}
	}

	m := l.Messages
	required := map[string]string{
		"outOfDomain":     m.OutOfDomain,
		"emergency":       m.Emergency,
		"rateLimited":     m.RateLimited,
		"systemError":     m.SystemError,
		"acknowledgement": m.Acknowledgement,
		"sourcesHeader":   m.SourcesHeader,
	}
	keys := make([]string, 0, len(required))
	for k := range required {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.TrimSpace(required[k]) == "" {
			errs = append(errs, fmt.Errorf("messages.%s is required", k))
		}
	}

	return errors.Join(errs...)
}

// Overlap returns the terms present in both the medical and training tables.
func (l *Lexicon) Overlap() []string {
	training := make(map[string]bool, len(l.Training))
	for _, t := range l.Training {
		training[t] = true
	}
	var out []string
	for _, t := range l.Medical {
		if training[t] {
			out = append(out, t)
		}
	}
	return out
}

// Redundant lists pairs in a table where the first term contains the second.
// Such pairs double count a single mention when scoring intents.
func (l *Lexicon) Redundant(table string) ([][2]string, error) {
	terms, err := l.Table(table)
	if err != nil {
		return nil, err
	}
	var out [][2]string
	for _, a := range terms {
		for _, b := range terms {
			if a != b && b != "" && strings.Contains(a, b) {
				out = append(out, [2]string{a, b})
			}
		}
	}
	return out, nil
}

func (l *Lexicon) Table(name string) ([]string, error) {
	switch name {
	case TableDomain:
		return l.Domain, nil
	case TableMedical:
		return l.Medical, nil
	case TableTraining:
		return l.Training, nil
	case TableEmergency:
		return l.Emergency, nil
	}
	return nil, fmt.Errorf("unknown table %q", name)
}

// AddTerm appends a normalized term to a table, rejecting duplicates.
func (l *Lexicon) AddTerm(table, term string) error {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return errors.New("term is blank")
	}
	terms, err := l.Table(table)
	if err != nil {
		return err
	}
	for _, t := range terms {
		if t == term {
			return fmt.Errorf("%s already contains %q", table, term)
		}
	}
	terms = append(terms, term)
	switch table {
	case TableDomain:
		l.Domain = terms
	case TableMedical:
		l.Medical = terms
	case TableTraining:
		l.Training = terms
	case TableEmergency:
		l.Emergency = terms
	}
	return nil
}
