package domaingate

import (
	"pawsense/internal/chat/textmatch"
	"pawsense/pkg/lexicon"
)

// Gate decides whether a question is about dogs at all. Out-of-domain
// questions never reach the generator.
type Gate struct {
	keywords []string
}

func New(lex *lexicon.Lexicon) *Gate {
	return &Gate{keywords: lex.Domain}
}

// IsInDomain reports whether question or context mentions any dog term.
// Matching is plain substring containment, so words that merely contain a
// term (e.g. "year" for "ear") also pass.
func (g *Gate) IsInDomain(question, context string) bool {
	return g.Match(question, context) != ""
}

// Match returns the first matching term, for logging.
func (g *Gate) Match(question, context string) string {
	return textmatch.First(textmatch.Fold(question, context), g.keywords)
}
