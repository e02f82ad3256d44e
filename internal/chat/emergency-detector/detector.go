package emergencydetector

import (
	"pawsense/internal/chat/textmatch"
	"pawsense/pkg/lexicon"
)

// Detector flags acute-crisis questions. It runs independently of the
// intent classifier so an emergency is caught whatever intent wins.
type Detector struct {
	terms []string
}

func New(lex *lexicon.Lexicon) *Detector {
	return &Detector{terms: lex.Emergency}
}

func (d *Detector) IsEmergency(question, context string) bool {
	return d.Match(question, context) != ""
}

// Match returns the first emergency term found, or "".
func (d *Detector) Match(question, context string) string {
	return textmatch.First(textmatch.Fold(question, context), d.terms)
}
