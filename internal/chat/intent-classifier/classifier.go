package intentclassifier

import (
	"pawsense/internal/chat/textmatch"
	"pawsense/internal/models"
	"pawsense/pkg/lexicon"
)

// Scores holds the keyword hit counts for one question.
type Scores struct {
	Medical  int `json:"medical"`
	Training int `json:"training"`
}

type Classifier struct {
	medical  []string
	training []string
}

func New(lex *lexicon.Lexicon) *Classifier {
	return &Classifier{
		medical:  lex.Medical,
		training: lex.Training,
	}
}

func (c *Classifier) Score(question, context string) Scores {
	text := textmatch.Fold(question, context)
	return Scores{
		Medical:  textmatch.Count(text, c.medical),
		Training: textmatch.Count(text, c.training),
	}
}

func (c *Classifier) DetectIntent(question, context string) models.Intent {
	return Decide(c.Score(question, context))
}

// Decide applies the rules in order. Medical must strictly win, so a tie
// with at least one hit on each side resolves to training.
func Decide(s Scores) models.Intent {
	switch {
	case s.Medical > s.Training && s.Medical > 0:
		return models.IntentMedical
	case s.Training > 0:
		return models.IntentTraining
	default:
		return models.IntentGeneral
	}
}
