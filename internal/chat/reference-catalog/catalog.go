package referencecatalog

import (
	"strings"

	"pawsense/internal/models"
	"pawsense/pkg/lexicon"
)

// Catalog maps an intent to its ordered list of trusted source URLs.
type Catalog struct {
	header  string
	entries map[models.Intent][]string
}

func New(lex *lexicon.Lexicon) *Catalog {
	entries := make(map[models.Intent][]string, len(lex.References))
	for intent, urls := range lex.References {
		entries[models.Intent(intent)] = append([]string(nil), urls...)
	}
	return &Catalog{
		header:  lex.Messages.SourcesHeader,
		entries: entries,
	}
}

// URLs returns at most count URLs for intent in catalog order.
func (c *Catalog) URLs(intent models.Intent, count int) []string {
	urls := c.entries[intent]
	if count <= 0 || len(urls) == 0 {
		return nil
	}
	if count > len(urls) {
		count = len(urls)
	}
	return urls[:count:count]
}

// GetReferences renders the sources block, or "" when intent has no catalog.
func (c *Catalog) GetReferences(intent models.Intent, count int) string {
	urls := c.URLs(intent, count)
	if len(urls) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(c.header)
	for _, u := range urls {
		b.WriteString("\n- ")
		b.WriteString(u)
	}
	return b.String()
}
