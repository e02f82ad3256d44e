package promptbuilder

import (
	"fmt"
	"strings"

	"pawsense/internal/models"
	"pawsense/pkg/lexicon"
)

const basePersona = "Eres un experto en perros amable y servicial. " +
	"Responde siempre en español con tono cercano, natural y práctico. " +
	"NO uses markdown: sin **, ###, listas con viñetas (a menos que sea imprescindible). " +
	"Mantén respuestas cortas y directas. " +
	"Si te falta información importante, haz una sola pregunta aclaratoria. " +
	"Solo responde preguntas sobre perros: razas, cuidados, salud, alimentación, " +
	"entrenamiento, comportamiento, temperamento, etc. " +
	"Si es otro tema fuera de perros, explica que solo puedes ayudar con temas caninos."

const contextTemplate = "\n\nINFORMACIÓN DEL PERRO DEL USUARIO: %s Usa este contexto para personalizar tus respuestas."

type Builder struct {
	config          *Config
	sourcesHeader   string
	acknowledgement string
}

func New(config *Config, lex *lexicon.Lexicon) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Builder{
		config:          config,
		sourcesHeader:   lex.Messages.SourcesHeader,
		acknowledgement: lex.Messages.Acknowledgement,
	}
}

// BuildSystemPrompt returns the instruction text for intent. Blank context
// is ignored; anything else is appended verbatim.
func (b *Builder) BuildSystemPrompt(intent models.Intent, context string) string {
	var sb strings.Builder
	sb.WriteString(basePersona)

	switch intent {
	case models.IntentMedical:
		sb.WriteString(b.whitelistClause(
			b.config.MedicalAuthorities,
			"No inventes datos ni indiques dosis exactas de medicamentos; la dosis siempre la decide un veterinario.",
			"No puedo confirmarlo con fuentes fiables; consulta con tu veterinario.",
		))
	case models.IntentTraining:
		sb.WriteString(b.whitelistClause(
			b.config.TrainingAuthorities,
			"No inventes datos ni recomiendes técnicas punitivas o aversivas sin respaldo científico; prioriza el refuerzo positivo.",
			"No puedo confirmarlo con fuentes fiables; consulta con un educador canino certificado.",
		))
	}

	if strings.TrimSpace(context) != "" {
		sb.WriteString(fmt.Sprintf(contextTemplate, context))
	}
	return sb.String()
}

func (b *Builder) whitelistClause(authorities []string, restriction, fallback string) string {
	var sb strings.Builder
	sb.WriteString("\n\nMODO LISTA BLANCA: solo puedes afirmar lo que se pueda verificar en estas organizaciones: ")
	sb.WriteString(strings.Join(authorities, "; "))
	sb.WriteString(". ")
	sb.WriteString(restriction)
	sb.WriteString(" Si no estás seguro, responde exactamente: \"")
	sb.WriteString(fallback)
	sb.WriteString("\" Termina SIEMPRE tu respuesta con una sección que empiece literalmente por \"")
	sb.WriteString(b.sourcesHeader)
	sb.WriteString("\" seguida de las organizaciones consultadas.")
	return sb.String()
}

// BuildConversation assembles the turn sequence for one request: the
// instruction pair, prior history, then the question as the last user turn.
func (b *Builder) BuildConversation(intent models.Intent, req models.ChatRequest) []models.ConversationTurn {
	turns := make([]models.ConversationTurn, 0, len(req.History)+3)
	turns = append(turns,
		models.ConversationTurn{Role: models.TurnUser, Text: b.BuildSystemPrompt(intent, req.Context)},
		models.ConversationTurn{Role: models.TurnModel, Text: b.acknowledgement},
	)

	for _, msg := range req.History {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		turns = append(turns, models.ConversationTurn{Role: MapRole(msg.Role), Text: msg.Content})
	}

	return append(turns, models.ConversationTurn{Role: models.TurnUser, Text: req.Question})
}

// MapRole converts a caller role to the generator vocabulary. Anything that
// is not the assistant is treated as the user.
func MapRole(role models.Role) models.TurnRole {
	if role == models.RoleAssistant {
		return models.TurnModel
	}
	return models.TurnUser
}
