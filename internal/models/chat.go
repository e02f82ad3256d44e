package models

import "strings"

// Intent is the coarse category of a dog question.
type Intent string

const (
	IntentMedical  Intent = "medical"
	IntentTraining Intent = "training"
	IntentGeneral  Intent = "general"
)

// Valid reports whether i is one of the three known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentMedical, IntentTraining, IntentGeneral:
		return true
	}
	return false
}

// Sourced reports whether answers for this intent carry verification links.
func (i Intent) Sourced() bool {
	return i == IntentMedical || i == IntentTraining
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one prior turn as sent by the client.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat/ask.
type ChatRequest struct {
	Question string        `json:"question"`
	Context  string        `json:"context"`
	History  []ChatMessage `json:"history,omitempty"`
}

// Normalized returns a copy with surrounding whitespace removed from the
// question and context.
func (r ChatRequest) Normalized() ChatRequest {
	r.Question = strings.TrimSpace(r.Question)
	r.Context = strings.TrimSpace(r.Context)
	return r
}

// TurnRole is the role vocabulary of the generation backend, which calls
// the assistant side "model".
type TurnRole string

const (
	TurnUser  TurnRole = "user"
	TurnModel TurnRole = "model"
)

// ConversationTurn is one entry of the sequence sent to the generator.
type ConversationTurn struct {
	Role TurnRole `json:"role"`
	Text string   `json:"text"`
}
