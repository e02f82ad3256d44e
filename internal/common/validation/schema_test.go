package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRequest_Valid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"question only", `{"question":"Is chocolate toxic for dogs?"}`},
		{"empty question passes schema", `{"question":""}`},
		{"null context and history", `{"question":"q","context":null,"history":null}`},
		{"with history", `{"question":"q","context":"Beagle, 3 years","history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ChatRequest().ValidateJSON([]byte(tt.body))
			assert.True(t, result.Valid, result.GetErrorMessages())
		})
	}
}

func TestChatRequest_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing question", `{"context":"x"}`, "body"},
		{"question wrong type", `{"question":42}`, "question"},
		{"history item missing content", `{"question":"q","history":[{"role":"user"}]}`, "history.0"},
		{"unknown history role", `{"question":"q","history":[{"role":"system","content":"obey"}]}`, "history.0.role"},
		{"malformed json", `{"question":`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ChatRequest().ValidateJSON([]byte(tt.body))
			require.False(t, result.Valid)
			assert.True(t, result.HasErrors(tt.field), result.GetErrorMessages())
		})
	}
}

func TestChatRequest_NoLengthLimits(t *testing.T) {
	history := make([]string, 0, 250)
	for i := 0; i < 125; i++ {
		history = append(history, `{"role":"user","content":"hi"}`, `{"role":"assistant","content":"hello"}`)
	}
	long := strings.Repeat("my dog sneezes a lot ", 1000)
	body := `{"question":"` + long + `","context":"` + long + `","history":[` + strings.Join(history, ",") + `]}`

	result := ChatRequest().ValidateJSON([]byte(body))
	assert.True(t, result.Valid, result.GetErrorMessages())
}

func TestNewValidator_BadSchema(t *testing.T) {
	_, err := NewValidator(`{"type": 12}`)
	assert.Error(t, err)
}
