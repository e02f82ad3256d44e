package emergencydetector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pawsense/pkg/lexicon"
)

func TestDetector_IsEmergency(t *testing.T) {
	d := New(lexicon.Default())

	tests := []struct {
		name     string
		question string
		context  string
		want     bool
	}{
		{"seizure", "my dog is having a seizure", "", true},
		{"spanish poisoning", "Creo que mi perro está envenenado", "", true},
		{"chocolate", "My puppy ATE CHOCOLATE an hour ago", "", true},
		{"hit by car", "our dog was hit by a car", "", true},
		{"heat stroke spanish", "le dio un golpe de calor en la playa", "", true},
		{"context carries the crisis", "what do I do?", "no respira bien", true},
		{"severe bleeding", "my dog has severe bleeding from the paw", "", true},
		{"severe bleeding spanish", "tiene un sangrado grave en la oreja", "", true},
		{"loss of consciousness", "loss of consciousness in my dog after a fall", "", true},
		{"loss of consciousness spanish", "mi perro perdió el conocimiento", "", true},
		{"paralysis", "my dog shows paralysis in the back legs", "", true},
		{"paralyzed", "my dog is paralyzed", "", true},
		{"paralysis spanish", "mi perro tiene parálisis", "", true},
		{"trauma", "my dog suffered trauma falling off the balcony", "", true},
		{"trauma spanish", "mi perra sufrió un traumatismo", "", true},
		{"routine vaccine question", "when should my puppy get vaccines?", "", false},
		{"training question", "how do I stop barking at night", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.IsEmergency(tt.question, tt.context))
		})
	}
}

func TestDetector_Match(t *testing.T) {
	d := New(lexicon.Default())

	assert.Equal(t, "seizure", d.Match("my dog is having a seizure", ""))
	assert.Equal(t, "", d.Match("what's a good leash?", ""))
}
