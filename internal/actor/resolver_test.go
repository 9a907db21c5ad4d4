package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		given  string
		family string
	}{
		{"two tokens", "Jane Doe", "Jane", "Doe"},
		{"single token", "Cher", "Cher", ""},
		{"comma separated", "Doe,Jane", "Doe", "Jane"},
		{"comma with space", "Doe, Jane", "Doe", "Jane"},
		{"extra middle names stay in family", "Jane van der Doe", "Jane", "van der Doe"},
		{"surrounding whitespace", "  Jane Doe  ", "Jane", "Doe"},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			given, family := SplitName(tt.input)
			assert.Equal(t, tt.given, given)
			assert.Equal(t, tt.family, family)
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jane Doe", Actor{GivenName: "Jane", FamilyName: "Doe"}.DisplayName())
	assert.Equal(t, "Cher", Actor{GivenName: "Cher"}.DisplayName())
}
