package classname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		candidate string
		want      bool
	}{
		{"button-primary", true},
		{"btn-red-1", true},
		{"sm", true},
		{"_private", true},
		{"a1", true},
		{"px", true},
		{"rem-2", true},

		{"", false},
		{"$bad", false},
		{"#fff", false},
		{"a$b", false},
		{"50%", false},
		{"1col", false},
		{"123", false},
		{"4px", false},
		{"16rem", false},
		{"-hidden", false},
		{"two words", false},
		{"tab\tname", false},
		{"line\nbreak", false},
		{"rgba(0", false},
		{"0)", false},
		{"calc)", false},
		{"color;", false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.candidate))
		})
	}
}
