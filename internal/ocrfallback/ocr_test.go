package ocrfallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountNonWhitespace(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"only whitespace", "   \n\t  ", 0},
		{"simple word", "hi", 2},
		{"mixed", " a b\nc ", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countNonWhitespace(tt.text))
		})
	}
}

func TestExtractQuotedPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"typical banner", `List of available languages in "/usr/share/tessdata/"`, "/usr/share/tessdata/", true},
		{"no quotes", "tesseract 5.3.0", "", false},
		{"single quote", `path is "broken`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractQuotedPath(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
