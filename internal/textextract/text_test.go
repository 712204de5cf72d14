package textextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFooterArtifacts(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		pageCountStr string
		want         string
	}{
		{
			name:         "basic footer artifact",
			text:         "Some content\n/\n38\nMore content",
			pageCountStr: "38",
			want:         "Some content\nMore content",
		},
		{
			name:         "footer artifact with whitespace",
			text:         "Some content\n  /  \n  38  \nMore content",
			pageCountStr: "38",
			want:         "Some content\nMore content",
		},
		{
			name:         "no match passthrough",
			text:         "Some content\nNo footer here\nMore content",
			pageCountStr: "38",
			want:         "Some content\nNo footer here\nMore content",
		},
		{
			name:         "multiple occurrences",
			text:         "Page one\n/\n38\nPage two\n/\n38\nPage three",
			pageCountStr: "38",
			want:         "Page one\nPage two\nPage three",
		},
		{
			name:         "too short to contain the pattern",
			text:         "/",
			pageCountStr: "38",
			want:         "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripFooterArtifacts(tt.text, tt.pageCountStr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconstructLines(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", reconstructLines(nil))
	})
}
