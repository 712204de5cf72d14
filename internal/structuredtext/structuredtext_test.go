package structuredtext

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/a3tai/pdfextract/internal/model"
)

func TestNormalizeHeaderFooterLine(t *testing.T) {
	tests := []struct{ line, want string }{
		{"Page 1", "Page <NUM>"},
		{"Page 42", "Page <NUM>"},
		{"  Page 7  ", "Page <NUM>"},
		{"1/38", "<NUM>/<NUM>"},
		{"Confidential", "Confidential"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHeaderFooterLine(tt.line))
	}
}

func TestDetectBelowMinPagesReturnsWholeTextAsBody(t *testing.T) {
	pages := []model.PageText{
		{Page: 1, Text: "Title\nSome content"},
		{Page: 2, Text: "Title\nMore content"},
	}
	got := Detect(pages)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "", got[0].Header)
		assert.Equal(t, "", got[0].Footer)
		assert.Equal(t, "Title\nSome content", got[0].Body)
	}
}

func TestDetectRepeatedHeaderAndFooter(t *testing.T) {
	distinctWords := []string{"red", "green", "blue", "yellow", "purple"}
	pages := make([]model.PageText, 5)
	for i := range pages {
		pages[i] = model.PageText{
			Page: i + 1,
			Text: "Company Confidential\nAbout " + distinctWords[i] + "\nAlso " + distinctWords[i] + "\nPage " + strconv.Itoa(i+1) + " of 5",
		}
	}
	got := Detect(pages)
	if assert.Len(t, got, 5) {
		for i, p := range got {
			assert.Equal(t, "Company Confidential", p.Header)
			assert.Contains(t, p.Footer, "of 5")
			assert.Equal(t, "About "+distinctWords[i]+"\nAlso "+distinctWords[i], p.Body)
		}
	}
}

func TestDetectNoRepetitionEverythingIsBody(t *testing.T) {
	pages := []model.PageText{
		{Page: 1, Text: "Alpha\nBeta"},
		{Page: 2, Text: "Gamma\nDelta"},
		{Page: 3, Text: "Epsilon\nZeta"},
	}
	got := Detect(pages)
	for i, p := range got {
		assert.Equal(t, "", p.Header)
		assert.Equal(t, "", p.Footer)
		assert.Equal(t, pages[i].Text, p.Body)
	}
}

func TestDetectOcrCarriesSourceThrough(t *testing.T) {
	pages := []model.OcrPageText{
		{Page: 1, Text: "Header\nBody one\nFooter", Source: model.SourceNative},
		{Page: 2, Text: "Header\nBody two\nFooter", Source: model.SourceOcr},
		{Page: 3, Text: "Header\nBody three\nFooter", Source: model.SourceNative},
	}
	got := DetectOcr(pages)
	if assert.Len(t, got, 3) {
		assert.Equal(t, model.SourceNative, got[0].Source)
		assert.Equal(t, model.SourceOcr, got[1].Source)
	}
}
