package metaextract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/a3tai/pdfextract/internal/model"
	"github.com/a3tai/pdfextract/internal/pdfmodel"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1.7", "1.7"},
		{"PDF-1.4", "1.4"},
		{"2.0", "2.0"},
		{"1", "1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeVersion(tt.in))
	}
}

func TestDetectLinearized(t *testing.T) {
	assert.True(t, detectLinearized([]byte("%PDF-1.4\n1 0 obj\n<< /Linearized 1 /L 12345 >>\nendobj")))
	assert.False(t, detectLinearized([]byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj")))
}

func TestBuildPageBoxesDedupAndOrdering(t *testing.T) {
	doc := &pdfmodel.Document{
		Pages: []*pdfmodel.PageRef{
			{MediaBox: [4]float64{0, 0, 612, 792}, HasMedia: true},
			{MediaBox: [4]float64{0, 0, 612, 792}, HasMedia: true},
			{MediaBox: [4]float64{0, 0, 612, 792}, HasMedia: true},
			{CropBox: [4]float64{0, 0, 300, 300}, HasCrop: true},
		},
	}
	boxes := buildPageBoxes(doc)
	if assert.Len(t, boxes, 2) {
		assert.Equal(t, 3, boxes[0].PageCount)
		assert.Equal(t, model.BoxMediaBox, boxes[0].BoxType)
		assert.Nil(t, boxes[0].Pages)

		assert.Equal(t, 1, boxes[1].PageCount)
		assert.Equal(t, model.BoxCropBox, boxes[1].BoxType)
		assert.Equal(t, []int{4}, boxes[1].Pages)
	}
}

func TestPageBoxKeyUnknownWhenNeitherBoxPresent(t *testing.T) {
	_, ok := pageBoxKey(&pdfmodel.PageRef{})
	assert.False(t, ok)
}
