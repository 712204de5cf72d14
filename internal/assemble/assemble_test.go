package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/a3tai/pdfextract/internal/model"
)

func TestUniquePagesDedupsAndSorts(t *testing.T) {
	images := []model.PageImage{
		{Page: 3}, {Page: 1}, {Page: 3}, {Page: 2}, {Page: 1},
	}
	got := uniquePages(images, func(i model.PageImage) int { return i.Page })
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestUniquePagesEmpty(t *testing.T) {
	var annotations []model.PageAnnotation
	got := uniquePages(annotations, func(a model.PageAnnotation) int { return a.Page })
	assert.Empty(t, got)
}
