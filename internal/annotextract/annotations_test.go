package annotextract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/a3tai/pdfextract/internal/pdfmodel"
)

func TestResolveDestinationNamed(t *testing.T) {
	doc := &pdfmodel.Document{}
	got, ok := resolveDestination(doc, &pdfmodel.Name{Value: "Chapter1"}, 0, map[pdfmodel.ObjectID]bool{})
	assert.True(t, ok)
	assert.Equal(t, "Chapter1", got)
}

func TestResolveDestinationString(t *testing.T) {
	doc := &pdfmodel.Document{}
	got, ok := resolveDestination(doc, &pdfmodel.String{Value: "Section2"}, 0, map[pdfmodel.ObjectID]bool{})
	assert.True(t, ok)
	assert.Equal(t, "Section2", got)
}

func TestResolveDestinationDepthLimit(t *testing.T) {
	doc := &pdfmodel.Document{}
	_, ok := resolveDestination(doc, &pdfmodel.Name{Value: "x"}, maxDestDepth+1, map[pdfmodel.ObjectID]bool{})
	assert.False(t, ok)
}

func TestResolveDestinationCycleGuard(t *testing.T) {
	doc := &pdfmodel.Document{}
	id := pdfmodel.ObjectID{Number: 7, Generation: 0}
	visited := map[pdfmodel.ObjectID]bool{id: true}
	_, ok := resolveDestination(doc, &pdfmodel.IndirectRef{ObjectID: id}, 0, visited)
	assert.False(t, ok)
}

func TestBuildAnnotationDefaultsSubtypeToUnknown(t *testing.T) {
	doc := &pdfmodel.Document{}
	annot := pdfmodel.NewDict()
	got := buildAnnotation(doc, 3, annot)
	assert.Equal(t, "Unknown", got.Subtype)
	assert.Equal(t, 3, got.Page)
	assert.Nil(t, got.Rect)
}

func TestResolveLinkURIWinsOverDest(t *testing.T) {
	doc := &pdfmodel.Document{}
	action := pdfmodel.NewDict()
	action.Set("S", &pdfmodel.Name{Value: "URI"})
	action.Set("URI", &pdfmodel.String{Value: "https://example.com"})

	annot := pdfmodel.NewDict()
	annot.Set("A", action)
	annot.Set("Dest", &pdfmodel.Name{Value: "ShouldNotWin"})

	uri, dest := resolveLink(doc, annot)
	assert.Equal(t, "https://example.com", uri)
	assert.Equal(t, "", dest)
}

func TestResolveLinkGoToAction(t *testing.T) {
	doc := &pdfmodel.Document{}
	action := pdfmodel.NewDict()
	action.Set("S", &pdfmodel.Name{Value: "GoTo"})
	action.Set("D", &pdfmodel.Name{Value: "TargetDest"})

	annot := pdfmodel.NewDict()
	annot.Set("A", action)

	uri, dest := resolveLink(doc, annot)
	assert.Equal(t, "", uri)
	assert.Equal(t, "TargetDest", dest)
}
