// Package annotextract walks each page's /Annots array and normalizes every
// annotation into a PageAnnotation, resolving link targets (URI actions,
// GoTo actions, and direct /Dest entries) down to a page number or a named
// destination string. The teacher never implemented this walk — its
// wrapper.CustomPDFDocument.ExtractAnnotations and
// LedongthucDocument.ExtractAnnotations are both stubs returning an empty
// slice — so this package follows the teacher's established shape (a page
// loop, a panic-recovering inner call, soft per-item errors) while
// implementing the walk itself from scratch against internal/pdfmodel.
package annotextract

import (
	"strconv"

	"github.com/a3tai/pdfextract/internal/logging"
	"github.com/a3tai/pdfextract/internal/model"
	"github.com/a3tai/pdfextract/internal/pdferrors"
	"github.com/a3tai/pdfextract/internal/pdfmodel"
)

var log = logging.New("warn", false, nil).With().Str("extractor", "annotextract").Logger()

// maxDestDepth bounds /A → /D → destination-array dereference chains, which
// occasionally cycle in malformed documents.
const maxDestDepth = 8

// ExtractAnnotations returns one PageAnnotation per entry in every page's
// /Annots array, in page order. An annotation that cannot be resolved to a
// dictionary is skipped; nothing it touches fails the page or document.
func ExtractAnnotations(doc *pdfmodel.Document, collector *pdferrors.Collector) []model.PageAnnotation {
	var out []model.PageAnnotation

	for i, page := range doc.Pages {
		pageNum := i + 1
		annotsObj, err := doc.Resolve(page.Dict.Get("Annots"))
		if err != nil {
			continue
		}
		arr, ok := annotsObj.(*pdfmodel.Array)
		if !ok {
			continue
		}

		for _, elem := range arr.Elements {
			annot, ok := resolveAnnotDict(doc, elem)
			if !ok {
				addErr(collector, pageNum, "annotation resolution failed")
				continue
			}
			out = append(out, buildAnnotation(doc, pageNum, annot))
		}
	}
	return out
}

func addErr(c *pdferrors.Collector, page int, msg string) {
	log.Warn().Int("page", page).Msg(msg)
	if c == nil {
		return
	}
	c.Add(pdferrors.New(pdferrors.KindInvalidAnnotation, msg).WithPage(page))
}

// resolveAnnotDict accepts either an indirect reference or a direct
// dictionary, per §9's note that both forms appear mixed in /Annots arrays
// and must be treated identically.
func resolveAnnotDict(doc *pdfmodel.Document, elem pdfmodel.Object) (*pdfmodel.Dict, bool) {
	resolved, err := doc.Resolve(elem)
	if err != nil {
		return nil, false
	}
	dict, ok := resolved.(*pdfmodel.Dict)
	return dict, ok
}

func buildAnnotation(doc *pdfmodel.Document, pageNum int, annot *pdfmodel.Dict) model.PageAnnotation {
	subtype := annot.GetName("Subtype")
	if subtype == "" {
		subtype = "Unknown"
	}

	record := model.PageAnnotation{
		Page:    pageNum,
		Subtype: subtype,
		Rect:    readRect(doc, annot),
		Content: annot.GetString("Contents"),
	}

	uri, dest := resolveLink(doc, annot)
	record.URI = uri
	if uri == "" {
		record.Dest = dest
	}
	return record
}

// readRect resolves /Rect to four numbers; a missing or malformed rect
// yields an empty slice rather than a partially-populated one.
func readRect(doc *pdfmodel.Document, annot *pdfmodel.Dict) []float64 {
	rectObj, err := doc.Resolve(annot.Get("Rect"))
	if err != nil {
		return nil
	}
	arr, ok := rectObj.(*pdfmodel.Array)
	if !ok || arr.Len() != 4 {
		return nil
	}

	rect := make([]float64, 4)
	for i := 0; i < 4; i++ {
		elem, err := doc.Resolve(arr.Get(i))
		if err != nil {
			return nil
		}
		n, ok := elem.(*pdfmodel.Number)
		if !ok {
			return nil
		}
		rect[i] = n.Float()
	}
	return rect
}

// resolveLink reads an annotation's link target: a URI action wins over any
// GoTo action or direct /Dest, per §4.3.
func resolveLink(doc *pdfmodel.Document, annot *pdfmodel.Dict) (uri, dest string) {
	actionObj, err := doc.Resolve(annot.Get("A"))
	if err == nil {
		if action, ok := actionObj.(*pdfmodel.Dict); ok {
			switch action.GetName("S") {
			case "URI":
				if u := action.GetString("URI"); u != "" {
					return u, ""
				}
			case "GoTo":
				if d, ok := resolveDestination(doc, action.Get("D"), 0, map[pdfmodel.ObjectID]bool{}); ok {
					return "", d
				}
			}
		}
	}

	if d, ok := resolveDestination(doc, annot.Get("Dest"), 0, map[pdfmodel.ObjectID]bool{}); ok {
		return "", d
	}
	return "", ""
}

// resolveDestination follows a destination value — a name, a string, or an
// explicit destination array whose first element is a page reference — down
// to a page number (as a string) or a named-destination string. depth and
// visited guard against the cyclic pointer chains §9 calls out.
func resolveDestination(doc *pdfmodel.Document, obj pdfmodel.Object, depth int, visited map[pdfmodel.ObjectID]bool) (string, bool) {
	if depth > maxDestDepth {
		return "", false
	}
	if ref, ok := obj.(*pdfmodel.IndirectRef); ok {
		if visited[ref.ObjectID] {
			return "", false
		}
		visited[ref.ObjectID] = true
	}

	resolved, err := doc.Resolve(obj)
	if err != nil {
		return "", false
	}

	switch v := resolved.(type) {
	case *pdfmodel.Name:
		return v.Value, true
	case *pdfmodel.String:
		return v.Value, true
	case *pdfmodel.Array:
		if v.Len() == 0 {
			return "", false
		}
		first := v.Get(0)
		if ref, ok := first.(*pdfmodel.IndirectRef); ok {
			if num, ok := doc.PageNumber(ref.ObjectID); ok {
				return strconv.Itoa(num), true
			}
		}
		return v.String(), true
	default:
		return "", false
	}
}
