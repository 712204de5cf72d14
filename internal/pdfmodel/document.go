package pdfmodel

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// maxPageTreeDepth guards against a cyclic /Pages tree produced by a
// corrupt or adversarial document.
const maxPageTreeDepth = 64

// PageRef is one leaf of the resolved page tree: a dictionary plus the
// geometry and resources it inherited from its ancestors.
type PageRef struct {
	Number    int
	ID        ObjectID
	Dict      *Dict
	MediaBox  [4]float64
	HasMedia  bool
	CropBox   [4]float64
	HasCrop   bool
	Resources *Dict
}

// Document is the entry point into a parsed PDF: it pairs pdfcpu's
// validated document-level facts (page count, header version, encryption
// state) with this package's own object-graph parser, which pdfcpu does
// not expose deeply enough for walking annotations and XObjects.
type Document struct {
	parser *Parser
	// ID is a per-handle correlation id, generated once at Open. The
	// extractors' own log lines do not include it.
	ID        uuid.UUID
	Version   string
	PageCount int
	Encrypted bool
	Pages     []*PageRef
}

// Open parses buf as a PDF document, validating page count via pdfcpu and
// then walking the page tree with the in-package object parser.
func Open(buf []byte) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(buf), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfmodel: read context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("pdfmodel: ensure page count: %w", err)
	}

	parser := NewParser(bytes.NewReader(buf))
	if err := parser.Parse(); err != nil {
		return nil, fmt.Errorf("pdfmodel: parse object graph: %w", err)
	}

	doc := &Document{
		parser:    parser,
		ID:        uuid.New(),
		Version:   ctx.HeaderVersion.String(),
		PageCount: ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
	}

	pagesRoot := parser.Catalog().Get("Pages")
	pages, err := doc.collectPages(pagesRoot, inherited{}, 0)
	if err != nil {
		return nil, fmt.Errorf("pdfmodel: walk page tree: %w", err)
	}
	doc.Pages = pages
	return doc, nil
}

// inherited carries the page-tree attributes a /Pages node may pass down
// to its children per ISO 32000-1 §7.7.3.4.
type inherited struct {
	mediaBox  [4]float64
	hasMedia  bool
	cropBox   [4]float64
	hasCrop   bool
	resources *Dict
}

func (d *Document) collectPages(node Object, parent inherited, depth int) ([]*PageRef, error) {
	if depth > maxPageTreeDepth {
		return nil, fmt.Errorf("page tree exceeds max depth %d (likely cyclic)", maxPageTreeDepth)
	}

	var selfID ObjectID
	if ref, ok := node.(*IndirectRef); ok {
		selfID = ref.ObjectID
	}

	resolved, err := d.parser.Resolve(node)
	if err != nil {
		return nil, err
	}
	dict, ok := resolved.(*Dict)
	if !ok {
		return nil, nil
	}

	attrs := parent
	if mb, ok := d.readRect(dict, "MediaBox"); ok {
		attrs.mediaBox, attrs.hasMedia = mb, true
	}
	if cb, ok := d.readRect(dict, "CropBox"); ok {
		attrs.cropBox, attrs.hasCrop = cb, true
	}
	if res := dict.Get("Resources"); res.Type() != TypeNull {
		if r, err := d.parser.Resolve(res); err == nil {
			if rd, ok := r.(*Dict); ok {
				attrs.resources = rd
			}
		}
	}

	switch dict.GetName("Type") {
	case "Pages":
		var pages []*PageRef
		kids := dict.GetArray("Kids")
		for _, kid := range kids.Elements {
			child, err := d.collectPages(kid, attrs, depth+1)
			if err != nil {
				return nil, err
			}
			pages = append(pages, child...)
		}
		return pages, nil
	default:
		// Treat anything else reached from Kids as a leaf /Page, even if
		// /Type is missing, which some producers omit.
		ref := &PageRef{
			ID:        selfID,
			Dict:      dict,
			Resources: attrs.resources,
		}
		if attrs.hasMedia {
			ref.MediaBox = attrs.mediaBox
			ref.HasMedia = true
		}
		if attrs.hasCrop {
			ref.CropBox = attrs.cropBox
			ref.HasCrop = true
		}
		return []*PageRef{ref}, nil
	}
}

func (d *Document) readRect(dict *Dict, key string) ([4]float64, bool) {
	arrObj := dict.Get(key)
	if arrObj.Type() != TypeArray {
		return [4]float64{}, false
	}
	arr := arrObj.(*Array)
	if arr.Len() != 4 {
		return [4]float64{}, false
	}
	var rect [4]float64
	for i := 0; i < 4; i++ {
		if n, ok := arr.Get(i).(*Number); ok {
			rect[i] = n.Float()
		}
	}
	return rect, true
}

// Resolve dereferences an indirect reference against the document's object
// graph; non-references are returned unchanged.
func (d *Document) Resolve(obj Object) (Object, error) {
	return d.parser.Resolve(obj)
}

// Info returns the document information dictionary (/Info), or an empty
// dictionary if none is present.
func (d *Document) Info() *Dict {
	trailer := d.parser.Trailer()
	if trailer == nil {
		return NewDict()
	}
	infoObj := trailer.Get("Info")
	resolved, err := d.parser.Resolve(infoObj)
	if err != nil {
		return NewDict()
	}
	if dict, ok := resolved.(*Dict); ok {
		return dict
	}
	return NewDict()
}

// Page returns the 1-based page, or nil if out of range.
func (d *Document) Page(number int) *PageRef {
	if number < 1 || number > len(d.Pages) {
		return nil
	}
	return d.Pages[number-1]
}

// PageNumber returns the 1-based page number whose object id is id, used to
// resolve explicit-destination arrays (whose first element is a page
// reference) back to a page number.
func (d *Document) PageNumber(id ObjectID) (int, bool) {
	if !id.IsValid() {
		return 0, false
	}
	for i, p := range d.Pages {
		if p.ID == id {
			return i + 1, true
		}
	}
	return 0, false
}
