// Package assemble runs the text, image, and annotation extractors
// concurrently over one parsed document and joins their results into a
// PdfDocument, following the teacher's conc-based fan-out idiom used
// elsewhere in this module (see internal/textextract's per-page pool).
package assemble

import (
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/a3tai/pdfextract/internal/annotextract"
	"github.com/a3tai/pdfextract/internal/imageextract"
	"github.com/a3tai/pdfextract/internal/metaextract"
	"github.com/a3tai/pdfextract/internal/model"
	"github.com/a3tai/pdfextract/internal/ocrfallback"
	"github.com/a3tai/pdfextract/internal/pdferrors"
	"github.com/a3tai/pdfextract/internal/pdfmodel"
	"github.com/a3tai/pdfextract/internal/structuredtext"
	"github.com/a3tai/pdfextract/internal/textextract"
)

// branchResults is the fan-out's shared landing spot; each of the three
// parallel branches writes exactly one field.
type branchResults struct {
	text        []model.PageText
	images      []model.PageImage
	annotations []model.PageAnnotation
}

// Assemble runs the text, image, and annotation extractors as three
// parallel branches over doc, then appends metadata and the structured-text
// pass, producing one complete PdfDocument. buf must be the same bytes doc
// was parsed from (the text extractor needs the raw buffer; see
// internal/textextract's doc comment).
func Assemble(doc *pdfmodel.Document, buf []byte, collector *pdferrors.Collector) (*model.PdfDocument, error) {
	p := pool.New().WithErrors()
	var results branchResults

	p.Go(func() error {
		text, err := textextract.ExtractText(buf)
		if err != nil {
			return fmt.Errorf("text: %w", err)
		}
		results.text = text
		return nil
	})
	p.Go(func() error {
		results.images = imageextract.ExtractImages(doc, collector)
		return nil
	})
	p.Go(func() error {
		results.annotations = annotextract.ExtractAnnotations(doc, collector)
		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	meta := metaextract.ExtractMetadata(doc, buf)
	structured := structuredtext.Detect(results.text)

	return &model.PdfDocument{
		PdfMeta: meta,

		TotalImages:      len(results.images),
		TotalAnnotations: len(results.annotations),

		Text:           results.text,
		StructuredText: structured,
		Images:         results.images,
		Annotations:    results.annotations,

		ImagePages:      uniquePages(results.images, func(i model.PageImage) int { return i.Page }),
		AnnotationPages: uniquePages(results.annotations, func(a model.PageAnnotation) int { return a.Page }),
	}, nil
}

// AssembleWithOCR is Assemble but replaces the text/structured-text branches
// with the OCR-aware pass, producing a PdfDocumentOcr instead.
func AssembleWithOCR(doc *pdfmodel.Document, buf []byte, opts model.OcrOptions, collector *pdferrors.Collector) (*model.PdfDocumentOcr, error) {
	p := pool.New().WithErrors()
	var (
		ocrText     []model.OcrPageText
		images      []model.PageImage
		annotations []model.PageAnnotation
	)

	p.Go(func() error {
		text, err := ocrfallback.ExtractWithOCR(doc, buf, opts, collector)
		if err != nil {
			return fmt.Errorf("ocr text: %w", err)
		}
		ocrText = text
		return nil
	})
	p.Go(func() error {
		images = imageextract.ExtractImages(doc, collector)
		return nil
	})
	p.Go(func() error {
		annotations = annotextract.ExtractAnnotations(doc, collector)
		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	meta := metaextract.ExtractMetadata(doc, buf)
	structured := structuredtext.DetectOcr(ocrText)

	return &model.PdfDocumentOcr{
		PdfMeta: meta,

		TotalImages:      len(images),
		TotalAnnotations: len(annotations),

		Text:           ocrText,
		StructuredText: structured,
		Images:         images,
		Annotations:    annotations,

		ImagePages:      uniquePages(images, func(i model.PageImage) int { return i.Page }),
		AnnotationPages: uniquePages(annotations, func(a model.PageAnnotation) int { return a.Page }),
	}, nil
}

// uniquePages returns the sorted, deduplicated set of pages keyOf reports
// across items, preserving the per-page-array ordering contract (§3).
func uniquePages[T any](items []T, keyOf func(T) int) []int {
	seen := make(map[int]struct{})
	for _, item := range items {
		seen[keyOf(item)] = struct{}{}
	}
	pages := make([]int, 0, len(seen))
	for page := range seen {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}
