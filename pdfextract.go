// Package pdfextract is the public entry point: parse a PDF buffer once into
// a Document handle, then pull text, images, annotations, metadata, or the
// full assembled document from it, synchronously or via a Future. It mirrors
// original_source/src/lib.rs's PdfDown handle, which exposes the same
// operations as both blocking calls and promises resolved off a worker
// thread.
package pdfextract

import (
	"fmt"

	"github.com/a3tai/pdfextract/internal/assemble"
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

// Re-exported data model, so callers only ever import this package.
type (
	PageText              = model.PageText
	StructuredPageText    = model.StructuredPageText
	OcrPageText           = model.OcrPageText
	OcrStructuredPageText = model.OcrStructuredPageText
	PageImage             = model.PageImage
	PageAnnotation        = model.PageAnnotation
	PageBox               = model.PageBox
	PdfMeta               = model.PdfMeta
	PdfDocument           = model.PdfDocument
	PdfDocumentOcr        = model.PdfDocumentOcr
	OCROptions            = model.OcrOptions
)

// DefaultOCROptions returns the spec's documented OCR defaults
// (lang "eng", minTextLength 1, maxThreads 4).
func DefaultOCROptions() OCROptions { return model.DefaultOcrOptions() }

// Document is the immutable, parsed-PDF handle every extractor borrows by
// reference. Construct one with Open; it is safe for concurrent use by
// multiple goroutines: no extractor mutates the underlying graph, and the
// parser's lazy object cache is guarded by a lock.
type Document struct {
	doc  *pdfmodel.Document
	buf  []byte
	errs *pdferrors.Collector
}

// Open parses buf into a Document. buf is retained (not copied) for the
// lifetime of the handle, since the text extractor re-reads it per call.
func Open(buf []byte) (*Document, error) {
	doc, err := pdfmodel.Open(buf)
	if err != nil {
		return nil, fmt.Errorf("pdfextract: %w", err)
	}
	return &Document{doc: doc, buf: buf, errs: pdferrors.NewCollector()}, nil
}

// ID is this handle's per-parse correlation id, generated once at Open. The
// extractor log lines this document's calls produce do not carry it.
func (d *Document) ID() string { return d.doc.ID.String() }

// PageCount is the document's page count.
func (d *Document) PageCount() int { return d.doc.PageCount }

// Errors returns the soft errors recorded by this Document's extractor
// calls so far (image/annotation/OCR failures that did not abort the page
// or document they occurred in).
func (d *Document) Errors() []*pdferrors.Error {
	return d.errs.Errors()
}

// Text extracts per-page plain text (§4.1).
func (d *Document) Text() ([]PageText, error) {
	return textextract.ExtractText(d.buf)
}

// StructuredText splits each page's text into header/body/footer (§4.5).
func (d *Document) StructuredText() ([]StructuredPageText, error) {
	pages, err := d.Text()
	if err != nil {
		return nil, err
	}
	return structuredtext.Detect(pages), nil
}

// Images decodes every image XObject referenced by any page (§4.2).
func (d *Document) Images() ([]PageImage, error) {
	return imageextract.ExtractImages(d.doc, d.errs), nil
}

// Annotations walks every page's /Annots array (§4.3).
func (d *Document) Annotations() ([]PageAnnotation, error) {
	return annotextract.ExtractAnnotations(d.doc, d.errs), nil
}

// Metadata reads document-info, version, linearization, and page geometry (§4.4).
func (d *Document) Metadata() (*PdfMeta, error) {
	meta := metaextract.ExtractMetadata(d.doc, d.buf)
	return &meta, nil
}

// FullDocument runs the text, image, and annotation extractors concurrently
// and appends metadata and structured text (§4.6).
func (d *Document) FullDocument() (*PdfDocument, error) {
	return assemble.Assemble(d.doc, d.buf, d.errs)
}

// TextWithOCR is Text, but pages whose native text is shorter than
// opts.MinTextLength are re-derived from Tesseract over the page's images (§4.7).
func (d *Document) TextWithOCR(opts OCROptions) ([]OcrPageText, error) {
	return ocrfallback.ExtractWithOCR(d.doc, d.buf, opts, d.errs)
}

// StructuredTextWithOCR is TextWithOCR followed by the header/body/footer split.
func (d *Document) StructuredTextWithOCR(opts OCROptions) ([]OcrStructuredPageText, error) {
	pages, err := d.TextWithOCR(opts)
	if err != nil {
		return nil, err
	}
	return structuredtext.DetectOcr(pages), nil
}

// FullDocumentWithOCR is FullDocument with the OCR-aware text/structured-text pass.
func (d *Document) FullDocumentWithOCR(opts OCROptions) (*PdfDocumentOcr, error) {
	return assemble.AssembleWithOCR(d.doc, d.buf, opts, d.errs)
}

// Future resolves once the async call it was returned from completes. It
// stands in for the promise/future boundary a host-runtime binding would
// expose; a plain Go caller can just call the synchronous method directly.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		f.val, f.err = fn()
		close(f.done)
	}()
	return f
}

// Get blocks until the future resolves and returns its result.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.val, f.err
}

func (d *Document) TextAsync() *Future[[]PageText] {
	return newFuture(d.Text)
}

func (d *Document) StructuredTextAsync() *Future[[]StructuredPageText] {
	return newFuture(d.StructuredText)
}

func (d *Document) ImagesAsync() *Future[[]PageImage] {
	return newFuture(d.Images)
}

func (d *Document) AnnotationsAsync() *Future[[]PageAnnotation] {
	return newFuture(d.Annotations)
}

func (d *Document) MetadataAsync() *Future[*PdfMeta] {
	return newFuture(d.Metadata)
}

func (d *Document) FullDocumentAsync() *Future[*PdfDocument] {
	return newFuture(d.FullDocument)
}

func (d *Document) TextWithOCRAsync(opts OCROptions) *Future[[]OcrPageText] {
	return newFuture(func() ([]OcrPageText, error) { return d.TextWithOCR(opts) })
}

func (d *Document) FullDocumentWithOCRAsync(opts OCROptions) *Future[*PdfDocumentOcr] {
	return newFuture(func() (*PdfDocumentOcr, error) { return d.FullDocumentWithOCR(opts) })
}
