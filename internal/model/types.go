// Package model defines the data entities produced by the extraction
// pipeline. Field names and spellings here are part of the external
// interface (e.g. "Native"/"Ocr", "CropBox"/"MediaBox"/"Unknown",
// "Link") and must be preserved verbatim by every producer.
package model

// TextSource records which path produced a page's text: the PDF's native
// text layer, or the OCR fallback.
type TextSource string

const (
	SourceNative TextSource = "Native"
	SourceOcr    TextSource = "Ocr"
)

// BoxType names which page-geometry box a PageBox entry was read from.
type BoxType string

const (
	BoxCropBox BoxType = "CropBox"
	BoxMediaBox BoxType = "MediaBox"
	BoxUnknown BoxType = "Unknown"
)

// PageText is one page's plain-text content, in document order.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// StructuredPageText splits one page's text into header, body and footer.
type StructuredPageText struct {
	Page   int    `json:"page"`
	Header string `json:"header"`
	Body   string `json:"body"`
	Footer string `json:"footer"`
}

// OcrPageText is PageText annotated with which path produced it.
type OcrPageText struct {
	Page   int        `json:"page"`
	Text   string     `json:"text"`
	Source TextSource `json:"source"`
}

// OcrStructuredPageText is StructuredPageText annotated with which path
// produced it.
type OcrStructuredPageText struct {
	Page   int        `json:"page"`
	Header string     `json:"header"`
	Body   string     `json:"body"`
	Footer string     `json:"footer"`
	Source TextSource `json:"source"`
}

// PageImage is one decoded-and-re-encoded raster image found on a page.
type PageImage struct {
	Page             int    `json:"page"`
	ImageIndex       int    `json:"imageIndex"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Data             []byte `json:"data"`
	ColorSpace       string `json:"colorSpace"`
	BitsPerComponent int    `json:"bitsPerComponent"`
	Filter           string `json:"filter"`
	XObjectName      string `json:"xobjectName"`
	ObjectID         string `json:"objectId"`
	HasAlpha         bool   `json:"hasAlpha"`
}

// PageAnnotation is one normalized annotation record.
type PageAnnotation struct {
	Page    int       `json:"page"`
	Subtype string    `json:"subtype"`
	Rect    []float64 `json:"rect"`
	URI     string    `json:"uri,omitempty"`
	Dest    string    `json:"dest,omitempty"`
	Content string    `json:"content,omitempty"`
}

// PageBox describes one distinct page geometry and how many pages share it.
type PageBox struct {
	PageCount int     `json:"pageCount"`
	Left      float64 `json:"left"`
	Bottom    float64 `json:"bottom"`
	Right     float64 `json:"right"`
	Top       float64 `json:"top"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	BoxType   BoxType `json:"boxType"`
	// Pages lists the specific page numbers sharing this geometry, sorted
	// ascending. Nil for the single most frequent geometry.
	Pages []int `json:"pages,omitempty"`
}

// PdfMeta is document-level metadata plus the deduplicated page geometry list.
type PdfMeta struct {
	PageCount        int       `json:"pageCount"`
	Version          string    `json:"version"`
	IsLinearized     bool      `json:"isLinearized"`
	Producer         string    `json:"producer,omitempty"`
	Creator          string    `json:"creator,omitempty"`
	CreationDate     string    `json:"creationDate,omitempty"`
	ModificationDate string    `json:"modificationDate,omitempty"`
	PageBoxes        []PageBox `json:"pageBoxes"`
}

// PdfDocument is the full extraction result for one PDF.
type PdfDocument struct {
	PdfMeta

	TotalImages      int `json:"totalImages"`
	TotalAnnotations int `json:"totalAnnotations"`

	Text           []PageText           `json:"text"`
	StructuredText []StructuredPageText `json:"structuredText"`
	Images         []PageImage          `json:"images"`
	Annotations    []PageAnnotation     `json:"annotations"`

	ImagePages      []int `json:"imagePages"`
	AnnotationPages []int `json:"annotationPages"`
}

// PdfDocumentOcr is PdfDocument with OCR-aware text and structured text
// arrays in place of the native-only ones. PageBoxes is retained, per
// original_source's PdfDocumentOcr shape.
type PdfDocumentOcr struct {
	PdfMeta

	TotalImages      int `json:"totalImages"`
	TotalAnnotations int `json:"totalAnnotations"`

	Text           []OcrPageText           `json:"text"`
	StructuredText []OcrStructuredPageText `json:"structuredText"`
	Images         []PageImage             `json:"images"`
	Annotations    []PageAnnotation        `json:"annotations"`

	ImagePages      []int `json:"imagePages"`
	AnnotationPages []int `json:"annotationPages"`
}

// OcrOptions configures the OCR fallback path (§4.7).
type OcrOptions struct {
	Lang          string
	MinTextLength int
	MaxThreads    int
}

// DefaultOcrOptions returns the spec's documented defaults.
func DefaultOcrOptions() OcrOptions {
	return OcrOptions{Lang: "eng", MinTextLength: 1, MaxThreads: 4}
}
