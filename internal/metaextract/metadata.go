// Package metaextract reads document-level metadata (version, linearization,
// info dictionary fields) and deduplicates per-page geometry into the
// PageBox list. It is grounded on the teacher's own unfinished
// internal/pdf/wrapper/pdfcpu.go GetMetadata, which resolves everything
// except the info dictionary (left as a "// TODO: Implement proper info
// dictionary dereferencing for pdfcpu" with a hardcoded placeholder
// producer) — this package finishes that dereference using
// internal/pdfmodel's own trailer/Info resolution instead.
package metaextract

import (
	"bytes"
	"sort"
	"strings"

	"github.com/a3tai/pdfextract/internal/model"
	"github.com/a3tai/pdfextract/internal/pdfmodel"
)

// boxEpsilon is the rounding granularity used when grouping page geometries
// for dedup; PDF user-space units are typically points, so a hundredth of a
// point is well below any meaningful layout difference.
const boxEpsilon = 0.01

// ExtractMetadata reads version/linearization/info-dict fields and builds
// the deduplicated page-geometry list.
func ExtractMetadata(doc *pdfmodel.Document, buf []byte) model.PdfMeta {
	info := doc.Info()

	return model.PdfMeta{
		PageCount:        doc.PageCount,
		Version:          normalizeVersion(doc.Version),
		IsLinearized:     detectLinearized(buf),
		Producer:         info.GetString("Producer"),
		Creator:          info.GetString("Creator"),
		CreationDate:     info.GetString("CreationDate"),
		ModificationDate: info.GetString("ModDate"),
		PageBoxes:        buildPageBoxes(doc),
	}
}

// normalizeVersion reduces a header version string to "X.Y", tolerating a
// leading "PDF-" prefix some callers might hand in.
func normalizeVersion(v string) string {
	v = strings.TrimPrefix(v, "PDF-")
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return v
	}
	return parts[0] + "." + parts[1]
}

// detectLinearized looks for a linearization parameter dictionary
// (identified by its /Linearized key) in the first kilobytes of the file,
// where every linearized PDF producer places it as the very first object.
func detectLinearized(buf []byte) bool {
	window := buf
	if len(window) > 2048 {
		window = window[:2048]
	}
	return bytes.Contains(window, []byte("/Linearized"))
}

type boxKey struct {
	boxType            model.BoxType
	left, bottom, right, top float64
}

func roundTo(v float64) float64 {
	return float64(int64(v/boxEpsilon+0.5)) * boxEpsilon
}

func buildPageBoxes(doc *pdfmodel.Document) []model.PageBox {
	type group struct {
		key   boxKey
		pages []int
	}
	order := make([]boxKey, 0)
	groups := make(map[boxKey]*group)

	for i, page := range doc.Pages {
		pageNum := i + 1
		key, ok := pageBoxKey(page)
		if !ok {
			key = boxKey{boxType: model.BoxUnknown}
		}
		g, exists := groups[key]
		if !exists {
			g = &group{key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.pages = append(g.pages, pageNum)
	}

	boxes := make([]model.PageBox, 0, len(order))
	for _, key := range order {
		g := groups[key]
		boxes = append(boxes, model.PageBox{
			PageCount: len(g.pages),
			Left:      key.left,
			Bottom:    key.bottom,
			Right:     key.right,
			Top:       key.top,
			Width:     key.right - key.left,
			Height:    key.top - key.bottom,
			BoxType:   key.boxType,
			Pages:     append([]int(nil), g.pages...),
		})
	}

	sort.SliceStable(boxes, func(i, j int) bool { return boxes[i].PageCount > boxes[j].PageCount })
	if len(boxes) > 0 {
		boxes[0].Pages = nil
	}
	return boxes
}

func pageBoxKey(page *pdfmodel.PageRef) (boxKey, bool) {
	switch {
	case page.HasCrop:
		return boxKey{
			boxType: model.BoxCropBox,
			left:    roundTo(page.CropBox[0]),
			bottom:  roundTo(page.CropBox[1]),
			right:   roundTo(page.CropBox[2]),
			top:     roundTo(page.CropBox[3]),
		}, true
	case page.HasMedia:
		return boxKey{
			boxType: model.BoxMediaBox,
			left:    roundTo(page.MediaBox[0]),
			bottom:  roundTo(page.MediaBox[1]),
			right:   roundTo(page.MediaBox[2]),
			top:     roundTo(page.MediaBox[3]),
		}, true
	default:
		return boxKey{}, false
	}
}
