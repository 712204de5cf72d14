// Package imageextract walks each page's /Resources → /XObject subtree,
// decodes the image XObjects it finds into RGB8 or Gray8 pixel buffers, and
// re-encodes them as PNG. It is grounded on the XObject walk in the
// teacher's internal/pdf/assets.go (same Resources → XObject → Subtype
// "Image" traversal), but where the teacher only estimated a byte size from
// declared width/height/bpc, this package decodes real pixels via the
// object graph's resolved streams and internal/pdfmodel's filter chain.
package imageextract

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"regexp"

	"github.com/a3tai/pdfextract/internal/logging"
	"github.com/a3tai/pdfextract/internal/model"
	"github.com/a3tai/pdfextract/internal/pdferrors"
	"github.com/a3tai/pdfextract/internal/pdfmodel"
)

var log = logging.New("warn", false, nil).With().Str("extractor", "imageextract").Logger()

// ExtractImages returns one PageImage per image XObject referenced from any
// page's resource dictionary, in page-ascending then XObject-iteration-order.
// A collector, if non-nil, records why an image was skipped; skipped images
// never fail the page or the document.
func ExtractImages(doc *pdfmodel.Document, collector *pdferrors.Collector) []model.PageImage {
	var out []model.PageImage

	for i, page := range doc.Pages {
		pageNum := i + 1
		walkPageImageStreams(doc, page, func(idx int, name, objID string, stream *pdfmodel.Stream) {
			img, err := decodeImageXObject(doc, stream)
			if err != nil {
				addErr(collector, pageNum, name, err.Error())
				return
			}
			img.Page = pageNum
			img.ImageIndex = idx
			img.XObjectName = name
			img.ObjectID = objID
			out = append(out, *img)
		})
	}
	return out
}

// DecodePage decodes every image XObject on one page to raw pixels, in
// XObject-iteration order, without PNG-encoding them. The OCR fallback uses
// this instead of ExtractImages since Tesseract consumes pixels directly.
func DecodePage(doc *pdfmodel.Document, pageNum int) ([]image.Image, error) {
	if pageNum < 1 || pageNum > len(doc.Pages) {
		return nil, fmt.Errorf("page %d out of range", pageNum)
	}
	page := doc.Pages[pageNum-1]

	var images []image.Image
	walkPageImageStreams(doc, page, func(_ int, _, _ string, stream *pdfmodel.Stream) {
		img, _, _, err := decodePixels(doc, stream)
		if err != nil {
			return
		}
		images = append(images, img)
	})
	return images, nil
}

// walkPageImageStreams calls fn for every image XObject stream referenced
// from page's resource dictionary, in iteration order. Resolution failures
// are silently skipped; the page simply yields fewer images. If the page's
// content stream(s) can be parsed for "Do" operator invocations, XObject
// names never actually painted are skipped too (some generators leave
// orphaned entries in /Resources that no content stream ever draws); when
// that parse fails or finds nothing, every /XObject entry is walked, which
// is the spec's baseline behavior.
func walkPageImageStreams(doc *pdfmodel.Document, page *pdfmodel.PageRef, fn func(idx int, name, objID string, stream *pdfmodel.Stream)) {
	if page.Resources == nil {
		return
	}
	xobjects := resolveDict(doc, page.Resources.Get("XObject"))
	if xobjects == nil {
		return
	}

	painted := paintedXObjectNames(doc, page)

	for idx, name := range xobjects.Keys {
		if len(painted) > 0 && !painted[name.Value] {
			continue
		}
		entry := xobjects.Get(name.Value)
		objID := ""
		if ref, ok := entry.(*pdfmodel.IndirectRef); ok {
			objID = ref.ObjectID.String()
		}
		obj, err := doc.Resolve(entry)
		if err != nil {
			continue
		}
		stream, ok := obj.(*pdfmodel.Stream)
		if !ok || stream.Dict.GetName("Subtype") != "Image" {
			continue
		}
		fn(idx, name.Value, objID, stream)
	}
}

// doOperatorPattern matches a content-stream "/Name Do" XObject invocation.
// PDF name objects may contain #-escapes and a wide character set; this
// covers the common case emitted by every generator in the retrieved pack
// and is only ever used to narrow, never to replace, the XObject walk.
var doOperatorPattern = regexp.MustCompile(`/([^\s/\[\]()<>{}%]+)\s+Do\b`)

// paintedXObjectNames parses page's content stream(s) for "Do" operator
// invocations and returns the set of XObject resource names actually
// painted. A nil/empty result means parsing yielded nothing usable and
// callers should fall back to enumerating every resource entry.
func paintedXObjectNames(doc *pdfmodel.Document, page *pdfmodel.PageRef) map[string]bool {
	data, ok := pageContentBytes(doc, page)
	if !ok {
		return nil
	}

	matches := doOperatorPattern.FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		return nil
	}

	names := make(map[string]bool, len(matches))
	for _, m := range matches {
		names[string(m[1])] = true
	}
	return names
}

// pageContentBytes resolves and decodes page's /Contents, which may be a
// single stream or an array of streams meant to be concatenated in order.
func pageContentBytes(doc *pdfmodel.Document, page *pdfmodel.PageRef) ([]byte, bool) {
	contentsObj, err := doc.Resolve(page.Dict.Get("Contents"))
	if err != nil {
		return nil, false
	}

	var streams []*pdfmodel.Stream
	switch v := contentsObj.(type) {
	case *pdfmodel.Stream:
		streams = []*pdfmodel.Stream{v}
	case *pdfmodel.Array:
		for _, elem := range v.Elements {
			resolved, err := doc.Resolve(elem)
			if err != nil {
				continue
			}
			if s, ok := resolved.(*pdfmodel.Stream); ok {
				streams = append(streams, s)
			}
		}
	default:
		return nil, false
	}
	if len(streams) == 0 {
		return nil, false
	}

	var buf bytes.Buffer
	for _, s := range streams {
		decoded, err := pdfmodel.DecodeStream(s)
		if err != nil {
			continue
		}
		buf.Write(decoded)
		buf.WriteByte('\n')
	}
	if buf.Len() == 0 {
		return nil, false
	}
	return buf.Bytes(), true
}

func addErr(c *pdferrors.Collector, page int, objID, msg string) {
	log.Warn().Int("page", page).Str("object_id", objID).Msg(msg)
	if c == nil {
		return
	}
	c.Add(pdferrors.New(pdferrors.KindInvalidImage, msg).WithPage(page).WithObject(objID))
}

// decodeImageXObject resolves width/height/bpc/color-space/filter from the
// stream dictionary, decodes pixels, and re-encodes as PNG.
func decodeImageXObject(doc *pdfmodel.Document, stream *pdfmodel.Stream) (*model.PageImage, error) {
	img, width, height, err := decodePixels(doc, stream)
	if err != nil {
		return nil, err
	}

	dict := stream.Dict
	bpc := int(dict.GetInt("BitsPerComponent"))
	if bpc == 0 {
		bpc = 8
	}
	filters := stream.Filters()
	lastFilter := ""
	if len(filters) > 0 {
		lastFilter = filters[len(filters)-1]
	}
	colorSpaceName, _, _ := resolveColorSpace(doc, dict.Get("ColorSpace"))
	switch lastFilter {
	case "DCTDecode":
		colorSpaceName = "DeviceRGB"
	case "CCITTFaxDecode":
		colorSpaceName = "DeviceGray"
	}
	_, hasAlpha := resolveSoftMask(doc, dict, width, height)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("PNG encode: %w", err)
	}

	return &model.PageImage{
		Width:            width,
		Height:           height,
		Data:             buf.Bytes(),
		ColorSpace:       colorSpaceName,
		BitsPerComponent: bpc,
		Filter:           lastFilter,
		HasAlpha:         hasAlpha,
	}, nil
}

// decodePixels resolves width/height/bpc/color-space/filter from the stream
// dictionary and decodes it to an in-memory image, applying any soft mask as
// alpha. It is the shared core behind both ExtractImages (which PNG-encodes
// the result) and DecodePage (which hands the OCR fallback raw pixels).
func decodePixels(doc *pdfmodel.Document, stream *pdfmodel.Stream) (image.Image, int, int, error) {
	dict := stream.Dict
	width := int(dict.GetInt("Width"))
	height := int(dict.GetInt("Height"))
	if width <= 0 || height <= 0 {
		return nil, 0, 0, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}

	bpc := int(dict.GetInt("BitsPerComponent"))
	if bpc == 0 {
		bpc = 8
	}

	filters := stream.Filters()
	lastFilter := ""
	if len(filters) > 0 {
		lastFilter = filters[len(filters)-1]
	}

	// CCITTFaxDecode always yields a 1-bit-per-pixel bitmap; this is the one
	// bpc this package decodes outside the 8/16 the spec otherwise requires
	// (see SPEC_FULL.md's ambient filter enrichment).
	if lastFilter == "CCITTFaxDecode" {
		data, derr := pdfmodel.DecodeStream(stream)
		if derr != nil {
			return nil, 0, 0, fmt.Errorf("CCITTFaxDecode: %w", derr)
		}
		img, ierr := bitmapToGray(data, width, height)
		if ierr != nil {
			return nil, 0, 0, ierr
		}
		if alpha, hasAlpha := resolveSoftMask(doc, dict, width, height); hasAlpha {
			img = applyAlpha(img, alpha)
		}
		return img, width, height, nil
	}

	if bpc != 8 && bpc != 16 {
		return nil, 0, 0, fmt.Errorf("unsupported bits per component %d", bpc)
	}

	var img image.Image
	var err error

	switch lastFilter {
	case "DCTDecode":
		data, derr := pdfmodel.DecodeStream(stream)
		if derr != nil {
			return nil, 0, 0, fmt.Errorf("DCTDecode: %w", derr)
		}
		img, err = jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("JPEG decode: %w", err)
		}
	case "JPXDecode":
		return nil, 0, 0, fmt.Errorf("JPXDecode: no JPEG 2000 decoder available")
	default:
		data, derr := pdfmodel.DecodeStream(stream)
		if derr != nil {
			return nil, 0, 0, fmt.Errorf("decode stream: %w", derr)
		}
		kind, channels, csErr := resolveColorSpace(doc, dict.Get("ColorSpace"))
		if csErr != nil {
			return nil, 0, 0, csErr
		}
		img, err = samplesToImage(data, width, height, bpc, channels, kind)
		if err != nil {
			return nil, 0, 0, err
		}
	}

	if alpha, hasAlpha := resolveSoftMask(doc, dict, width, height); hasAlpha {
		img = applyAlpha(img, alpha)
	}
	return img, width, height, nil
}

// resolveColorSpace interprets a stream's /ColorSpace entry: a direct name
// (DeviceRGB/DeviceGray/DeviceCMYK) or an [/ICCBased stream] array, whose
// /N entry (1, 3, or 4) determines the channel count.
func resolveColorSpace(doc *pdfmodel.Document, csObj pdfmodel.Object) (string, int, error) {
	resolved, err := doc.Resolve(csObj)
	if err != nil {
		return "", 0, fmt.Errorf("resolve color space: %w", err)
	}

	switch v := resolved.(type) {
	case *pdfmodel.Name:
		switch v.Value {
		case "DeviceRGB":
			return "DeviceRGB", 3, nil
		case "DeviceGray":
			return "DeviceGray", 1, nil
		case "DeviceCMYK":
			return "DeviceCMYK", 4, nil
		default:
			return "Unknown", 0, fmt.Errorf("unsupported color space %q", v.Value)
		}
	case *pdfmodel.Array:
		if v.Len() < 2 {
			break
		}
		head, err := doc.Resolve(v.Get(0))
		if err != nil {
			break
		}
		name, ok := head.(*pdfmodel.Name)
		if !ok || name.Value != "ICCBased" {
			break
		}
		streamObj, err := doc.Resolve(v.Get(1))
		if err != nil {
			break
		}
		iccStream, ok := streamObj.(*pdfmodel.Stream)
		if !ok {
			break
		}
		switch iccStream.Dict.GetInt("N") {
		case 1:
			return "ICCBased", 1, nil
		case 3:
			return "ICCBased", 3, nil
		case 4:
			return "ICCBased", 4, nil
		}
	}
	return "Unknown", 0, fmt.Errorf("unsupported or unresolved color space")
}

// samplesToImage interprets decoded raw sample bytes per color space,
// downshifting 16-bit samples to 8-bit by keeping the high byte.
func samplesToImage(data []byte, width, height, bpc, channels int, colorSpaceName string) (image.Image, error) {
	bytesPerSample := bpc / 8
	rowSize := width * channels * bytesPerSample
	if rowSize == 0 || len(data) < rowSize*height {
		return nil, fmt.Errorf("sample data too short for %dx%d, %d channels at %d bpc", width, height, channels, bpc)
	}

	sample := func(row, col, ch int) byte {
		idx := row*rowSize + (col*channels+ch)*bytesPerSample
		return data[idx] // high byte first for 16-bit samples
	}

	switch channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetGray(x, y, color.Gray{Y: sample(y, x, 0)})
			}
		}
		return img, nil
	case 3:
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetRGBA(x, y, color.RGBA{
					R: sample(y, x, 0), G: sample(y, x, 1), B: sample(y, x, 2), A: 255,
				})
			}
		}
		return img, nil
	case 4:
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				c, m, ye, k := sample(y, x, 0), sample(y, x, 1), sample(y, x, 2), sample(y, x, 3)
				r, g, b := cmykToRGB(c, m, ye, k)
				img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported channel count %d for %s", channels, colorSpaceName)
	}
}

// bitmapToGray expands a 1-bit-per-pixel, MSB-first, row-byte-aligned
// bitmap (golang.org/x/image/ccitt's output format) into an 8-bit grayscale
// image: a set bit is white, an unset bit is black.
func bitmapToGray(data []byte, width, height int) (image.Image, error) {
	rowBytes := (width + 7) / 8
	if rowBytes == 0 || len(data) < rowBytes*height {
		return nil, fmt.Errorf("CCITT bitmap data too short for %dx%d", width, height)
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := data[y*rowBytes : (y+1)*rowBytes]
		for x := 0; x < width; x++ {
			byteIdx := x / 8
			bit := row[byteIdx] & (0x80 >> uint(x%8))
			gray := byte(0)
			if bit != 0 {
				gray = 255
			}
			img.SetGray(x, y, color.Gray{Y: gray})
		}
	}
	return img, nil
}

// cmykToRGB applies the naive CMYK->RGB formula: R=(1-C)(1-K) etc, scaled to
// 8-bit, with C/M/Y/K themselves already 8-bit samples in [0,255].
func cmykToRGB(c, m, y, k byte) (r, g, b byte) {
	cf, mf, yf, kf := float64(c)/255, float64(m)/255, float64(y)/255, float64(k)/255
	r = uint8((1 - cf) * (1 - kf) * 255)
	g = uint8((1 - mf) * (1 - kf) * 255)
	b = uint8((1 - yf) * (1 - kf) * 255)
	return r, g, b
}

// resolveSoftMask decodes a /SMask attached to an image XObject into a
// per-pixel alpha channel, used for transparency compositing. A soft mask
// whose dimensions don't match the base image is skipped rather than scaled.
func resolveSoftMask(doc *pdfmodel.Document, dict *pdfmodel.Dict, width, height int) ([]byte, bool) {
	smaskObj := dict.Get("SMask")
	if smaskObj == nil || smaskObj.Type() == pdfmodel.TypeNull {
		return nil, false
	}
	resolved, err := doc.Resolve(smaskObj)
	if err != nil {
		return nil, false
	}
	smask, ok := resolved.(*pdfmodel.Stream)
	if !ok {
		return nil, false
	}

	smWidth := int(smask.Dict.GetInt("Width"))
	smHeight := int(smask.Dict.GetInt("Height"))
	if smWidth != width || smHeight != height {
		return nil, false
	}
	bpc := int(smask.Dict.GetInt("BitsPerComponent"))
	if bpc == 0 {
		bpc = 8
	}
	if bpc != 8 && bpc != 16 {
		return nil, false
	}

	filters := smask.Filters()
	if len(filters) > 0 {
		last := filters[len(filters)-1]
		if last == "DCTDecode" || last == "JPXDecode" {
			return nil, false
		}
	}

	data, err := pdfmodel.DecodeStream(smask)
	if err != nil {
		return nil, false
	}

	bytesPerSample := bpc / 8
	rowSize := width * bytesPerSample
	if rowSize == 0 || len(data) < rowSize*height {
		return nil, false
	}

	alpha := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			alpha[y*width+x] = data[y*rowSize+x*bytesPerSample]
		}
	}
	return alpha, true
}

// applyAlpha composites a decoded soft mask onto img, producing an RGBA
// image with the mask's values as per-pixel alpha.
func applyAlpha(img image.Image, alpha []byte) image.Image {
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	width := bounds.Dx()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			a := alpha[(y-bounds.Min.Y)*width+(x-bounds.Min.X)]
			out.SetNRGBA(x, y, color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a})
		}
	}
	return out
}

// resolveDict resolves obj and type-asserts it to a *Dict, returning nil on
// any failure rather than propagating an error: a missing /XObject
// dictionary simply means the page has no images.
func resolveDict(doc *pdfmodel.Document, obj pdfmodel.Object) *pdfmodel.Dict {
	if obj == nil || obj.Type() == pdfmodel.TypeNull {
		return nil
	}
	resolved, err := doc.Resolve(obj)
	if err != nil {
		return nil
	}
	dict, _ := resolved.(*pdfmodel.Dict)
	return dict
}
