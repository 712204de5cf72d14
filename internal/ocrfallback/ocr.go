// Package ocrfallback runs native text extraction per page and falls back to
// Tesseract on pages whose native text is empty or too short, per
// _examples/original_source/src/core/ocr.rs's extract_text_with_ocr. The
// Tesseract invocation itself shells out to the tesseract CLI rather than
// binding the Rust original's tesseract_rs library, since the CLI is the
// black-box collaborator this repository treats Tesseract as.
package ocrfallback

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"sort"
	"strings"
	"unicode"

	"github.com/sourcegraph/conc/pool"

	"github.com/a3tai/pdfextract/internal/imageextract"
	"github.com/a3tai/pdfextract/internal/logging"
	"github.com/a3tai/pdfextract/internal/model"
	"github.com/a3tai/pdfextract/internal/pdferrors"
	"github.com/a3tai/pdfextract/internal/pdfmodel"
	"github.com/a3tai/pdfextract/internal/textextract"
)

var log = logging.New("warn", false, nil).With().Str("extractor", "ocrfallback").Logger()

// ExtractWithOCR returns one OcrPageText per page of buf, in page order.
// Pages whose native text meets minTextLength keep their native text;
// shorter pages are re-derived from Tesseract run over the page's decoded
// images. doc must have been parsed from the same buf.
func ExtractWithOCR(doc *pdfmodel.Document, buf []byte, opts model.OcrOptions, collector *pdferrors.Collector) ([]model.OcrPageText, error) {
	native, err := textextract.ExtractText(buf)
	if err != nil {
		return nil, fmt.Errorf("ocrfallback: %w", err)
	}

	lang := opts.Lang
	if lang == "" {
		lang = "eng"
	}
	minLen := opts.MinTextLength
	sem := semaphoreFor(opts.MaxThreads)

	p := pool.NewWithResults[model.OcrPageText]()
	for _, pt := range native {
		pt := pt
		p.Go(func() model.OcrPageText {
			if countNonWhitespace(pt.Text) >= minLen {
				return model.OcrPageText{Page: pt.Page, Text: pt.Text, Source: model.SourceNative}
			}

			sem <- struct{}{}
			defer func() { <-sem }()

			text, err := ocrPage(doc, pt.Page, lang)
			if err != nil {
				addErr(collector, pt.Page, err.Error())
			}
			return model.OcrPageText{Page: pt.Page, Text: text, Source: model.SourceOcr}
		})
	}
	results := p.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Page < results[j].Page })
	return results, nil
}

// countNonWhitespace counts non-whitespace code points, the predicate §4.7
// gates the native/OCR choice on.
func countNonWhitespace(s string) int {
	count := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}

// ocrPage decodes pageNum's images and runs Tesseract on each in
// XObject-iteration order, joining non-empty results with LF.
func ocrPage(doc *pdfmodel.Document, pageNum int, lang string) (string, error) {
	images, err := imageextract.DecodePage(doc, pageNum)
	if err != nil {
		return "", fmt.Errorf("decode page %d images: %w", pageNum, err)
	}

	var parts []string
	for _, img := range images {
		text, err := runTesseract(img, lang)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// runTesseract PNG-encodes img to a temp file and runs the tesseract CLI
// over it, returning its stdout. Tesseract is invoked with "stdout" as its
// output base so text comes back on the process's standard output rather
// than a file tesseract would otherwise write alongside the input.
func runTesseract(img image.Image, lang string) (string, error) {
	f, err := os.CreateTemp("", "pdfextract-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encode page image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	args := []string{path, "stdout", "-l", lang}
	if prefix := resolveTessdataPrefix(); prefix != "" {
		args = append(args, "--tessdata-dir", prefix)
	}

	out, err := exec.Command("tesseract", args...).Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

func addErr(c *pdferrors.Collector, page int, msg string) {
	log.Warn().Int("page", page).Msg(msg)
	if c == nil {
		return
	}
	c.Add(pdferrors.New(pdferrors.KindOCRUnavailable, msg).WithPage(page))
}
