// Package structuredtext splits each page's plain text into header, body,
// and footer by detecting lines that repeat across a threshold fraction of
// pages. It is a direct port of
// _examples/original_source/src/core/text.rs's normalize_header_footer_line
// and detect_headers_footers, expressed with Go's stdlib strings/unicode
// instead of Rust's char iterators.
package structuredtext

import (
	"math"
	"strings"

	"github.com/a3tai/pdfextract/internal/model"
)

// minPagesForDetection below this page count, detection is skipped and
// every page's whole text becomes its body.
const minPagesForDetection = 3

// maxCheckLines bounds how many lines from the top/bottom of each page are
// considered as header/footer candidates.
const maxCheckLines = 3

// frequencyThreshold is the fraction of pages a candidate line must appear
// on (after normalization) to be classified as a header or footer line.
const frequencyThreshold = 0.6

// Detect splits each page's text into header, body and footer sections.
func Detect(pages []model.PageText) []model.StructuredPageText {
	if len(pages) < minPagesForDetection {
		out := make([]model.StructuredPageText, len(pages))
		for i, p := range pages {
			out[i] = model.StructuredPageText{Page: p.Page, Body: p.Text}
		}
		return out
	}

	threshold := int(math.Ceil(float64(len(pages)) * frequencyThreshold))
	pageLines := make([][]string, len(pages))
	for i, p := range pages {
		pageLines[i] = splitLines(p.Text)
	}

	headerCount := countHeaderLines(pageLines, threshold)
	footerCount := countFooterLines(pageLines, threshold, headerCount)

	out := make([]model.StructuredPageText, len(pages))
	for i, p := range pages {
		lines := pageLines[i]
		total := len(lines)

		hEnd := headerCount
		if hEnd > total {
			hEnd = total
		}
		fStart := total
		if footerCount > 0 {
			fStart = total - footerCount
			if fStart < hEnd {
				fStart = hEnd
			}
		}

		out[i] = model.StructuredPageText{
			Page:   p.Page,
			Header: strings.Join(lines[:hEnd], "\n"),
			Body:   strings.Join(lines[hEnd:fStart], "\n"),
			Footer: strings.Join(lines[fStart:], "\n"),
		}
	}
	return out
}

// DetectOcr is Detect for the OCR-aware pipeline: each page's Source tag
// passes through unchanged onto its structured counterpart.
func DetectOcr(pages []model.OcrPageText) []model.OcrStructuredPageText {
	plain := make([]model.PageText, len(pages))
	sourceByPage := make(map[int]model.TextSource, len(pages))
	for i, p := range pages {
		plain[i] = model.PageText{Page: p.Page, Text: p.Text}
		sourceByPage[p.Page] = p.Source
	}

	structured := Detect(plain)
	out := make([]model.OcrStructuredPageText, len(structured))
	for i, s := range structured {
		out[i] = model.OcrStructuredPageText{
			Page: s.Page, Header: s.Header, Body: s.Body, Footer: s.Footer,
			Source: sourceByPage[s.Page],
		}
	}
	return out
}

// splitLines splits text on LF boundaries and strips a trailing CR from each
// line, so CRLF input doesn't leak a stray "\r" into header/body/footer text.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func countHeaderLines(pageLines [][]string, threshold int) int {
	count := 0
	for pos := 0; pos < maxCheckLines; pos++ {
		freq := make(map[string]int)
		for _, lines := range pageLines {
			if pos >= len(lines) {
				continue
			}
			norm := normalizeHeaderFooterLine(lines[pos])
			if norm != "" {
				freq[norm]++
			}
		}
		if anyAtLeast(freq, threshold) {
			count = pos + 1
		} else {
			break
		}
	}
	return count
}

func countFooterLines(pageLines [][]string, threshold, headerCount int) int {
	count := 0
	for pos := 0; pos < maxCheckLines; pos++ {
		freq := make(map[string]int)
		for _, lines := range pageLines {
			if len(lines) <= pos {
				continue
			}
			idx := len(lines) - 1 - pos
			if idx < headerCount {
				continue
			}
			norm := normalizeHeaderFooterLine(lines[idx])
			if norm != "" {
				freq[norm]++
			}
		}
		if anyAtLeast(freq, threshold) {
			count = pos + 1
		} else {
			break
		}
	}
	return count
}

func anyAtLeast(freq map[string]int, threshold int) bool {
	for _, c := range freq {
		if c >= threshold {
			return true
		}
	}
	return false
}

// normalizeHeaderFooterLine trims a line and collapses contiguous digit runs
// to a placeholder so "Page 1" and "Page 42" compare equal.
func normalizeHeaderFooterLine(line string) string {
	trimmed := strings.TrimSpace(line)
	var b strings.Builder
	b.Grow(len(trimmed))
	inDigits := false
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			if !inDigits {
				b.WriteString("<NUM>")
				inDigits = true
			}
			continue
		}
		inDigits = false
		b.WriteRune(r)
	}
	return b.String()
}
