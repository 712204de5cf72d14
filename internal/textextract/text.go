// Package textextract extracts per-page plain text from a PDF buffer using
// ledongthuc/pdf's content-stream text runs. ledongthuc/pdf only opens from a
// file path (see its Reader.Open), so a buffer handed to ExtractText is first
// spilled to a temp file; everything downstream works in terms of that file.
package textextract

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sourcegraph/conc/pool"

	"github.com/a3tai/pdfextract/internal/model"
)

// maxWorkers bounds how many pages are extracted concurrently regardless of
// document length.
const maxWorkers = 8

// lineTolerance is how many PDF user-space units two text runs' baselines may
// differ by and still be considered the same line.
const lineTolerance = 2.0

// ExtractText returns one PageText per page of buf, in page order. A page
// whose content stream cannot be read produces an empty-text entry rather
// than failing the whole document.
func ExtractText(buf []byte) ([]model.PageText, error) {
	path, cleanup, err := spillToTempFile(buf)
	if err != nil {
		return nil, fmt.Errorf("textextract: %w", err)
	}
	defer cleanup()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("textextract: open: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pageCountStr := strconv.Itoa(numPages)

	workers := numPages
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers < 1 {
		workers = 1
	}

	p := pool.NewWithResults[model.PageText]().WithMaxGoroutines(workers)
	for i := 1; i <= numPages; i++ {
		pageNum := i
		p.Go(func() model.PageText {
			return extractPage(reader, pageNum, pageCountStr)
		})
	}
	results := p.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Page < results[j].Page })
	return results, nil
}

// extractPage reads one page's text runs and reassembles them into lines.
// ledongthuc/pdf panics on a handful of malformed content streams rather than
// returning an error, so a page that panics is recorded as empty text
// instead of aborting the whole document.
func extractPage(reader *pdf.Reader, pageNum int, pageCountStr string) (result model.PageText) {
	result.Page = pageNum
	defer func() {
		if recover() != nil {
			result.Text = ""
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return result
	}

	content := page.Content()
	text := reconstructLines(content.Text)
	result.Text = stripFooterArtifacts(text, pageCountStr)
	return result
}

// reconstructLines turns the flat, content-stream-ordered run of glyph runs
// ledongthuc/pdf exposes back into lines: runs whose baseline Y falls within
// lineTolerance of the current line are joined, inserting a space whenever a
// visible gap separates one run's end from the next run's start.
func reconstructLines(runs []pdf.Text) string {
	if len(runs) == 0 {
		return ""
	}

	var b strings.Builder
	var lineY, lineEndX float64
	started := false

	for _, run := range runs {
		if run.S == "" {
			continue
		}
		switch {
		case !started:
			started = true
		case run.Y < lineY-lineTolerance || run.Y > lineY+lineTolerance:
			b.WriteByte('\n')
		case run.X > lineEndX+0.5:
			b.WriteByte(' ')
		}
		b.WriteString(run.S)
		lineY = run.Y
		lineEndX = run.X + run.W
	}
	return b.String()
}

// splitLines splits text on LF boundaries and strips a trailing CR from each
// line, matching original_source's str::lines() on CRLF input.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// stripFooterArtifacts removes Chromium's split page-footer artifact: its
// Skia PDF renderer writes footers like "1 / 38" as separate text-showing
// operations, which ledongthuc/pdf's content-stream walk reassembles as a
// line containing only "/" immediately followed by a line containing only
// the total page count. Both lines are dropped wherever that pattern occurs.
func stripFooterArtifacts(text, pageCountStr string) string {
	lines := splitLines(text)
	if len(lines) < 2 {
		return text
	}

	skip := make([]bool, len(lines))
	found := false
	for i := 0; i < len(lines)-1; i++ {
		if strings.TrimSpace(lines[i]) == "/" && strings.TrimSpace(lines[i+1]) == pageCountStr {
			skip[i] = true
			skip[i+1] = true
			found = true
		}
	}
	if !found {
		return text
	}

	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if !skip[i] {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// spillToTempFile writes buf to a temp file so ledongthuc/pdf, which only
// opens from a path, can read it. The returned cleanup removes the file.
func spillToTempFile(buf []byte) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "pdfextract-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}
