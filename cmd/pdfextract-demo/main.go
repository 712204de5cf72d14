// Command pdfextract-demo exercises the pdfextract library end to end: it
// reads a PDF path from argv, runs the full document assembler (optionally
// with OCR), and prints a JSON summary. It follows the shape of the
// teacher's cmd/pdf_extract_forms tool: flag-parsed CLI, a single positional
// path argument, JSON output, plus the same viper+pflag config loader the
// teacher project used for its own CLI settings.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/a3tai/pdfextract"
	"github.com/a3tai/pdfextract/internal/config"
)

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfextract-demo: %v\n", err)
		os.Exit(1)
	}

	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	path := pflag.Arg(0)
	buf, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfextract-demo: read %s: %v\n", path, err)
		os.Exit(1)
	}
	if int64(len(buf)) > cfg.MaxFileSize {
		fmt.Fprintf(os.Stderr, "pdfextract-demo: %s is %d bytes, exceeds maxfilesize %d\n", path, len(buf), cfg.MaxFileSize)
		os.Exit(1)
	}

	doc, err := pdfextract.Open(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfextract-demo: open %s: %v\n", path, err)
		os.Exit(1)
	}

	var summary interface{}
	if cfg.OCREnabled {
		opts := pdfextract.OCROptions{
			Lang:          cfg.OCRLang,
			MinTextLength: cfg.OCRMinTextLen,
			MaxThreads:    cfg.OCRMaxThreads,
		}
		summary, err = doc.FullDocumentWithOCR(opts)
	} else {
		summary, err = doc.FullDocument()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfextract-demo: extract %s: %v\n", path, err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		fmt.Fprintf(os.Stderr, "pdfextract-demo: encode result: %v\n", err)
		os.Exit(1)
	}

	if errs := doc.Errors(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d soft error(s) during extraction:\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %s\n", e.Error())
		}
	}
}
