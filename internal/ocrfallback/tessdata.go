package ocrfallback

import (
	"os"
	"os/exec"
	"strings"
	"sync"
)

// tessdataPrefix and tessdataOnce cache the resolved tessdata directory for
// the lifetime of the process, mirroring original_source/src/core/ocr.rs's
// get_tessdata_prefix OnceLock: TESSDATA_PREFIX is checked first, and
// otherwise `tesseract --list-langs` is run once and its quoted path parsed
// out of stderr (or stdout, if stderr carries no quote).
var (
	tessdataOnce   sync.Once
	tessdataResult string
)

// resolveTessdataPrefix returns the tessdata directory to pass to
// tesseract via --tessdata-dir, or "" to let tesseract use its compiled-in
// default.
func resolveTessdataPrefix() string {
	tessdataOnce.Do(func() {
		if v := os.Getenv("TESSDATA_PREFIX"); v != "" {
			tessdataResult = v
			return
		}
		tessdataResult = parseTessdataPrefixFromListLangs()
	})
	return tessdataResult
}

func parseTessdataPrefixFromListLangs() string {
	cmd := exec.Command("tesseract", "--list-langs")
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	_ = cmd.Run()

	if path, ok := extractQuotedPath(stderr.String()); ok {
		return path
	}
	if path, ok := extractQuotedPath(stdout.String()); ok {
		return path
	}
	return ""
}

// extractQuotedPath pulls the directory out of tesseract's
// `List of available languages in "/path/to/tessdata/"` banner line.
func extractQuotedPath(s string) (string, bool) {
	first := strings.IndexByte(s, '"')
	if first < 0 {
		return "", false
	}
	rest := s[first+1:]
	last := strings.IndexByte(rest, '"')
	if last < 0 {
		return "", false
	}
	return rest[:last], true
}
