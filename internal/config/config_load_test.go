package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

func setArgs(args []string) {
	os.Args = args
}

func clearEnvVars() {
	os.Unsetenv("PDFEXTRACT_LOGLEVEL")
	os.Unsetenv("PDFEXTRACT_MAXFILESIZE")
	os.Unsetenv("PDFEXTRACT_OCR")
	os.Unsetenv("PDFEXTRACT_OCRLANG")
	os.Unsetenv("PDFEXTRACT_OCRMINLEN")
	os.Unsetenv("PDFEXTRACT_OCRTHREADS")
}

func TestLoadFromFlagsDefaultConfig(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"pdfextract-demo"})
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("MaxFileSize = %v, want %v", cfg.MaxFileSize, DefaultMaxFileSize)
	}
	if cfg.OCREnabled {
		t.Error("OCREnabled should default to false")
	}
	if cfg.OCRLang != DefaultOCRLang {
		t.Errorf("OCRLang = %v, want %v", cfg.OCRLang, DefaultOCRLang)
	}
	if cfg.OCRMinTextLen != DefaultOCRMinTextLen {
		t.Errorf("OCRMinTextLen = %v, want %v", cfg.OCRMinTextLen, DefaultOCRMinTextLen)
	}
	if cfg.OCRMaxThreads != DefaultOCRMaxThreads {
		t.Errorf("OCRMaxThreads = %v, want %v", cfg.OCRMaxThreads, DefaultOCRMaxThreads)
	}
}

func TestLoadFromFlagsValidFlags(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantOCR        bool
		wantOCRLang    string
		wantOCRMinLen  int
		wantOCRThreads int
		wantLogLevel   string
	}{
		{
			name:           "ocr enabled with custom language",
			args:           []string{"pdfextract-demo", "--ocr", "--ocrlang=fra"},
			wantOCR:        true,
			wantOCRLang:    "fra",
			wantOCRMinLen:  DefaultOCRMinTextLen,
			wantOCRThreads: DefaultOCRMaxThreads,
			wantLogLevel:   DefaultLogLevel,
		},
		{
			name:           "custom ocr thresholds",
			args:           []string{"pdfextract-demo", "--ocrminlen=5", "--ocrthreads=8"},
			wantOCR:        false,
			wantOCRLang:    DefaultOCRLang,
			wantOCRMinLen:  5,
			wantOCRThreads: 8,
			wantLogLevel:   DefaultLogLevel,
		},
		{
			name:           "debug logging",
			args:           []string{"pdfextract-demo", "--loglevel=debug"},
			wantOCR:        false,
			wantOCRLang:    DefaultOCRLang,
			wantOCRMinLen:  DefaultOCRMinTextLen,
			wantOCRThreads: DefaultOCRMaxThreads,
			wantLogLevel:   "debug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalArgs := os.Args
			defer func() {
				os.Args = originalArgs
				resetFlags()
				clearEnvVars()
			}()

			setArgs(tt.args)
			resetFlags()
			clearEnvVars()

			cfg, err := LoadFromFlags()
			if err != nil {
				t.Fatalf("LoadFromFlags() unexpected error: %v", err)
			}

			if cfg.OCREnabled != tt.wantOCR {
				t.Errorf("OCREnabled = %v, want %v", cfg.OCREnabled, tt.wantOCR)
			}
			if cfg.OCRLang != tt.wantOCRLang {
				t.Errorf("OCRLang = %v, want %v", cfg.OCRLang, tt.wantOCRLang)
			}
			if cfg.OCRMinTextLen != tt.wantOCRMinLen {
				t.Errorf("OCRMinTextLen = %v, want %v", cfg.OCRMinTextLen, tt.wantOCRMinLen)
			}
			if cfg.OCRMaxThreads != tt.wantOCRThreads {
				t.Errorf("OCRMaxThreads = %v, want %v", cfg.OCRMaxThreads, tt.wantOCRThreads)
			}
			if cfg.LogLevel != tt.wantLogLevel {
				t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, tt.wantLogLevel)
			}
		})
	}
}

func TestLoadFromFlagsEnvironmentVariables(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Setenv("PDFEXTRACT_LOGLEVEL", "warn")
	os.Setenv("PDFEXTRACT_OCR", "true")
	os.Setenv("PDFEXTRACT_OCRLANG", "deu")
	os.Setenv("PDFEXTRACT_OCRMINLEN", "7")
	os.Setenv("PDFEXTRACT_OCRTHREADS", "2")

	setArgs([]string{"pdfextract-demo"})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if !cfg.OCREnabled {
		t.Error("OCREnabled should be true from PDFEXTRACT_OCR")
	}
	if cfg.OCRLang != "deu" {
		t.Errorf("OCRLang = %v, want %v", cfg.OCRLang, "deu")
	}
	if cfg.OCRMinTextLen != 7 {
		t.Errorf("OCRMinTextLen = %v, want %v", cfg.OCRMinTextLen, 7)
	}
	if cfg.OCRMaxThreads != 2 {
		t.Errorf("OCRMaxThreads = %v, want %v", cfg.OCRMaxThreads, 2)
	}
}

func TestLoadFromFlagsFlagOverridesEnvironment(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Setenv("PDFEXTRACT_LOGLEVEL", "warn")
	os.Setenv("PDFEXTRACT_OCRLANG", "deu")

	setArgs([]string{"pdfextract-demo", "--loglevel=debug", "--ocrlang=spa"})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want %v (flag should override env)", cfg.LogLevel, "debug")
	}
	if cfg.OCRLang != "spa" {
		t.Errorf("OCRLang = %v, want %v (flag should override env)", cfg.OCRLang, "spa")
	}
}

func TestLoadFromFlagsInvalidLogLevel(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"pdfextract-demo", "--loglevel=trace"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid log level")
	}
}

func TestLoadFromFlagsInvalidOCRThreads(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"pdfextract-demo", "--ocrthreads=0"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for ocrthreads < 1")
	}
}
