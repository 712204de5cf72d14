// Package config loads command-line and environment configuration for the
// pdfextract-demo CLI, following the same viper+pflag wiring the teacher
// project used for its server configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 200 * 1024 * 1024 // 200MB
	DefaultOCRLang        = "eng"
	DefaultOCRMinTextLen  = 32
	DefaultOCRMaxThreads  = 4
	envPrefix             = "PDFEXTRACT"
)

// Config holds the settings for a single extraction run of the demo CLI.
type Config struct {
	LogLevel    string
	MaxFileSize int64

	OCREnabled    bool
	OCRLang       string
	OCRMinTextLen int
	OCRMaxThreads int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
		OCREnabled:    false,
		OCRLang:       DefaultOCRLang,
		OCRMinTextLen: DefaultOCRMinTextLen,
		OCRMaxThreads: DefaultOCRMaxThreads,
	}
}

// LoadFromFlags parses command line flags (and PDFEXTRACT_* environment
// variables) into a Config.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()
	populateConfigFromViper(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("ocr", cfg.OCREnabled)
	viper.SetDefault("ocrlang", cfg.OCRLang)
	viper.SetDefault("ocrminlen", cfg.OCRMinTextLen)
	viper.SetDefault("ocrthreads", cfg.OCRMaxThreads)
}

func defineCommandLineFlags(cfg *Config) {
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Bool("ocr", cfg.OCREnabled, "Fall back to OCR for pages with too little extractable text")
	pflag.String("ocrlang", cfg.OCRLang, "Tesseract language code used for OCR fallback")
	pflag.Int("ocrminlen", cfg.OCRMinTextLen, "Minimum non-whitespace code points before OCR is skipped")
	pflag.Int("ocrthreads", cfg.OCRMaxThreads, "Maximum concurrent OCR worker threads")
}

func bindFlagsToViper() {
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("ocr", pflag.Lookup("ocr"))
	_ = viper.BindPFlag("ocrlang", pflag.Lookup("ocrlang"))
	_ = viper.BindPFlag("ocrminlen", pflag.Lookup("ocrminlen"))
	_ = viper.BindPFlag("ocrthreads", pflag.Lookup("ocrthreads"))
}

func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\npdfextract-demo - extract structured content from a PDF file\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDFEXTRACT_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  PDFEXTRACT_MAXFILESIZE Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  PDFEXTRACT_OCR         Enable OCR fallback (true/false)\n")
		fmt.Fprintf(os.Stderr, "  PDFEXTRACT_OCRLANG     Tesseract language code\n")
	}
}

func populateConfigFromViper(cfg *Config) {
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.OCREnabled = viper.GetBool("ocr")
	cfg.OCRLang = viper.GetString("ocrlang")
	cfg.OCRMinTextLen = viper.GetInt("ocrminlen")
	cfg.OCRMaxThreads = viper.GetInt("ocrthreads")
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.OCRMinTextLen < 0 {
		return errors.New("ocr minimum text length must not be negative")
	}
	if c.OCRMaxThreads < 1 {
		return errors.New("ocr max threads must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

func (c *Config) IsDebug() bool { return c.LogLevel == "debug" }

func (c *Config) String() string {
	return fmt.Sprintf("Config{LogLevel: %s, MaxFileSize: %d, OCR: %v, OCRLang: %s}",
		c.LogLevel, c.MaxFileSize, c.OCREnabled, c.OCRLang)
}
