package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("MaxFileSize = %d, want %d", cfg.MaxFileSize, DefaultMaxFileSize)
	}
	if cfg.OCREnabled {
		t.Error("OCREnabled should default to false")
	}
	if cfg.OCRLang != DefaultOCRLang {
		t.Errorf("OCRLang = %q, want %q", cfg.OCRLang, DefaultOCRLang)
	}
	if cfg.OCRMinTextLen != DefaultOCRMinTextLen {
		t.Errorf("OCRMinTextLen = %d, want %d", cfg.OCRMinTextLen, DefaultOCRMinTextLen)
	}
	if cfg.OCRMaxThreads != DefaultOCRMaxThreads {
		t.Errorf("OCRMaxThreads = %d, want %d", cfg.OCRMaxThreads, DefaultOCRMaxThreads)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero max file size", &Config{LogLevel: "info", MaxFileSize: 0, OCRMaxThreads: 1}, true},
		{"negative max file size", &Config{LogLevel: "info", MaxFileSize: -1, OCRMaxThreads: 1}, true},
		{"negative ocr min text len", &Config{LogLevel: "info", MaxFileSize: 1, OCRMinTextLen: -1, OCRMaxThreads: 1}, true},
		{"zero ocr max threads", &Config{LogLevel: "info", MaxFileSize: 1, OCRMaxThreads: 0}, true},
		{"negative ocr max threads", &Config{LogLevel: "info", MaxFileSize: 1, OCRMaxThreads: -1}, true},
		{"invalid log level", &Config{LogLevel: "trace", MaxFileSize: 1, OCRMaxThreads: 1}, true},
		{"empty log level", &Config{LogLevel: "", MaxFileSize: 1, OCRMaxThreads: 1}, true},
		{"valid minimal config", &Config{LogLevel: "warn", MaxFileSize: 1, OCRMaxThreads: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigIsDebug(t *testing.T) {
	tests := []struct {
		logLevel string
		want     bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
		{"error", false},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			if got := cfg.IsDebug(); got != tt.want {
				t.Errorf("IsDebug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{LogLevel: "debug", MaxFileSize: 1024, OCREnabled: true, OCRLang: "fra"}
	result := cfg.String()

	for _, substr := range []string{"LogLevel: debug", "MaxFileSize: 1024", "OCR: true", "OCRLang: fra"} {
		if !containsSubstring(result, substr) {
			t.Errorf("String() = %q, missing substring %q", result, substr)
		}
	}
}

func containsSubstring(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
