package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q, want 0.0.0.0:8080", cfg.Server.Addr())
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Dataset.Path != "" {
		t.Errorf("Dataset.Path = %q, want empty (bootstrap load disabled)", cfg.Dataset.Path)
	}
	if cfg.Dataset.Encoding != "latin1" {
		t.Errorf("Dataset.Encoding = %q, want latin1", cfg.Dataset.Encoding)
	}
	if cfg.Ingest.MaxUploadSize != 104857600 {
		t.Errorf("Ingest.MaxUploadSize = %d, want 100MB", cfg.Ingest.MaxUploadSize)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want info/text", cfg.Logging)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("DATASET_PATH", "/data/invoices.csv")
	t.Setenv("DATASET_ENCODING", "utf8")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9000", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Dataset.Path != "/data/invoices.csv" {
		t.Errorf("Dataset.Path = %q", cfg.Dataset.Path)
	}
	if cfg.Dataset.Encoding != "utf8" {
		t.Errorf("Dataset.Encoding = %q, want utf8", cfg.Dataset.Encoding)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadAlternateDatasetVar(t *testing.T) {
	t.Setenv("DATA_PATH", "/data/alt.csv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Dataset.Path != "/data/alt.csv" {
		t.Errorf("Dataset.Path = %q, want /data/alt.csv", cfg.Dataset.Path)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{name: "port not a number", env: "SERVER_PORT", value: "eighty"},
		{name: "port out of range", env: "SERVER_PORT", value: "70000"},
		{name: "bad duration", env: "SERVER_READ_TIMEOUT", value: "fast"},
		{name: "unknown encoding", env: "DATASET_ENCODING", value: "ebcdic"},
		{name: "unknown log level", env: "LOG_LEVEL", value: "verbose"},
		{name: "unknown log format", env: "LOG_FORMAT", value: "xml"},
		{name: "non-positive upload size", env: "INGEST_MAX_UPLOAD_SIZE", value: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%q", tt.env, tt.value)
			}
		})
	}
}
