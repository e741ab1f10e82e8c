package worker

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	t.Setenv("INNEROS_WORKER_DB_PATH", "tmp/broadcasts.db")
	t.Setenv("INNEROS_EDGE_BASE_URL", "https://edge.example.com")

	cfg, err := ParseConfig(fs, []string{"-batch-size", "25", "-max-attempts", "3"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "tmp/broadcasts.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "tmp/broadcasts.db")
	}
	if cfg.EdgeBaseURL != "https://edge.example.com" {
		t.Fatalf("edge base url = %q, want %q", cfg.EdgeBaseURL, "https://edge.example.com")
	}
	if cfg.BatchSize != 25 {
		t.Fatalf("batch size = %d, want 25", cfg.BatchSize)
	}
	if cfg.MaxAttempts != 3 {
		t.Fatalf("max attempts = %d, want 3", cfg.MaxAttempts)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.AuditDBPath != "data/audit.db" {
		t.Fatalf("audit db path = %q, want %q", cfg.AuditDBPath, "data/audit.db")
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("poll interval = %v, want 5s", cfg.PollInterval)
	}
}
