// Package worker parses worker command flags and launches the broadcast
// delivery runtime.
package worker

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/halcyonlabs/inneros/internal/platform/cmd"
	broadcastapp "github.com/halcyonlabs/inneros/internal/services/broadcasts/app"
)

// Config holds worker command configuration.
type Config struct {
	DBPath         string        `env:"INNEROS_WORKER_DB_PATH" envDefault:"data/broadcasts.db"`
	AuditDBPath    string        `env:"INNEROS_WORKER_AUDIT_DB_PATH" envDefault:"data/audit.db"`
	EdgeBaseURL    string        `env:"INNEROS_EDGE_BASE_URL"`
	EdgeWebhookURL string        `env:"INNEROS_EDGE_WEBHOOK_URL"`
	EdgeAPIKey     string        `env:"INNEROS_EDGE_API_KEY"`
	PollInterval   time.Duration `env:"INNEROS_WORKER_POLL_INTERVAL" envDefault:"5s"`
	BatchSize      int           `env:"INNEROS_WORKER_BATCH_SIZE" envDefault:"10"`
	MaxAttempts    int           `env:"INNEROS_WORKER_MAX_ATTEMPTS" envDefault:"5"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The broadcast SQLite database path")
	fs.StringVar(&cfg.AuditDBPath, "audit-db-path", cfg.AuditDBPath, "The audit SQLite database path")
	fs.StringVar(&cfg.EdgeBaseURL, "edge-base-url", cfg.EdgeBaseURL, "The edge function base URL")
	fs.StringVar(&cfg.EdgeWebhookURL, "edge-webhook-url", cfg.EdgeWebhookURL, "The edge delivery webhook URL")
	fs.StringVar(&cfg.EdgeAPIKey, "edge-api-key", cfg.EdgeAPIKey, "The edge function API key")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Due-broadcast poll interval")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Maximum due broadcasts per pass")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Maximum delivery attempts before giving up")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the worker runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWorker, func(context.Context) error {
		return broadcastapp.Run(ctx, broadcastapp.RuntimeConfig{
			DBPath:         cfg.DBPath,
			AuditDBPath:    cfg.AuditDBPath,
			EdgeBaseURL:    cfg.EdgeBaseURL,
			EdgeWebhookURL: cfg.EdgeWebhookURL,
			EdgeAPIKey:     cfg.EdgeAPIKey,
			PollInterval:   cfg.PollInterval,
			BatchSize:      cfg.BatchSize,
			MaxAttempts:    cfg.MaxAttempts,
		})
	})
}
