package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/halcyonlabs/inneros/internal/platform/audit"
	auditsqlite "github.com/halcyonlabs/inneros/internal/platform/audit/sqlite"
	"github.com/halcyonlabs/inneros/internal/platform/edge"
	"github.com/halcyonlabs/inneros/internal/services/broadcasts/domain"
	broadcastsqlite "github.com/halcyonlabs/inneros/internal/services/broadcasts/storage/sqlite"
)

// RuntimeConfig controls worker startup and loop behavior.
type RuntimeConfig struct {
	DBPath         string
	AuditDBPath    string
	EdgeBaseURL    string
	EdgeWebhookURL string
	EdgeAPIKey     string
	PollInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
}

const (
	defaultBroadcastDB = "data/broadcasts.db"
	defaultAuditDB     = "data/audit.db"
)

// Run starts worker dependencies and the delivery loop, blocking until the
// context is cancelled.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.EdgeBaseURL) == "" {
		return fmt.Errorf("edge base url is required")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultBroadcastDB
	}
	if strings.TrimSpace(cfg.AuditDBPath) == "" {
		cfg.AuditDBPath = defaultAuditDB
	}

	for _, path := range []string{cfg.DBPath, cfg.AuditDBPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create storage dir: %w", err)
			}
		}
	}

	broadcastStore, err := broadcastsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open broadcast sqlite store: %w", err)
	}
	defer func() {
		if closeErr := broadcastStore.Close(); closeErr != nil {
			log.Printf("close broadcast sqlite store: %v", closeErr)
		}
	}()

	auditStore, err := auditsqlite.Open(cfg.AuditDBPath)
	if err != nil {
		return fmt.Errorf("open audit sqlite store: %w", err)
	}
	defer func() {
		if closeErr := auditStore.Close(); closeErr != nil {
			log.Printf("close audit sqlite store: %v", closeErr)
		}
	}()

	edgeClient, err := edge.New(edge.Config{
		BaseURL:    cfg.EdgeBaseURL,
		WebhookURL: cfg.EdgeWebhookURL,
		APIKey:     cfg.EdgeAPIKey,
	})
	if err != nil {
		return fmt.Errorf("create edge client: %w", err)
	}

	service, err := domain.NewService(broadcastStore)
	if err != nil {
		return fmt.Errorf("create broadcast service: %w", err)
	}

	worker, err := NewWorker(service, edgeClient, audit.NewEmitter(auditStore), Config{
		PollInterval: cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
		MaxAttempts:  cfg.MaxAttempts,
	})
	if err != nil {
		return fmt.Errorf("create delivery worker: %w", err)
	}

	log.Printf("broadcast delivery worker polling every %v", worker.cfg.PollInterval)
	worker.Run(ctx)
	return nil
}
