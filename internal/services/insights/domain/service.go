// Package domain aggregates operational KPIs and dashboard snapshots for
// one tenant.
package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/halcyonlabs/inneros/internal/platform/cache"
	"github.com/halcyonlabs/inneros/internal/platform/detach"
	"github.com/halcyonlabs/inneros/internal/platform/edge"
	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
)

const snapshotTTL = 5 * time.Minute

// MetricsSource provides the four independent KPI collectors.
type MetricsSource interface {
	CacheHitRate(ctx context.Context, tenantID string) (float64, error)
	AvgResponseMs(ctx context.Context, tenantID string) (float64, error)
	RAGQuality(ctx context.Context, tenantID string) (float64, error)
	HandoffSuccess(ctx context.Context, tenantID string) (float64, error)
}

// Aggregator provides the remote dashboard aggregate.
type Aggregator interface {
	AggregateDashboard(ctx context.Context, tenantID string) (edge.DashboardCounts, error)
}

// CountSource counts one kind of tenant record locally.
type CountSource interface {
	Count(ctx context.Context, tenantID string) (int, error)
}

// CountFunc adapts a function to CountSource.
type CountFunc func(ctx context.Context, tenantID string) (int, error)

// Count calls the wrapped function.
func (f CountFunc) Count(ctx context.Context, tenantID string) (int, error) {
	return f(ctx, tenantID)
}

// LocalCounts are the optional local record counters. A nil field falls
// back to the remote aggregate's value.
type LocalCounts struct {
	Documents  CountSource
	Properties CountSource
	Broadcasts CountSource
}

// Snapshot is one cached dashboard view.
type Snapshot struct {
	TenantID       string    `json:"tenant_id"`
	Documents      int       `json:"documents"`
	Properties     int       `json:"properties"`
	Broadcasts     int       `json:"broadcasts"`
	ActiveMembers  int       `json:"active_members"`
	CacheHitRate   float64   `json:"cache_hit_rate"`
	AvgResponseMs  float64   `json:"avg_response_ms"`
	RAGQuality     float64   `json:"rag_quality"`
	HandoffSuccess float64   `json:"handoff_success"`
	HealthScore    float64   `json:"health_score"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Service aggregates KPIs and dashboard snapshots.
type Service struct {
	metrics    MetricsSource
	aggregator Aggregator
	counts     LocalCounts
	cache      *cache.Cache
	runner     *detach.Runner
	clock      func() time.Time
	logf       func(format string, args ...any)
}

// NewService creates an insights service. cache and runner may be nil;
// snapshots are then computed on every call.
func NewService(metrics MetricsSource, aggregator Aggregator, counts LocalCounts, snapshotCache *cache.Cache, runner *detach.Runner) (*Service, error) {
	if metrics == nil {
		return nil, fmt.Errorf("metrics source is required")
	}
	if aggregator == nil {
		return nil, fmt.Errorf("aggregator is required")
	}
	return &Service{
		metrics:    metrics,
		aggregator: aggregator,
		counts:     counts,
		cache:      snapshotCache,
		runner:     runner,
		clock:      time.Now,
		logf:       log.Printf,
	}, nil
}

// CollectMetrics fans the four collectors out concurrently and returns their
// raw readings.
func (s *Service) CollectMetrics(ctx context.Context, tenantID string) (Metrics, error) {
	if s == nil || s.metrics == nil {
		return Metrics{}, fmt.Errorf("insights service is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return Metrics{}, apperrors.New(apperrors.CodeInvalidArgument, "tenant id is required")
	}

	var metrics Metrics
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		value, err := s.metrics.CacheHitRate(groupCtx, tenantID)
		if err != nil {
			return fmt.Errorf("collect cache hit rate: %w", err)
		}
		metrics.CacheHitRate = value
		return nil
	})
	group.Go(func() error {
		value, err := s.metrics.AvgResponseMs(groupCtx, tenantID)
		if err != nil {
			return fmt.Errorf("collect avg response ms: %w", err)
		}
		metrics.AvgResponseMs = value
		return nil
	})
	group.Go(func() error {
		value, err := s.metrics.RAGQuality(groupCtx, tenantID)
		if err != nil {
			return fmt.Errorf("collect rag quality: %w", err)
		}
		metrics.RAGQuality = value
		return nil
	})
	group.Go(func() error {
		value, err := s.metrics.HandoffSuccess(groupCtx, tenantID)
		if err != nil {
			return fmt.Errorf("collect handoff success: %w", err)
		}
		metrics.HandoffSuccess = value
		return nil
	})
	if err := group.Wait(); err != nil {
		return Metrics{}, err
	}
	return metrics, nil
}

// HealthScore collects the four KPIs concurrently and computes the weighted
// composite.
func (s *Service) HealthScore(ctx context.Context, tenantID string) (Health, error) {
	metrics, err := s.CollectMetrics(ctx, tenantID)
	if err != nil {
		return Health{}, err
	}
	return ComputeHealth(metrics), nil
}

// Dashboard returns the tenant dashboard snapshot, served from cache when a
// live entry exists. Individual fields degrade to the remote aggregate or
// zero instead of failing the whole read.
func (s *Service) Dashboard(ctx context.Context, tenantID string) (Snapshot, error) {
	if s == nil || s.aggregator == nil {
		return Snapshot{}, fmt.Errorf("insights service is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return Snapshot{}, apperrors.New(apperrors.CodeInvalidArgument, "tenant id is required")
	}

	key := snapshotCacheKey(tenantID)
	if s.cache != nil {
		if value, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logf("read dashboard snapshot cache: %v", err)
		} else if ok {
			var snapshot Snapshot
			if err := json.Unmarshal(value, &snapshot); err == nil {
				return snapshot, nil
			}
			s.logf("decode cached dashboard snapshot: invalid entry, recomputing")
		}
	}

	counts, err := s.aggregator.AggregateDashboard(ctx, tenantID)
	if err != nil {
		s.logf("aggregate dashboard for %s: %v", tenantID, err)
		counts = edge.DashboardCounts{}
	}

	snapshot := Snapshot{
		TenantID:       tenantID,
		Documents:      s.localCount(ctx, s.counts.Documents, tenantID, counts.Documents),
		Properties:     s.localCount(ctx, s.counts.Properties, tenantID, counts.Properties),
		Broadcasts:     s.localCount(ctx, s.counts.Broadcasts, tenantID, counts.Broadcasts),
		ActiveMembers:  counts.ActiveMembers,
		CacheHitRate:   counts.CacheHitRate,
		AvgResponseMs:  counts.AvgResponseMs,
		RAGQuality:     counts.RAGQuality,
		HandoffSuccess: counts.HandoffSuccess,
		GeneratedAt:    s.clock().UTC(),
	}
	snapshot.HealthScore = ComputeHealth(Metrics{
		CacheHitRate:   counts.CacheHitRate,
		AvgResponseMs:  counts.AvgResponseMs,
		RAGQuality:     counts.RAGQuality,
		HandoffSuccess: counts.HandoffSuccess,
	}).Score

	s.storeSnapshot(key, snapshot)
	return snapshot, nil
}

// InvalidateDashboard drops the cached snapshot for one tenant.
func (s *Service) InvalidateDashboard(ctx context.Context, tenantID string) error {
	if s == nil || s.cache == nil {
		return nil
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "tenant id is required")
	}
	if err := s.cache.Delete(ctx, snapshotCacheKey(tenantID)); err != nil {
		return fmt.Errorf("invalidate dashboard snapshot: %w", err)
	}
	return nil
}

func (s *Service) localCount(ctx context.Context, source CountSource, tenantID string, fallback int) int {
	if source == nil {
		return fallback
	}
	count, err := source.Count(ctx, tenantID)
	if err != nil {
		s.logf("local count for %s: %v", tenantID, err)
		return fallback
	}
	return count
}

func (s *Service) storeSnapshot(key string, snapshot Snapshot) {
	if s.cache == nil {
		return
	}
	value, err := json.Marshal(snapshot)
	if err != nil {
		s.logf("encode dashboard snapshot: %v", err)
		return
	}
	write := func(ctx context.Context) error {
		return s.cache.Set(ctx, key, value, snapshotTTL)
	}
	if s.runner != nil {
		s.runner.Go("dashboard snapshot write", write)
		return
	}
	if err := write(context.Background()); err != nil {
		s.logf("write dashboard snapshot cache: %v", err)
	}
}

func snapshotCacheKey(tenantID string) string {
	return "insights:dashboard:" + tenantID
}
