package domain

import "context"

// EdgeMetrics adapts the dashboard aggregate into the four collector
// methods. Each collector issues its own aggregate call so a slow or
// failing metric never blocks the others.
type EdgeMetrics struct {
	client Aggregator
}

// NewEdgeMetrics creates a collector set over the edge aggregator.
func NewEdgeMetrics(client Aggregator) *EdgeMetrics {
	return &EdgeMetrics{client: client}
}

// CacheHitRate reads the cache hit rate metric.
func (e *EdgeMetrics) CacheHitRate(ctx context.Context, tenantID string) (float64, error) {
	counts, err := e.client.AggregateDashboard(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return counts.CacheHitRate, nil
}

// AvgResponseMs reads the average response time metric.
func (e *EdgeMetrics) AvgResponseMs(ctx context.Context, tenantID string) (float64, error) {
	counts, err := e.client.AggregateDashboard(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return counts.AvgResponseMs, nil
}

// RAGQuality reads the retrieval quality metric.
func (e *EdgeMetrics) RAGQuality(ctx context.Context, tenantID string) (float64, error) {
	counts, err := e.client.AggregateDashboard(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return counts.RAGQuality, nil
}

// HandoffSuccess reads the coach handoff success metric.
func (e *EdgeMetrics) HandoffSuccess(ctx context.Context, tenantID string) (float64, error) {
	counts, err := e.client.AggregateDashboard(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return counts.HandoffSuccess, nil
}
