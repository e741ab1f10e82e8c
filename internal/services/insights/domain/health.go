package domain

// Health score weights. The four component scores are clamped to [0,100]
// before weighting, so the composite stays in [0,100].
const (
	weightCache    = 0.25
	weightResponse = 0.35
	weightRAG      = 0.25
	weightHandoff  = 0.15
)

// Metrics holds the raw collector readings for one tenant.
type Metrics struct {
	CacheHitRate   float64
	AvgResponseMs  float64
	RAGQuality     float64
	HandoffSuccess float64
}

// Health holds the component scores and the weighted composite.
type Health struct {
	CacheScore    float64
	ResponseScore float64
	RAGScore      float64
	HandoffScore  float64
	Score         float64
}

// ResponseScore converts an average response time in milliseconds to a
// score: 100 at 0ms, dropping one point per 20ms, floored at 0.
func ResponseScore(avgMs float64) float64 {
	score := 100 - avgMs/20
	if score < 0 {
		return 0
	}
	return score
}

// Clamp bounds a score to [0,100].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ComputeHealth derives the component scores and weighted composite from
// raw metrics.
func ComputeHealth(metrics Metrics) Health {
	health := Health{
		CacheScore:    Clamp(metrics.CacheHitRate),
		ResponseScore: Clamp(ResponseScore(metrics.AvgResponseMs)),
		RAGScore:      Clamp(metrics.RAGQuality),
		HandoffScore:  Clamp(metrics.HandoffSuccess),
	}
	health.Score = health.CacheScore*weightCache +
		health.ResponseScore*weightResponse +
		health.RAGScore*weightRAG +
		health.HandoffScore*weightHandoff
	return health
}
