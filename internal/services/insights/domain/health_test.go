package domain

import (
	"math"
	"testing"
)

func TestResponseScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ms   float64
		want float64
	}{
		{0, 100},
		{200, 90},
		{1000, 50},
		{2000, 0},
		{5000, 0},
	}
	for _, tc := range cases {
		if got := ResponseScore(tc.ms); got != tc.want {
			t.Errorf("ResponseScore(%v) = %v, want %v", tc.ms, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	if got := Clamp(-5); got != 0 {
		t.Errorf("Clamp(-5) = %v", got)
	}
	if got := Clamp(150); got != 100 {
		t.Errorf("Clamp(150) = %v", got)
	}
	if got := Clamp(42.5); got != 42.5 {
		t.Errorf("Clamp(42.5) = %v", got)
	}
}

func TestComputeHealthWeightedSum(t *testing.T) {
	t.Parallel()

	health := ComputeHealth(Metrics{
		CacheHitRate:   80,
		AvgResponseMs:  400, // response score 80
		RAGQuality:     60,
		HandoffSuccess: 90,
	})
	want := 80*0.25 + 80*0.35 + 60*0.25 + 90*0.15
	if math.Abs(health.Score-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", health.Score, want)
	}
	if health.ResponseScore != 80 {
		t.Errorf("ResponseScore = %v, want 80", health.ResponseScore)
	}
}

func TestComputeHealthClampsInputs(t *testing.T) {
	t.Parallel()

	health := ComputeHealth(Metrics{
		CacheHitRate:   130,
		AvgResponseMs:  -100, // raw response score above 100
		RAGQuality:     -10,
		HandoffSuccess: 100,
	})
	if health.CacheScore != 100 || health.ResponseScore != 100 || health.RAGScore != 0 {
		t.Errorf("component scores = %+v", health)
	}
	if health.Score < 0 || health.Score > 100 {
		t.Errorf("Score = %v out of range", health.Score)
	}
}

func TestComputeHealthAllZero(t *testing.T) {
	t.Parallel()

	health := ComputeHealth(Metrics{AvgResponseMs: 2000})
	if health.Score != 0 {
		t.Errorf("Score = %v, want 0", health.Score)
	}
}
