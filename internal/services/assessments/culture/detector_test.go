package culture

import (
	"testing"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	detector, err := NewDetector()
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	return detector
}

func TestDetectAbuelaMessage(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t)
	signal := detector.Detect("my abuela always said family comes first")

	if signal.PrimaryCulture != "latino_hispanic" {
		t.Fatalf("primary culture = %q, want latino_hispanic", signal.PrimaryCulture)
	}
	if signal.PrimaryConfidence < 0.3 {
		t.Fatalf("primary confidence = %.2f, want >= 0.3", signal.PrimaryConfidence)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t)
	message := "mi familia and my abuela kept me grounded, tbh I was spiraling"

	first := detector.Detect(message)
	for i := 0; i < 5; i++ {
		again := detector.Detect(message)
		if again.PrimaryCulture != first.PrimaryCulture {
			t.Fatalf("primary culture changed across calls: %q vs %q", again.PrimaryCulture, first.PrimaryCulture)
		}
		if len(again.Detected) != len(first.Detected) {
			t.Fatalf("detected set size changed across calls: %d vs %d", len(again.Detected), len(first.Detected))
		}
		for j := range again.Detected {
			if again.Detected[j] != first.Detected[j] {
				t.Fatalf("detected[%d] changed across calls: %+v vs %+v", j, again.Detected[j], first.Detected[j])
			}
		}
	}
}

func TestConfidenceIsClamped(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t)
	// Hits enough latino_hispanic patterns that raw weights sum past 1.0.
	signal := detector.Detect("ay dios, my abuela and my tia told mija that la familia heals susto")

	for _, detection := range signal.Detected {
		if detection.Confidence < 0 || detection.Confidence > 1 {
			t.Fatalf("confidence %.3f for %s outside [0,1]", detection.Confidence, detection.Culture)
		}
	}
	if signal.PrimaryCulture != "latino_hispanic" {
		t.Fatalf("primary culture = %q, want latino_hispanic", signal.PrimaryCulture)
	}
	if signal.PrimaryConfidence != 1.0 {
		t.Fatalf("primary confidence = %.3f, want clamped 1.0", signal.PrimaryConfidence)
	}
}

func TestBelowThresholdIsNotDetected(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t)
	// A single 0.2-weight hit stays below the 0.25 threshold.
	signal := detector.Detect("we played soca at the office party")

	if len(signal.Detected) != 0 {
		t.Fatalf("expected no detections below threshold, got %+v", signal.Detected)
	}
}

func TestColloquialHitsAreAllMapped(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t)
	mappings := detector.ColloquialMappings()
	signal := detector.Detect("I've been burned out and on edge all week, nerves are shot")

	if len(signal.Colloquial) < 3 {
		t.Fatalf("expected at least 3 colloquial hits, got %d: %+v", len(signal.Colloquial), signal.Colloquial)
	}
	for _, hit := range signal.Colloquial {
		clinical, ok := mappings[hit.Phrase]
		if !ok {
			t.Fatalf("matched phrase %q missing from colloquial_mappings", hit.Phrase)
		}
		if clinical != hit.Clinical {
			t.Fatalf("phrase %q mapped to %q, want %q", hit.Phrase, hit.Clinical, clinical)
		}
	}
}

func TestRegisterClassification(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t)
	cases := []struct {
		name    string
		message string
		want    Register
	}{
		{
			name:    "clinical",
			message: "My anxiety spikes when cortisol stays elevated through the evening.",
			want:    RegisterClinical,
		},
		{
			name:    "code switching",
			message: "My anxiety has been wild lately, kinda hard to explain what sets it off each day",
			want:    RegisterCodeSwitching,
		},
		{
			name:    "conversational two markers",
			message: "tbh I was kinda hoping this week would go differently than the last one did",
			want:    RegisterConversational,
		},
		{
			name:    "conversational short casual",
			message: "gonna skip practice today",
			want:    RegisterConversational,
		},
		{
			name:    "formal",
			message: "I would like to review the quarterly compliance documentation before our meeting.",
			want:    RegisterFormal,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			signal := detector.Detect(tc.message)
			if signal.Register != tc.want {
				t.Fatalf("register = %q, want %q", signal.Register, tc.want)
			}
		})
	}
}

func TestContextBlockMentionsDetections(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t)
	signal := detector.Detect("my abuela always said it would pass")
	block := signal.ContextBlock()

	if block == "" {
		t.Fatal("expected non-empty context block")
	}
	if !containsBoundedTerm(canonicalize(block), "latino_hispanic") {
		t.Fatalf("context block missing primary culture: %s", block)
	}
}

func TestEmptyMessage(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t)
	signal := detector.Detect("   ")
	if len(signal.Detected) != 0 {
		t.Fatalf("expected no detections for empty message, got %+v", signal.Detected)
	}
	if signal.Register != RegisterFormal {
		t.Fatalf("register = %q, want formal default", signal.Register)
	}
}
