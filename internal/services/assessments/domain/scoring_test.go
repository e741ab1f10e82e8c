package domain

import (
	"errors"
	"testing"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
)

func weighted(category string, weight int) Answer {
	return Answer{Category: category, Weight: weight}
}

func TestScoreIdentityWeighted(t *testing.T) {
	t.Parallel()

	answers := []Answer{
		weighted("past_prison", 2),
		weighted("past_prison", 2),
		weighted("past_prison", 1),
		weighted("success_sabotage", 1),
		weighted("success_sabotage", 1),
		weighted("compass_crisis", 1),
	}

	result, err := Score(KindIdentity, answers)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Primary != "past_prison" {
		t.Errorf("primary = %q, want past_prison", result.Primary)
	}
	if result.Secondary != "success_sabotage" {
		t.Errorf("secondary = %q, want success_sabotage", result.Secondary)
	}
	if result.Total != 8 {
		t.Errorf("total = %d, want 8", result.Total)
	}
	if result.Confidence != 63 {
		t.Errorf("confidence = %d, want 63", result.Confidence)
	}
	if result.Tied {
		t.Error("result reported a tie")
	}
	if result.Balanced {
		t.Error("result reported balanced")
	}
}

func TestScoreCountConservation(t *testing.T) {
	t.Parallel()

	answers := []Answer{
		weighted("sage", 1),
		weighted("warrior", 1),
		weighted("sage", 1),
		weighted("creator", 1),
		weighted("connector", 1),
		weighted("sage", 1),
	}

	result, err := Score(KindTemperament, answers)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	sum := 0
	for _, count := range result.Counts {
		sum += count
	}
	if sum != len(answers) {
		t.Errorf("sum of counts = %d, want %d", sum, len(answers))
	}
	if result.Primary != "sage" {
		t.Errorf("primary = %q, want sage", result.Primary)
	}
}

func TestScoreTieAtThreshold(t *testing.T) {
	t.Parallel()

	answers := []Answer{
		weighted("sage", 3),
		weighted("warrior", 3),
		weighted("connector", 1),
	}

	result, err := Score(KindTemperament, answers)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !result.Tied {
		t.Error("expected a tie at equal top counts of 3")
	}
	// Canonical order keeps sage ahead of warrior at equal counts.
	if result.Primary != "sage" || result.Secondary != "warrior" {
		t.Errorf("primary, secondary = %q, %q, want sage, warrior", result.Primary, result.Secondary)
	}
}

func TestScoreTieBelowThresholdNotReported(t *testing.T) {
	t.Parallel()

	answers := []Answer{
		weighted("sage", 2),
		weighted("warrior", 2),
	}

	result, err := Score(KindTemperament, answers)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Tied {
		t.Error("top counts of 2 should not report a tie")
	}
	if !result.Balanced {
		t.Error("max count below 4 should report balanced")
	}
}

func TestScoreBalancedBoundary(t *testing.T) {
	t.Parallel()

	answers := []Answer{
		weighted("past_prison", 4),
		weighted("compass_crisis", 1),
	}

	result, err := Score(KindIdentity, answers)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Balanced {
		t.Error("max count of 4 should not report balanced")
	}
}

func TestScoreNoAnswers(t *testing.T) {
	t.Parallel()

	_, err := Score(KindIdentity, nil)
	if apperrors.CodeOf(err) != apperrors.CodeAssessmentNoAnswers {
		t.Errorf("err = %v, want code %s", err, apperrors.CodeAssessmentNoAnswers)
	}

	_, err = Score(KindIdentity, []Answer{weighted("past_prison", 0)})
	if apperrors.CodeOf(err) != apperrors.CodeAssessmentNoAnswers {
		t.Errorf("zero-weight err = %v, want code %s", err, apperrors.CodeAssessmentNoAnswers)
	}
}

func TestScoreUnknownCategory(t *testing.T) {
	t.Parallel()

	_, err := Score(KindTemperament, []Answer{weighted("trickster", 1)})
	if apperrors.CodeOf(err) != apperrors.CodeAssessmentUnknownPattern {
		t.Errorf("err = %v, want code %s", err, apperrors.CodeAssessmentUnknownPattern)
	}
}

func TestScoreUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Score(Kind("mood"), []Answer{weighted("sage", 1)})
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeAssessmentUnknownKind {
		t.Errorf("err = %v, want code %s", err, apperrors.CodeAssessmentUnknownKind)
	}
}
