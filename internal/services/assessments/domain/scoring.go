package domain

import (
	"math"
	"strings"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
)

// Kind selects which fixed category set an assessment scores against.
type Kind string

const (
	// KindIdentity scores identity pattern indicators.
	KindIdentity Kind = "identity"
	// KindTemperament scores temperament indicators.
	KindTemperament Kind = "temperament"
)

// IdentityPatterns is the canonical identity category order. Earlier entries
// win ties at equal counts.
var IdentityPatterns = []string{
	"past_prison",
	"success_sabotage",
	"compass_crisis",
	"identity_collision",
}

// Temperaments is the canonical temperament category order.
var Temperaments = []string{
	"sage",
	"warrior",
	"connector",
	"creator",
}

const (
	// tieMinimumCount is the top count at or above which two equal leaders
	// report a tie.
	tieMinimumCount = 3
	// balancedBelowCount marks a profile balanced when no category reaches it.
	balancedBelowCount = 4
)

// Answer is one assessment answer tagged with a category indicator. Weight
// is the indicator strength; zero-weight answers count toward the total
// answered but contribute no points.
type Answer struct {
	QuestionID string
	Category   string
	Weight     int
}

// Result is a scored assessment over one fixed category set.
type Result struct {
	Kind       Kind
	Counts     map[string]int
	Total      int
	Primary    string
	Secondary  string
	Tied       bool
	Balanced   bool
	Confidence int
}

// Score accumulates per-category counts for the kind's category set, then
// derives primary, secondary, tie, and balance labels.
func Score(kind Kind, answers []Answer) (Result, error) {
	categories, err := categoriesFor(kind)
	if err != nil {
		return Result{}, err
	}
	if len(answers) == 0 {
		return Result{}, apperrors.New(apperrors.CodeAssessmentNoAnswers, "assessment has no answers")
	}

	counts := make(map[string]int, len(categories))
	for _, category := range categories {
		counts[category] = 0
	}

	total := 0
	for _, answer := range answers {
		category := strings.TrimSpace(answer.Category)
		if _, ok := counts[category]; !ok {
			return Result{}, apperrors.WithMetadata(
				apperrors.CodeAssessmentUnknownPattern,
				"answer references an unknown category",
				map[string]string{"category": category},
			)
		}
		if answer.Weight < 0 {
			return Result{}, apperrors.New(apperrors.CodeAssessmentUnknownPattern, "answer weight must be non-negative")
		}
		counts[category] += answer.Weight
		total += answer.Weight
	}
	if total == 0 {
		return Result{}, apperrors.New(apperrors.CodeAssessmentNoAnswers, "assessment answers carry no indicator weight")
	}

	ranked := make([]string, len(categories))
	copy(ranked, categories)
	// Stable sort by count descending; canonical order breaks ties.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && counts[ranked[j]] > counts[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	result := Result{
		Kind:    kind,
		Counts:  counts,
		Total:   total,
		Primary: ranked[0],
	}
	if len(ranked) > 1 && counts[ranked[1]] > 0 {
		result.Secondary = ranked[1]
	}
	topCount := counts[ranked[0]]
	if len(ranked) > 1 && counts[ranked[1]] == topCount && topCount >= tieMinimumCount {
		result.Tied = true
	}
	if topCount < balancedBelowCount {
		result.Balanced = true
	}
	result.Confidence = int(math.Round(float64(topCount) / float64(total) * 100))
	return result, nil
}

func categoriesFor(kind Kind) ([]string, error) {
	switch kind {
	case KindIdentity:
		return IdentityPatterns, nil
	case KindTemperament:
		return Temperaments, nil
	default:
		return nil, apperrors.WithMetadata(
			apperrors.CodeAssessmentUnknownKind,
			"unknown assessment kind",
			map[string]string{"kind": string(kind)},
		)
	}
}
