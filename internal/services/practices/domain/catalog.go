package domain

import (
	"regexp"
	"strings"
)

// Category groups catalog practices by tradition.
type Category string

const (
	CategoryTraditionalFoundation Category = "traditional-foundation"
	CategoryFaithBased            Category = "faith-based"
	CategoryHybrid                Category = "hybrid-practices"
	CategoryMonastic              Category = "monastic-practices"
	CategoryPhilosophical         Category = "philosophical-practices"
	CategoryNeurological          Category = "neurological-practices"
	CategoryIntegration           Category = "integration-practices"
)

// Categories is the canonical catalog category order.
var Categories = []Category{
	CategoryTraditionalFoundation,
	CategoryFaithBased,
	CategoryHybrid,
	CategoryMonastic,
	CategoryPhilosophical,
	CategoryNeurological,
	CategoryIntegration,
}

// Difficulty labels a practice by its time demand.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// patternRules maps each category to the identity patterns it serves.
var patternRules = map[Category][]string{
	CategoryTraditionalFoundation: {"past_prison", "success_sabotage", "compass_crisis", "identity_collision"},
	CategoryFaithBased:            {"past_prison", "compass_crisis"},
	CategoryHybrid:                {"past_prison", "compass_crisis", "success_sabotage"},
	CategoryMonastic:              {"past_prison", "compass_crisis"},
	CategoryPhilosophical:         {"compass_crisis", "identity_collision"},
	CategoryNeurological:          {"success_sabotage", "identity_collision"},
	CategoryIntegration:           {"past_prison", "success_sabotage", "compass_crisis", "identity_collision"},
}

var temperamentKeywords = map[string][]string{
	"sage":      {"prayer", "meditation", "journal", "contemplate", "reflect", "wisdom", "learning", "reading", "writing"},
	"warrior":   {"movement", "workout", "exercise", "action", "strength", "push", "discipline", "prostration"},
	"connector": {"worship", "community", "social", "blessing", "service", "connection"},
	"creator":   {"visualization", "create", "imagine", "design", "vision"},
}

// temperamentOrder keeps inference output deterministic.
var temperamentOrder = []string{"sage", "warrior", "connector", "creator"}

var (
	minuteRangeRe = regexp.MustCompile(`(?i)(\d+)\s*-\s*(\d+)\s*min`)
	minuteRe      = regexp.MustCompile(`(?i)(\d+)\s*min`)
	hourRangeRe   = regexp.MustCompile(`(?i)(\d+)\s*-\s*(\d+)\s*hour`)
	hourRe        = regexp.MustCompile(`(?i)(\d+)\s*hour`)
)

// ValidCategory reports whether category is one of the catalog categories.
func ValidCategory(category Category) bool {
	_, ok := patternRules[category]
	return ok
}

// PatternsFor returns the identity patterns a category serves.
func PatternsFor(category Category) []string {
	patterns := patternRules[category]
	out := make([]string, len(patterns))
	copy(out, patterns)
	return out
}

// ParseTimeCommitment extracts a minutes range from free text such as
// "5-30 minutes", "10 minutes", or "1 hour". Unparseable text ("varies",
// "Throughout day") reports ok=false.
func ParseTimeCommitment(text string) (minMinutes int, maxMinutes int, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, 0, false
	}
	if m := minuteRangeRe.FindStringSubmatch(text); m != nil {
		return atoi(m[1]), atoi(m[2]), true
	}
	if m := minuteRe.FindStringSubmatch(text); m != nil {
		v := atoi(m[1])
		return v, v, true
	}
	if m := hourRangeRe.FindStringSubmatch(text); m != nil {
		return atoi(m[1]) * 60, atoi(m[2]) * 60, true
	}
	if m := hourRe.FindStringSubmatch(text); m != nil {
		v := atoi(m[1]) * 60
		return v, v, true
	}
	return 0, 0, false
}

// InferDifficulty labels a practice by its time ceiling: under 10 minutes is
// beginner, up to 20 intermediate, beyond that advanced. Unknown time
// defaults to intermediate.
func InferDifficulty(minMinutes int, maxMinutes int, known bool) Difficulty {
	if !known {
		return DifficultyIntermediate
	}
	relevant := maxMinutes
	if relevant == 0 {
		relevant = minMinutes
	}
	switch {
	case relevant < 10:
		return DifficultyBeginner
	case relevant <= 20:
		return DifficultyIntermediate
	default:
		return DifficultyAdvanced
	}
}

// InferTemperaments matches temperament keywords against the practice title
// and instructions. No match defaults to sage.
func InferTemperaments(title string, instructions string) []string {
	text := strings.ToLower(title + " " + instructions)
	var matched []string
	for _, temperament := range temperamentOrder {
		for _, keyword := range temperamentKeywords[temperament] {
			if strings.Contains(text, keyword) {
				matched = append(matched, temperament)
				break
			}
		}
	}
	if len(matched) == 0 {
		return []string{"sage"}
	}
	return matched
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
