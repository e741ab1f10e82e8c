package domain

import (
	"math"
	"strings"
	"unicode"
)

// Readability holds the derived reading metrics for one document body.
type Readability struct {
	Words              int
	Sentences          int
	Syllables          int
	FleschKincaidGrade float64
	ReadingEase        float64
}

// AnalyzeReadability computes word, sentence, and syllable counts plus
// Flesch-Kincaid grade and reading ease. Empty text yields zero metrics.
func AnalyzeReadability(text string) Readability {
	words := splitWords(text)
	if len(words) == 0 {
		return Readability{}
	}

	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}
	syllables := 0
	for _, word := range words {
		syllables += countSyllables(word)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(len(words))

	grade := 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
	ease := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord

	return Readability{
		Words:              len(words),
		Sentences:          sentences,
		Syllables:          syllables,
		FleschKincaidGrade: round2(grade),
		ReadingEase:        round2(ease),
	}
}

// CountWords counts whitespace-delimited words containing at least one
// letter or digit.
func CountWords(text string) int {
	return len(splitWords(text))
}

func splitWords(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		if strings.IndexFunc(field, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) >= 0 {
			words = append(words, field)
		}
	}
	return words
}

func countSentences(text string) int {
	count := 0
	inTerminator := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			// A run of terminators ends one sentence.
			if !inTerminator {
				count++
			}
			inTerminator = true
		default:
			inTerminator = false
		}
	}
	return count
}

// countSyllables counts vowel groups, discounting a silent trailing e. Every
// word counts at least one syllable.
func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 1
	}

	groups := 0
	prevVowel := false
	for _, r := range word {
		vowel := isVowel(r)
		if vowel && !prevVowel {
			groups++
		}
		prevVowel = vowel
	}
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && groups > 1 {
		groups--
	}
	if groups < 1 {
		groups = 1
	}
	return groups
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
