package domain

import "testing"

func TestCountSyllables(t *testing.T) {
	t.Parallel()

	cases := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"water", 2},
		{"beautiful", 3},
		{"made", 1},
		{"table", 2},
		{"rhythm", 1},
		{"a", 1},
		{"", 1},
	}
	for _, tc := range cases {
		if got := countSyllables(tc.word); got != tc.want {
			t.Errorf("countSyllables(%q) = %d, want %d", tc.word, got, tc.want)
		}
	}
}

func TestAnalyzeReadabilityEmpty(t *testing.T) {
	t.Parallel()

	got := AnalyzeReadability("   ")
	if got != (Readability{}) {
		t.Errorf("AnalyzeReadability(blank) = %+v, want zero", got)
	}
}

func TestAnalyzeReadabilitySimpleText(t *testing.T) {
	t.Parallel()

	// 6 monosyllabic words over 2 sentences: grade = 0.39*3 + 11.8*1 - 15.59,
	// ease = 206.835 - 1.015*3 - 84.6*1.
	got := AnalyzeReadability("The cat sat. The dog ran.")
	if got.Words != 6 {
		t.Errorf("words = %d, want 6", got.Words)
	}
	if got.Sentences != 2 {
		t.Errorf("sentences = %d, want 2", got.Sentences)
	}
	if got.Syllables != 6 {
		t.Errorf("syllables = %d, want 6", got.Syllables)
	}
	if got.FleschKincaidGrade != -2.62 {
		t.Errorf("grade = %v, want -2.62", got.FleschKincaidGrade)
	}
	if got.ReadingEase != 119.19 {
		t.Errorf("ease = %v, want 119.19", got.ReadingEase)
	}
}

func TestAnalyzeReadabilityNoTerminator(t *testing.T) {
	t.Parallel()

	got := AnalyzeReadability("no punctuation at all here")
	if got.Sentences != 1 {
		t.Errorf("sentences = %d, want 1 for unterminated text", got.Sentences)
	}
}

func TestCountSentencesCollapsesTerminatorRuns(t *testing.T) {
	t.Parallel()

	if got := countSentences("Wait... what?! Done."); got != 3 {
		t.Errorf("countSentences = %d, want 3", got)
	}
}

func TestCountWordsIgnoresBarePunctuation(t *testing.T) {
	t.Parallel()

	if got := CountWords("one two - three !!"); got != 3 {
		t.Errorf("CountWords = %d, want 3", got)
	}
}
